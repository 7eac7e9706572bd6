// Package ws pushes per-player game state to websocket clients.
//
// A client connects to /ws/sessions/{id}?player_id=... and receives a
// "state" message carrying its own view of the session after every game
// event. Clients may send {"t":"state"} to request a fresh view and
// {"t":"ping"} to receive a "pong". A player removed from the session gets
// a "removed" message and is disconnected; every client of a deleted session
// gets "sessionDeleted".
package ws
