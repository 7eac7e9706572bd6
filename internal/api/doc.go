// Package api exposes the game over HTTP. Handlers decode and validate
// requests, call the game service or card catalog, and map domain errors to
// status codes and player-facing messages. The ws subpackage pushes state
// changes to connected players.
package api
