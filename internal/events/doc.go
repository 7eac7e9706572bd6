// Package events provides types and interfaces for an event-driven architecture.
//
// The session registry emits a GameEvent after every state change without
// knowing who listens; the websocket hub and the logging handler subscribe
// through the EventHandler interface.
//
// The primary components are:
// - GameEvent: a session lifecycle event with a JSON payload
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
