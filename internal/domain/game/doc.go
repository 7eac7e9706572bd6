// Package game implements the session state machine: players, turn order,
// hands, deck bookkeeping and the round lifecycle
// waiting -> playing -> round_ended -> playing | ended.
//
// A Session is not safe for concurrent use. Callers that share sessions
// between goroutines must serialize access to each session.
package game
