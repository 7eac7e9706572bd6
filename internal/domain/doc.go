// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The board and insertion rules live in the board sub-package, the session
// state machine in the game sub-package.
package domain
