// Package sqlite implements the store interfaces on an embedded SQLite
// database using the pure-Go modernc.org/sqlite driver.
//
// It is the default backend for single-node deployments; the postgres
// package provides the same interfaces for shared deployments.
package sqlite
