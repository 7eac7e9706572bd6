// Package service contains the application-specific use cases: the session
// registry that owns every live game session.
//
// The registry coordinates between the game domain, the durable session
// store (internal/store) and the event emitter (internal/events):
//
//   - Sessions are cached in memory and loaded from the store on a miss;
//     concurrent misses for the same session share one load.
//   - Each session has its own read/write lock. Mutations hold the write
//     lock for load, mutate and save; queries hold the read lock.
//   - Every mutation is written through to the store before it returns. When
//     the write fails the cached copy is evicted so the next read reloads
//     durable state.
//   - An event is emitted after each successful mutation, outside the lock.
//
// The Reaper runs CleanupExpired on an interval to delete idle sessions.
package service
