// Package board implements the cross-shaped placement grid and the insertion
// engine that enumerates, validates and executes card placements on it.
//
// The board has two arms meeting at the origin (0,0). The horizontal arm runs
// along y=0 and is ordered by card width; the vertical arm runs along x=0 and
// is ordered by card height. Along each arm the metric strictly increases with
// the running coordinate. The origin card takes part in both arms.
//
// Board itself trusts its caller; all legality checks live in Engine.
package board
