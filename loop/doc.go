// Package loop provides loop representation and loop nest detection over a
// cfg.Func.
//
// Detection is dominance based: a back edge is an edge whose target
// dominates its source, and the natural loop of a back edge is its header
// plus every block that reaches the latch without passing through the
// header. A loop is canonical when it has one latch, one exit block, one
// entering edge from outside, and only its header and latch leave the loop.
//
// A Nest is a pair of canonical loops where the inner loop is entered from
// the outer header and falls out into the outer latch. Anything else
// (siblings, deeper nests, irregular loops) is reported as no nest.
package loop
