// Package inference holds the read-only model handles used by the scoring
// pipeline: logistic classifier artifacts and the TF-IDF template ranker.
//
// Handles are loaded once at process start and never mutated afterwards, so a
// single handle may be shared by concurrent evaluations without locking. A
// handle whose artifact could not be loaded reports Loaded=false together with
// the reason, and callers switch permanently to their heuristic path.
package inference
