// Package concurrency provides generic channel-based fan-in used by the
// composite receiver to merge every registered transport's lazy sequence
// into one.
package concurrency
