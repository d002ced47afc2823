// Package dispatch provides the two executors the logical view runs on: a
// Queue, whose single goroutine owns all node-state mutation and event
// firing, and a Pool of background workers for slow work such as archive
// probing. Posting to either never blocks the caller.
package dispatch
