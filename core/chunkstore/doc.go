// Package chunkstore persists chunk inputs and outputs for distributed runs.
//
// A chunk input is the immutable, pre-fetched snapshot of one chunk's source
// keys, written before the worker job is dispatched so that a crashed and
// resubmitted worker reproduces identical decisions. Outputs hold the
// worker's final counters.
//
// The layout is {dataRoot}/{sliceId}/{chunkId}/input and .../output, either
// on a shared filesystem or in object storage when workers run on nodes
// without one. Every (slice, chunk) location is unique and write-once, so no
// write-write conflicts are possible.
package chunkstore
