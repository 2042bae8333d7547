// Package main hosts the sca CLI entrypoint and command graph.
//
// The Cobra command tree drives acquisitions from the board or from stored
// captures, renders decoded datasets and the run catalog, watches the capture
// directory and scaffolds configuration. Decoding, storage and bookkeeping
// live in the internal packages; commands only resolve configuration, apply
// flag overrides and print results.
package main
