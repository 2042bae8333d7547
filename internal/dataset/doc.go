// Package dataset contains the entities recovered from an acquisition log:
// Channel (plain, cipher and key blocks), Leak (leakage traces and their
// sample counts) and Meta (run parameters).
//
// Entities are plain values. Channel and Leak keep parallel slices that
// must stay the same length; Validate reports when they drift. The decoder
// is the only component allowed to leave them transiently inconsistent.
package dataset
