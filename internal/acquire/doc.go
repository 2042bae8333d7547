// Package acquire obtains raw acquisition logs, either from capture files or
// from the device over a serial line.
//
// The serial protocol is a single command line followed by the binary log,
// which ends with the FF FF FF FF sentinel. Runner repeats the acquisition
// for chunked requests.
package acquire
