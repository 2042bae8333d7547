// Package keywords defines the vocabulary of the acquisition log and the
// Sequencer that tracks which keyword the decoder expects next.
//
// The log opens with a fixed meta-data block (sensors, target, mode,
// direction, keys) followed by one four-keyword block per trace. The trace
// block depends on the encryption direction and on whether the firmware was
// asked for verbose weights or compressed codes.
package keywords
