// Package parser decodes the binary acquisition log emitted by the SoC into
// dataset entities.
//
// The log is a CRLF separated sequence of "keyword: value" lines framed by
// start-of-trace (FE FE FE FE) and end-of-acquisition (FF FF FF FF) tags.
// Decode drives a keywords.Sequencer to validate the order of the lines.
// When a line is out of order or cannot be decoded, the partial record is
// trimmed away, a Warning is recorded, and every line is skipped until the
// next start-of-trace tag. The pass never fails as a whole.
//
// Compressed traces ("code" lines) carry one raw byte per sample that is
// mapped back with DecodeHamming using the offset computed from the sensor
// count and calibration target. Verbose traces ("weights" lines) carry the
// samples as comma separated integers.
package parser
