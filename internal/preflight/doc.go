// Package preflight checks that the directories and the serial device an
// acquisition needs are present and accessible.
//
// The acquire command runs these checks before talking to the device, and
// "sca status" prints them.
package preflight
