package dataset

// Mode is the encryption engine used during the acquisition.
type Mode string

const (
	ModeHardware Mode = "hw"
	ModeSoftware Mode = "sw"
)

// Direction is the encryption direction of the acquisition.
type Direction string

const (
	DirectionEncrypt Direction = "enc"
	DirectionDecrypt Direction = "dec"
)

// Inverse reports whether the direction follows the decryption keyword order.
func (d Direction) Inverse() bool { return d == DirectionDecrypt }

// Meta holds the run parameters reported by the firmware.
type Meta struct {
	Mode       Mode
	Direction  Direction
	Target     int
	Sensors    int
	Iterations int
	// Offset is the hamming decode offset, Sensors*Target minus the decode bias.
	Offset int
}

// ComputeOffset derives Offset from the sensor count, the calibration target
// and the decode bias.
func (m *Meta) ComputeOffset(bias int) {
	m.Offset = m.Sensors*m.Target - bias
}

// Clear resets every field to its zero value.
func (m *Meta) Clear() {
	*m = Meta{}
}
