package dataset

import "fmt"

// BlockHexWidth is the number of hexadecimal digits of an AES-128 block.
const BlockHexWidth = 32

// Channel holds the encryption blocks of every trace as hexadecimal strings.
type Channel struct {
	Plains  []string
	Ciphers []string
	Keys    []string
}

// Len returns the number of plain blocks, which is the record count when the
// channel is consistent.
func (c *Channel) Len() int { return len(c.Plains) }

// Append adds one record.
func (c *Channel) Append(plain, cipher, key string) {
	c.Plains = append(c.Plains, plain)
	c.Ciphers = append(c.Ciphers, cipher)
	c.Keys = append(c.Keys, key)
}

// At returns the blocks of record i.
func (c *Channel) At(i int) (plain, cipher, key string) {
	return c.Plains[i], c.Ciphers[i], c.Keys[i]
}

// Pop removes the last record. It is a no-op on sequences that are already empty.
func (c *Channel) Pop() {
	c.Plains = dropLast(c.Plains)
	c.Ciphers = dropLast(c.Ciphers)
	c.Keys = dropLast(c.Keys)
}

// Clear removes every record.
func (c *Channel) Clear() {
	c.Plains = c.Plains[:0]
	c.Ciphers = c.Ciphers[:0]
	c.Keys = c.Keys[:0]
}

// Concat appends the records of other.
func (c *Channel) Concat(other *Channel) {
	if other == nil {
		return
	}
	c.Plains = append(c.Plains, other.Plains...)
	c.Ciphers = append(c.Ciphers, other.Ciphers...)
	c.Keys = append(c.Keys, other.Keys...)
}

// BroadcastKey fits a single run key to n records. Runs use a fixed key that
// the firmware reports once, so it is replicated; with no record left the run
// key is dropped. Per-record keys are left untouched.
func (c *Channel) BroadcastKey(n int) {
	if len(c.Keys) != 1 || n == 1 {
		return
	}
	if n <= 0 {
		c.Keys = c.Keys[:0]
		return
	}
	key := c.Keys[0]
	keys := make([]string, n)
	for i := range keys {
		keys[i] = key
	}
	c.Keys = keys
}

// Validate reports an error when the three sequences differ in length.
func (c *Channel) Validate() error {
	if len(c.Plains) != len(c.Ciphers) || len(c.Plains) != len(c.Keys) {
		return fmt.Errorf("%w: plains=%d ciphers=%d keys=%d",
			ErrInconsistent, len(c.Plains), len(c.Ciphers), len(c.Keys))
	}
	return nil
}

func dropLast[T any](values []T) []T {
	if len(values) == 0 {
		return values
	}
	return values[:len(values)-1]
}
