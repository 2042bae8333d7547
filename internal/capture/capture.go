// Package capture stores the raw binary logs received from the device.
//
// Captures are written either verbatim or as a single zstd frame with a .zst
// suffix. Read detects the frame magic, so callers never track which form a
// file uses. Every capture is identified by the BLAKE3 digest of its raw bytes.
package capture

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// CompressedSuffix is appended to compressed capture paths.
const CompressedSuffix = ".zst"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ErrNotFound reports that neither the raw nor the compressed capture exists.
var ErrNotFound = errors.New("capture not found")

// Encoder and decoder are safe for concurrent use.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		panic("capture: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("capture: zstd decoder initialization failed: " + err.Error())
	}
}

// Digest is the 32-byte BLAKE3 hash of a raw capture.
type Digest [32]byte

// Sum hashes raw capture bytes.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 12 hex digits, enough to tell captures apart in listings.
func (d Digest) Short() string { return d.String()[:12] }

// ParseDigest parses a 64-digit hex digest.
func ParseDigest(value string) (Digest, error) {
	var d Digest
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return d, fmt.Errorf("parse capture digest: %w", err)
	}
	if len(decoded) != len(d) {
		return d, fmt.Errorf("capture digest is %d bytes, want %d", len(decoded), len(d))
	}
	copy(d[:], decoded)
	return d, nil
}

// Write stores data at path, or at path+".zst" when compress is set. The file
// is replaced atomically. It returns the written path and the digest of data.
func Write(path string, data []byte, compress bool) (string, Digest, error) {
	digest := Sum(data)
	payload := data
	if compress {
		path += CompressedSuffix
		payload = encoder.EncodeAll(data, make([]byte, 0, len(data)/4))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", digest, fmt.Errorf("create capture directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".capture-*")
	if err != nil {
		return "", digest, fmt.Errorf("create capture: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", digest, fmt.Errorf("write capture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", digest, fmt.Errorf("close capture: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", digest, fmt.Errorf("rename capture: %w", err)
	}
	return path, digest, nil
}

// Read returns the raw bytes of the capture at path, decompressing zstd frames.
func Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress capture %s: %w", path, err)
	}
	return raw, nil
}

// Locate returns path if it exists, otherwise path+".zst", otherwise ErrNotFound.
func Locate(path string) (string, error) {
	for _, candidate := range []string{path, path + CompressedSuffix} {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat capture: %w", err)
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// IsCapture reports whether name looks like a capture file.
func IsCapture(name string) bool {
	ext := filepath.Ext(name)
	if ext == CompressedSuffix {
		ext = filepath.Ext(name[:len(name)-len(CompressedSuffix)])
	}
	return ext == ".log"
}

// Base strips the capture extensions from a file name.
func Base(name string) string {
	name = filepath.Base(name)
	if filepath.Ext(name) == CompressedSuffix {
		name = name[:len(name)-len(CompressedSuffix)]
	}
	if filepath.Ext(name) == ".log" {
		name = name[:len(name)-len(".log")]
	}
	return name
}
