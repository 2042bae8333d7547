package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Comma is the column delimiter of every table.
const Comma = ';'

// ErrMissingColumn reports a table header without a required column.
var ErrMissingColumn = errors.New("missing column")

// ReadOptions selects a window of data rows. A zero Count reads every row
// from Start onwards.
type ReadOptions struct {
	Start int
	Count int
}

func (o ReadOptions) skip(row int) bool { return row < o.Start }

func (o ReadOptions) done(row int) bool {
	return o.Count > 0 && row >= o.Start+o.Count
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = Comma
	reader.ReuseRecord = true
	return reader
}

func newWriter(w io.Writer) *csv.Writer {
	writer := csv.NewWriter(w)
	writer.Comma = Comma
	writer.UseCRLF = true
	return writer
}

// openRead opens path for reading. A missing file yields a nil file and no
// error so callers can return an empty entity.
func openRead(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return file, nil
}

// openWrite truncates path, or opens it for appending when append is set and
// the file already exists. The returned flag tells whether a header is needed.
func openWrite(path string, appendRows bool) (*os.File, bool, error) {
	if appendRows {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			info, statErr := file.Stat()
			if statErr != nil {
				_ = file.Close()
				return nil, false, statErr
			}
			return file, info.Size() == 0, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, false, err
	}
	return file, true, nil
}

// columnIndex maps header names to their position and checks that every
// required column is present.
func columnIndex(header []string, required ...string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

func readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(header))
	copy(out, header)
	return out, nil
}

func writeTo(path string, appendRows bool, encode func(io.Writer, bool) error) error {
	file, header, err := openWrite(path, appendRows)
	if err != nil {
		return err
	}
	if err := encode(file, header); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
