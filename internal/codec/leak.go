package codec

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samiBendou/sca-automation/internal/dataset"
)

// emptyTraceRow stands for a trace without samples. An empty line would be
// skipped on read.
const emptyTraceRow = `""` + "\r\n"

// EncodeLeak writes one row per trace with one column per sample. The leak
// table has no header.
func EncodeLeak(w io.Writer, leak *dataset.Leak) error {
	if err := leak.Validate(); err != nil {
		return err
	}
	writer := newWriter(w)
	for _, trace := range leak.Traces {
		if len(trace) == 0 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
			if _, err := io.WriteString(w, emptyTraceRow); err != nil {
				return err
			}
			continue
		}
		row := make([]string, len(trace))
		for i, v := range trace {
			row[i] = strconv.Itoa(v)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// DecodeLeak reads a leak table. Rows may have different lengths.
func DecodeLeak(r io.Reader, opts ReadOptions) (*dataset.Leak, error) {
	leak := &dataset.Leak{}
	reader := newReader(r)
	reader.FieldsPerRecord = -1

	for row := 0; !opts.done(row); row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read leak row %d: %w", row, err)
		}
		if opts.skip(row) {
			continue
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			leak.Append([]int{})
			continue
		}
		trace := make([]int, len(record))
		for i, field := range record {
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("read leak row %d column %d: %w", row, i, err)
			}
			trace[i] = v
		}
		leak.Append(trace)
	}
	return leak, nil
}

// WriteLeak exports traces to path, appending rows when appendRows is set.
func WriteLeak(path string, leak *dataset.Leak, appendRows bool) error {
	if err := writeTo(path, appendRows, func(w io.Writer, _ bool) error {
		return EncodeLeak(w, leak)
	}); err != nil {
		return fmt.Errorf("write leak %s: %w", path, err)
	}
	return nil
}

// ReadLeak imports traces from path. A missing file yields an empty leak.
func ReadLeak(path string, opts ReadOptions) (*dataset.Leak, error) {
	file, err := openRead(path)
	if err != nil {
		return nil, fmt.Errorf("open leak %s: %w", path, err)
	}
	if file == nil {
		return &dataset.Leak{}, nil
	}
	defer file.Close()

	leak, err := DecodeLeak(file, opts)
	if err != nil {
		return nil, fmt.Errorf("read leak %s: %w", path, err)
	}
	return leak, nil
}
