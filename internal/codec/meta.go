package codec

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/keywords"
)

var metaHeader = []string{
	keywords.Mode.String(),
	keywords.Direction.String(),
	keywords.Target.String(),
	keywords.Sensors.String(),
	keywords.Iterations.String(),
	keywords.Offset.String(),
}

// EncodeMeta writes the header and a single row.
func EncodeMeta(w io.Writer, meta dataset.Meta) error {
	writer := newWriter(w)
	if err := writer.Write(metaHeader); err != nil {
		return err
	}
	row := []string{
		string(meta.Mode),
		string(meta.Direction),
		strconv.Itoa(meta.Target),
		strconv.Itoa(meta.Sensors),
		strconv.Itoa(meta.Iterations),
		strconv.Itoa(meta.Offset),
	}
	if err := writer.Write(row); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// DecodeMeta reads a meta table. The first row gives every field; the
// iterations of any further row are added to it.
func DecodeMeta(r io.Reader) (dataset.Meta, error) {
	var meta dataset.Meta
	reader := newReader(r)
	header, err := readHeader(reader)
	if errors.Is(err, io.EOF) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("read meta header: %w", err)
	}
	index, err := columnIndex(header, metaHeader...)
	if err != nil {
		return meta, err
	}
	reader.FieldsPerRecord = len(header)

	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dataset.Meta{}, fmt.Errorf("read meta row %d: %w", row, err)
		}
		field := func(k keywords.Keyword) string {
			return strings.TrimSpace(record[index[k.String()]])
		}
		iterations, err := strconv.Atoi(field(keywords.Iterations))
		if err != nil {
			return dataset.Meta{}, fmt.Errorf("read meta row %d %s: %w", row, keywords.Iterations, err)
		}
		if row > 0 {
			meta.Iterations += iterations
			continue
		}
		meta.Mode = dataset.Mode(field(keywords.Mode))
		meta.Direction = dataset.Direction(field(keywords.Direction))
		meta.Iterations = iterations
		for _, f := range []struct {
			kw  keywords.Keyword
			dst *int
		}{
			{keywords.Target, &meta.Target},
			{keywords.Sensors, &meta.Sensors},
			{keywords.Offset, &meta.Offset},
		} {
			v, err := strconv.Atoi(field(f.kw))
			if err != nil {
				return dataset.Meta{}, fmt.Errorf("read meta row %d %s: %w", row, f.kw, err)
			}
			*f.dst = v
		}
	}
	return meta, nil
}

// WriteMeta exports meta to path. With appendRows set, the iterations already
// stored at path are added to meta before the file is rewritten. The stored
// value is returned.
func WriteMeta(path string, meta dataset.Meta, appendRows bool) (dataset.Meta, error) {
	if appendRows {
		existing, err := ReadMeta(path)
		if err != nil {
			return meta, err
		}
		meta.Iterations += existing.Iterations
	}
	if err := writeTo(path, false, func(w io.Writer, _ bool) error {
		return EncodeMeta(w, meta)
	}); err != nil {
		return meta, fmt.Errorf("write meta %s: %w", path, err)
	}
	return meta, nil
}

// ReadMeta imports run parameters from path. A missing file yields zero values.
func ReadMeta(path string) (dataset.Meta, error) {
	file, err := openRead(path)
	if err != nil {
		return dataset.Meta{}, fmt.Errorf("open meta %s: %w", path, err)
	}
	if file == nil {
		return dataset.Meta{}, nil
	}
	defer file.Close()

	meta, err := DecodeMeta(file)
	if err != nil {
		return dataset.Meta{}, fmt.Errorf("read meta %s: %w", path, err)
	}
	return meta, nil
}
