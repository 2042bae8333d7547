package codec

import (
	"errors"
	"fmt"
	"io"

	"github.com/samiBendou/sca-automation/internal/dataset"
	"github.com/samiBendou/sca-automation/internal/keywords"
)

var channelHeader = []string{keywords.Plain.String(), keywords.Cipher.String(), keywords.Key.String()}

// EncodeChannel writes one row per record, preceded by the header when
// header is set.
func EncodeChannel(w io.Writer, ch *dataset.Channel, header bool) error {
	if err := ch.Validate(); err != nil {
		return err
	}
	writer := newWriter(w)
	if header {
		if err := writer.Write(channelHeader); err != nil {
			return err
		}
	}
	for i := range ch.Plains {
		plain, cipher, key := ch.At(i)
		if err := writer.Write([]string{plain, cipher, key}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// DecodeChannel reads a channel table. Columns are matched by header name.
func DecodeChannel(r io.Reader, opts ReadOptions) (*dataset.Channel, error) {
	ch := &dataset.Channel{}
	reader := newReader(r)
	header, err := readHeader(reader)
	if errors.Is(err, io.EOF) {
		return ch, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read channel header: %w", err)
	}
	index, err := columnIndex(header, channelHeader...)
	if err != nil {
		return nil, err
	}
	reader.FieldsPerRecord = len(header)

	for row := 0; !opts.done(row); row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read channel row %d: %w", row, err)
		}
		if opts.skip(row) {
			continue
		}
		ch.Append(
			record[index[keywords.Plain.String()]],
			record[index[keywords.Cipher.String()]],
			record[index[keywords.Key.String()]],
		)
	}
	return ch, ch.Validate()
}

// WriteChannel exports a channel to path. With appendRows set and an existing
// file, rows are appended without a new header.
func WriteChannel(path string, ch *dataset.Channel, appendRows bool) error {
	if err := writeTo(path, appendRows, func(w io.Writer, header bool) error {
		return EncodeChannel(w, ch, header)
	}); err != nil {
		return fmt.Errorf("write channel %s: %w", path, err)
	}
	return nil
}

// ReadChannel imports a channel from path. A missing file yields an empty channel.
func ReadChannel(path string, opts ReadOptions) (*dataset.Channel, error) {
	file, err := openRead(path)
	if err != nil {
		return nil, fmt.Errorf("open channel %s: %w", path, err)
	}
	if file == nil {
		return &dataset.Channel{}, nil
	}
	defer file.Close()

	ch, err := DecodeChannel(file, opts)
	if err != nil {
		return nil, fmt.Errorf("read channel %s: %w", path, err)
	}
	return ch, nil
}
