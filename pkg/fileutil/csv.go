package fileutil

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVReader provides a helper/utility to read CSV content from any reader
type CSVReader struct {
	reader *csv.Reader
}

// NewCSVReader returns a CSVReader over the given reader. Records with a
// varying number of fields are tolerated; the caller decides row validity.
func NewCSVReader(r io.Reader) *CSVReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	return &CSVReader{reader: cr}
}

// ReadHeader reads ONLY the header row. Must be called before processing rows.
func (r *CSVReader) ReadHeader() ([]string, error) {
	header, err := r.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	return header, nil
}

// ReadAndProcessByRow reads and processes the remaining rows one by one,
// allowing large content to be streamed
func (r *CSVReader) ReadAndProcessByRow(processorFn func([]string) error) error {
	for {
		row, err := r.reader.Read()
		if err == io.EOF {
			break // end of content, stop
		}
		if err != nil {
			return fmt.Errorf("reading CSV row: %w", err)
		}

		if err = processorFn(row); err != nil {
			return err
		}
	}

	return nil
}
