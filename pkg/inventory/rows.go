package inventory

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Row is one inventory record, keyed by the manifest's declared schema.
type Row map[string]string

// FileFetcher retrieves inventory data files from the destination bucket.
type FileFetcher interface {
	Fetch(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Reader streams rows from a report batch's data files, in manifest order.
// Files are fetched lazily, one at a time. The stream is not restartable.
type Reader struct {
	ctx      context.Context
	fetcher  FileFetcher
	bucket   string
	schema   []string
	files    []ManifestFile
	nextFile int
	cur      *csv.Reader
	closers  []io.Closer
}

func newReader(ctx context.Context, fetcher FileFetcher, bucket string, m *Manifest) *Reader {
	return &Reader{
		ctx:     ctx,
		fetcher: fetcher,
		bucket:  bucket,
		schema:  m.Schema(),
		files:   m.Files,
	}
}

// Next returns the next row, or io.EOF once every data file is drained.
// Rows shorter than the schema simply omit the trailing fields.
func (r *Reader) Next() (Row, error) {
	for {
		if r.cur == nil {
			if r.nextFile >= len(r.files) {
				return nil, io.EOF
			}
			if err := r.openFile(r.files[r.nextFile].Key); err != nil {
				return nil, err
			}
			r.nextFile++
		}

		record, err := r.cur.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if cerr := r.closeCurrent(); cerr != nil {
					return nil, cerr
				}
				continue
			}
			return nil, fmt.Errorf("read inventory row: %w", err)
		}

		row := make(Row, len(r.schema))
		for i, name := range r.schema {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		return row, nil
	}
}

// Close releases the currently open data file. Safe to call at any point.
func (r *Reader) Close() error {
	return r.closeCurrent()
}

func (r *Reader) openFile(key string) error {
	body, err := r.fetcher.Fetch(r.ctx, r.bucket, key)
	if err != nil {
		return fmt.Errorf("fetch inventory file s3://%s/%s: %w", r.bucket, key, err)
	}
	gz, err := gzip.NewReader(body)
	if err != nil {
		body.Close()
		return fmt.Errorf("decompress inventory file %s: %w", key, err)
	}

	cr := csv.NewReader(gz)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	r.closers = []io.Closer{body, gz}
	r.cur = cr
	return nil
}

func (r *Reader) closeCurrent() error {
	r.cur = nil
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	return firstErr
}
