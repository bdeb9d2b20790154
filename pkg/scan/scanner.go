package scan

import (
	"context"
	"strings"

	"github.com/s3du/s3du/internal/logctx"
	"github.com/s3du/s3du/pkg/humanfmt"
	"github.com/s3du/s3du/pkg/pricing"
)

// Scanner runs one scan and keeps its running totals for the summary.
type Scanner struct {
	opts    Options
	clients ClientFactory
	prices  *pricing.Table
	totals  Totals
}

// New creates a Scanner. Cost mode loads the embedded pricing table.
func New(opts Options, clients ClientFactory) (*Scanner, error) {
	var prices *pricing.Table
	if opts.CostMode {
		var err error
		prices, err = pricing.Load()
		if err != nil {
			return nil, err
		}
	}
	return &Scanner{opts: opts, clients: clients, prices: prices}, nil
}

// Records opens the record stream for the configured scan. The returned
// stream updates the scanner's totals and fires progress notifications as
// it is drained.
func (s *Scanner) Records(ctx context.Context) (Stream, error) {
	var inner Stream
	if s.opts.accountWide() {
		inner = newAccountStream(ctx, s.opts, s.clients, s.prices)
	} else {
		ctx = logctx.WithStr(ctx, "bucket", s.opts.Bucket)
		var err error
		inner, err = newBucketStream(ctx, s.opts, s.clients, s.prices)
		if err != nil {
			return nil, err
		}
	}
	return &trackingStream{inner: inner, notify: s.opts.Notify, totals: &s.totals}, nil
}

// Totals returns what the stream has produced so far.
func (s *Scanner) Totals() Totals {
	return s.totals
}

// Summary returns the final labeled summary lines for a drained scan.
func (s *Scanner) Summary() []SummaryField {
	sizeLabel, sizeValue := "Total size", humanfmt.BytesFloat(s.totals.Size)
	if s.opts.CostMode {
		sizeLabel, sizeValue = "Total cost", humanfmt.Dollars(s.totals.Size)
	}
	return []SummaryField{
		{Label: "Location", Value: s.location()},
		{Label: "Total objects", Value: humanfmt.Count(s.totals.Objects)},
		{Label: sizeLabel, Value: sizeValue},
	}
}

func (s *Scanner) location() string {
	if !s.opts.accountWide() {
		return "s3://" + s.opts.Bucket + "/" + s.opts.Prefix
	}
	if len(s.opts.Profiles) > 0 {
		noun := "profiles"
		if len(s.opts.Profiles) == 1 {
			noun = "profile"
		}
		return "All buckets for " + strings.Join(s.opts.Profiles, ", ") + " " + noun
	}
	return "All buckets"
}

// trackingStream wraps the mode-specific stream, accumulating totals and
// notifying every thousand records.
type trackingStream struct {
	inner  Stream
	notify Notifier
	totals *Totals
	n      int64
}

func (t *trackingStream) Next() (Record, error) {
	rec, err := t.inner.Next()
	if err != nil {
		return Record{}, err
	}

	t.totals.Objects += rec.Count
	t.totals.Size += rec.Size
	t.n++
	if t.notify != nil && t.n%1000 == 0 {
		t.notify(Progress{Records: t.n, Total: t.totals.Size})
	}
	return rec, nil
}

func (t *trackingStream) Close() error {
	return t.inner.Close()
}
