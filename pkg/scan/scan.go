// Package scan orchestrates S3 size and cost scans.
//
// A scan targets either one bucket, whose objects are enumerated through
// ListObjectsV2 or an S3 Inventory report, or the whole account, where
// per-bucket totals are estimated from CloudWatch storage metrics. Either
// way the output is a lazy stream of Records followed by a summary.
package scan

import (
	"context"

	"github.com/s3du/s3du/pkg/cwmetrics"
	"github.com/s3du/s3du/pkg/discovery"
	"github.com/s3du/s3du/pkg/inventory"
)

// Options describe one scan. The CLI builds Options after validating flag
// combinations, so the core assumes they are coherent.
type Options struct {
	// Bucket is the single bucket to scan. Empty means account-wide.
	Bucket string

	// Prefix restricts a single-bucket scan to keys under it.
	Prefix string

	// Profiles are the AWS profiles to scan. Empty means the default
	// credential chain. Account-wide scans visit every listed profile;
	// single-bucket scans use the first.
	Profiles []string

	// CostMode reports estimated monthly storage dollars instead of bytes.
	CostMode bool

	// InventoryMode reads an S3 Inventory report instead of listing.
	InventoryMode bool

	// Endpoint overrides the S3 endpoint for custom implementations.
	Endpoint string

	// Notify receives progress updates during the scan. May be nil.
	Notify Notifier
}

func (o Options) accountWide() bool {
	return o.Bucket == ""
}

// profile returns the profile a single-bucket scan runs under.
func (o Options) profile() string {
	if len(o.Profiles) > 0 {
		return o.Profiles[0]
	}
	return ""
}

// profiles returns the profile list for an account-wide scan. No profiles
// means one pass with the default chain.
func (o Options) profiles() []string {
	if len(o.Profiles) == 0 {
		return []string{""}
	}
	return o.Profiles
}

// Record is one element of the scan output stream. For single-bucket scans
// Path is the prefix-stripped object key split on "/" and Count is 1. For
// account-wide scans Path is [bucket, ""] and Size/Count are bucket totals.
// Size holds bytes, or dollars in cost mode.
type Record struct {
	Path  []string
	Size  float64
	Count int64
}

// Stream produces records one at a time. Next returns io.EOF after the last
// record. Close releases underlying resources and may be called early to
// abandon the scan.
type Stream interface {
	Next() (Record, error)
	Close() error
}

// Progress is a point-in-time snapshot of a running scan.
type Progress struct {
	// Records produced so far.
	Records int64
	// Total bytes, or dollars in cost mode.
	Total float64
}

// Notifier receives progress updates. It is called inline from the record
// loop, so implementations must not block.
type Notifier func(Progress)

// Totals accumulates what a scan's stream has produced.
type Totals struct {
	Objects int64
	Size    float64
}

// SummaryField is one labeled line of the final scan summary.
type SummaryField struct {
	Label string
	Value string
}

// S3API is the full S3 surface a scan may touch. *s3.Client satisfies it.
type S3API interface {
	inventory.API
	discovery.API
}

// ClientFactory builds the AWS clients a scan needs, one set per profile.
type ClientFactory interface {
	S3(ctx context.Context, profile string) (S3API, error)
	CloudWatch(ctx context.Context, profile, region string) (cwmetrics.API, error)
	Fetcher(ctx context.Context, profile string) (inventory.FileFetcher, error)
}
