// Package cwmetrics estimates per-bucket sizes and object counts from
// CloudWatch's daily S3 storage metrics, without listing any objects.
package cwmetrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/s3du/s3du/pkg/pricing"
)

// API is the CloudWatch surface the aggregator calls.
type API interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// Config tunes how metrics are queried.
type Config struct {
	// RolloverLookback is how far before today's UTC midnight the target
	// metrics day starts. CloudWatch publishes these daily metrics with up
	// to a day and a half of latency.
	RolloverLookback time.Duration

	// BatchSize caps the number of queries per GetMetricData call. The
	// service rejects batches above 100.
	BatchSize int
}

// DefaultConfig returns the settings used by account-wide scans.
func DefaultConfig() Config {
	return Config{
		RolloverLookback: 36 * time.Hour,
		BatchSize:        100,
	}
}

// TargetWindow returns the one-day query window for the most recent
// complete metrics day: today's UTC midnight pushed back by the lookback.
func (c Config) TargetWindow(now time.Time) (start, end time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	start = day.Add(-c.RolloverLookback)
	return start, start.Add(24 * time.Hour)
}

// countStorageType is the StorageType dimension value of the
// NumberOfObjects metric, which is not tied to any storage class.
const countStorageType = "AllStorageTypes"

type metricSpec struct {
	storageType string
	metricName  string
	isSize      bool
}

// metricSpecs returns the tracked metric series per bucket: one
// BucketSizeBytes series per priced storage class, plus the object count.
func metricSpecs() []metricSpec {
	specs := make([]metricSpec, 0, len(pricing.Classes)+1)
	for _, c := range pricing.Classes {
		specs = append(specs, metricSpec{storageType: c.MetricName, metricName: "BucketSizeBytes", isSize: true})
	}
	return append(specs, metricSpec{storageType: countStorageType, metricName: "NumberOfObjects"})
}
