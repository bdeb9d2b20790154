package cwmetrics

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/s3du/s3du/internal/logctx"
	"github.com/s3du/s3du/pkg/pricing"
)

type state int

const (
	stateDiscovered state = iota
	stateMetricsFetched
	stateFinalized
)

// BucketStats holds one bucket's finalized totals. In size mode Size is
// bytes; in cost mode it is the estimated monthly cost.
type BucketStats struct {
	Bucket string
	Region string
	Size   float64
	Count  int64

	metrics map[string]int64
	state   state
}

// Aggregator reduces CloudWatch metrics into per-bucket totals across
// (profile, region) groups, counting each bucket exactly once no matter how
// many profiles can see it.
type Aggregator struct {
	cfg    Config
	prices *pricing.Table

	stats map[string]*BucketStats
	order []string

	start     time.Time
	end       time.Time
	targetDay string
}

// NewAggregator creates an aggregator for one scan. A nil prices table
// selects size mode; with a table, finalized sizes are monthly costs.
func NewAggregator(cfg Config, prices *pricing.Table) *Aggregator {
	def := DefaultConfig()
	if cfg.RolloverLookback <= 0 {
		cfg.RolloverLookback = def.RolloverLookback
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}

	start, end := cfg.TargetWindow(time.Now())
	return &Aggregator{
		cfg:       cfg,
		prices:    prices,
		stats:     make(map[string]*BucketStats),
		start:     start,
		end:       end,
		targetDay: start.UTC().Format("2006-01-02"),
	}
}

// ProcessGroup queries metrics for one (profile, region) bucket group and
// folds them into the per-bucket stats. Buckets finalized under an earlier
// profile keep their first totals.
func (a *Aggregator) ProcessGroup(ctx context.Context, api API, region string, buckets []string) error {
	var rp pricing.RegionPrices
	if a.prices != nil {
		var err error
		rp, err = a.prices.ForRegion(region)
		if err != nil {
			return err
		}
	}

	for _, bucket := range buckets {
		a.track(bucket)
	}

	merged, err := a.fetchMetrics(ctx, api, region, buckets)
	if err != nil {
		return err
	}
	for idx, bucket := range buckets {
		a.reduceBucket(a.stats[bucket], merged, idx)
	}

	return a.finalizeGroup(region, buckets, rp)
}

// Results returns finalized per-bucket stats in first-discovery order.
// Buckets whose size and count are both zero are omitted.
func (a *Aggregator) Results() []BucketStats {
	out := make([]BucketStats, 0, len(a.order))
	for _, bucket := range a.order {
		bs := a.stats[bucket]
		if bs.state != stateFinalized {
			continue
		}
		if bs.Size == 0 && bs.Count == 0 {
			continue
		}
		out = append(out, *bs)
	}
	return out
}

func (a *Aggregator) track(bucket string) *BucketStats {
	if bs, ok := a.stats[bucket]; ok {
		return bs
	}
	bs := &BucketStats{
		Bucket:  bucket,
		metrics: make(map[string]int64),
		state:   stateDiscovered,
	}
	a.stats[bucket] = bs
	a.order = append(a.order, bucket)
	return bs
}

// fetchMetrics issues the group's queries in batches and merges all pages
// into one result-per-id lookup. The query id encodes the bucket's index in
// the group plus the storage type, so results can be matched back.
func (a *Aggregator) fetchMetrics(ctx context.Context, api API, region string, buckets []string) (map[string]types.MetricDataResult, error) {
	specs := metricSpecs()
	queries := make([]types.MetricDataQuery, 0, len(buckets)*len(specs))
	for i, bucket := range buckets {
		id := fmt.Sprintf("i%02d", i)
		for _, spec := range specs {
			queries = append(queries, types.MetricDataQuery{
				Id: aws.String(id + spec.storageType),
				MetricStat: &types.MetricStat{
					Metric: &types.Metric{
						Namespace:  aws.String("AWS/S3"),
						MetricName: aws.String(spec.metricName),
						Dimensions: []types.Dimension{
							{Name: aws.String("StorageType"), Value: aws.String(spec.storageType)},
							{Name: aws.String("BucketName"), Value: aws.String(bucket)},
						},
					},
					Period: aws.Int32(86400),
					Stat:   aws.String("Average"),
				},
			})
		}
	}

	log := logctx.FromContext(ctx)
	merged := make(map[string]types.MetricDataResult, len(queries))
	batch := 0
	for chunk := range slices.Chunk(queries, a.cfg.BatchSize) {
		batch++
		log.Debug().
			Str("region", region).
			Int("batch", batch).
			Int("queries", len(chunk)).
			Msg("querying storage metrics")

		input := &cloudwatch.GetMetricDataInput{
			MetricDataQueries: chunk,
			StartTime:         aws.Time(a.start),
			EndTime:           aws.Time(a.end),
		}
		p := cloudwatch.NewGetMetricDataPaginator(api, input)
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("get metric data for %s: %w", region, err)
			}
			for _, r := range page.MetricDataResults {
				id := aws.ToString(r.Id)
				merged[id] = mergeResult(merged[id], r)
			}
		}
	}
	return merged, nil
}

func mergeResult(dst, src types.MetricDataResult) types.MetricDataResult {
	if dst.Id == nil {
		return src
	}
	dst.Timestamps = append(dst.Timestamps, src.Timestamps...)
	dst.Values = append(dst.Values, src.Values...)
	return dst
}

// reduceBucket picks each tracked metric's observation for the target day.
// No observation on that day means zero. The metrics are daily integer
// totals, so values are truncated.
func (a *Aggregator) reduceBucket(bs *BucketStats, merged map[string]types.MetricDataResult, idx int) {
	id := fmt.Sprintf("i%02d", idx)
	for _, spec := range metricSpecs() {
		result := merged[id+spec.storageType]
		var value float64
		for i, ts := range result.Timestamps {
			if i < len(result.Values) && ts.UTC().Format("2006-01-02") == a.targetDay {
				value = result.Values[i]
				break
			}
		}
		bs.metrics[spec.storageType] = int64(value)
	}
	if bs.state == stateDiscovered {
		bs.state = stateMetricsFetched
	}
}

// finalizeGroup computes totals for buckets that just had metrics fetched.
// Already-finalized buckets are left untouched, which is what deduplicates
// buckets visible under several profiles.
func (a *Aggregator) finalizeGroup(region string, buckets []string, rp pricing.RegionPrices) error {
	specs := metricSpecs()
	for _, bucket := range buckets {
		bs := a.stats[bucket]
		if bs.state != stateMetricsFetched {
			continue
		}

		var size float64
		var count int64
		for _, spec := range specs {
			v := bs.metrics[spec.storageType]
			if !spec.isSize {
				count += v
				continue
			}
			if a.prices == nil {
				size += float64(v)
				continue
			}
			price, err := rp.ByMetric(spec.storageType)
			if err != nil {
				return err
			}
			size += pricing.Cost(float64(v), price)
		}

		bs.Size = size
		bs.Count = count
		bs.Region = region
		bs.state = stateFinalized
	}
	return nil
}
