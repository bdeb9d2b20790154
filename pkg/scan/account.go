package scan

import (
	"context"
	"io"

	"github.com/s3du/s3du/pkg/cwmetrics"
	"github.com/s3du/s3du/pkg/discovery"
	"github.com/s3du/s3du/pkg/pricing"
)

// accountStream estimates every bucket's totals from CloudWatch metrics.
// All remote work happens on the first Next call; after that the stream
// replays the finalized per-bucket stats.
type accountStream struct {
	ctx     context.Context
	opts    Options
	clients ClientFactory
	agg     *cwmetrics.Aggregator

	ran     bool
	results []cwmetrics.BucketStats
	idx     int
}

func newAccountStream(ctx context.Context, opts Options, clients ClientFactory, prices *pricing.Table) *accountStream {
	return &accountStream{
		ctx:     ctx,
		opts:    opts,
		clients: clients,
		agg:     cwmetrics.NewAggregator(cwmetrics.DefaultConfig(), prices),
	}
}

func (s *accountStream) Next() (Record, error) {
	if !s.ran {
		if err := s.run(); err != nil {
			return Record{}, err
		}
		s.ran = true
	}

	if s.idx >= len(s.results) {
		return Record{}, io.EOF
	}
	bs := s.results[s.idx]
	s.idx++
	return Record{Path: []string{bs.Bucket, ""}, Size: bs.Size, Count: bs.Count}, nil
}

func (s *accountStream) run() error {
	groups, err := discovery.Discover(s.ctx, s.newDiscoveryClient, s.opts.profiles(), 0)
	if err != nil {
		return err
	}

	for _, g := range groups {
		api, err := s.clients.CloudWatch(s.ctx, g.Profile, g.Region)
		if err != nil {
			return err
		}
		if err := s.agg.ProcessGroup(s.ctx, api, g.Region, g.Buckets); err != nil {
			return err
		}
	}

	s.results = s.agg.Results()
	return nil
}

func (s *accountStream) newDiscoveryClient(ctx context.Context, profile string) (discovery.API, error) {
	api, err := s.clients.S3(ctx, profile)
	if err != nil {
		return nil, err
	}
	return api, nil
}

func (s *accountStream) Close() error {
	return nil
}
