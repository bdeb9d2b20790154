package awsconn

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Factory hands out AWS service clients, resolving each profile's
// credentials once and reusing the config for every client built from it.
type Factory struct {
	endpoint string

	mu      sync.Mutex
	configs map[string]aws.Config
}

// NewFactory creates a client factory. The endpoint, when non-empty, is
// applied to every S3 client the factory builds.
func NewFactory(endpoint string) *Factory {
	return &Factory{
		endpoint: endpoint,
		configs:  make(map[string]aws.Config),
	}
}

func (f *Factory) config(ctx context.Context, profile string) (aws.Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cfg, ok := f.configs[profile]; ok {
		return cfg, nil
	}
	cfg, err := Load(ctx, profile)
	if err != nil {
		return aws.Config{}, err
	}
	f.configs[profile] = cfg
	return cfg, nil
}

// S3 returns an S3 client for the profile.
func (f *Factory) S3(ctx context.Context, profile string) (*s3.Client, error) {
	cfg, err := f.config(ctx, profile)
	if err != nil {
		return nil, err
	}
	return NewS3(cfg, f.endpoint), nil
}

// CloudWatch returns a CloudWatch client for the profile in the given region.
func (f *Factory) CloudWatch(ctx context.Context, profile, region string) (*cloudwatch.Client, error) {
	cfg, err := f.config(ctx, profile)
	if err != nil {
		return nil, err
	}
	return NewCloudWatch(cfg, region), nil
}
