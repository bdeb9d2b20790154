// Package awsconn builds the AWS SDK clients the scanner talks through.
//
// Profile and credential resolution follows the standard SDK chain (shared
// config, environment, instance metadata). A custom endpoint switches the S3
// client to path-style addressing, which is what non-AWS S3 implementations
// expect.
package awsconn

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is used when neither the profile nor the environment
// resolves one. us-east-1 hosts the global S3 endpoint.
const DefaultRegion = "us-east-1"

// Load resolves AWS configuration for the named profile. An empty profile
// uses the default credential chain.
func Load(ctx context.Context, profile string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		if profile != "" {
			return aws.Config{}, fmt.Errorf("load AWS config for profile %q: %w", profile, err)
		}
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

// NewS3 creates an S3 client. A non-empty endpoint overrides the AWS
// endpoint and enables path-style addressing.
func NewS3(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

// NewCloudWatch creates a CloudWatch client pinned to a region. Bucket
// storage metrics only exist in the bucket's home region.
func NewCloudWatch(cfg aws.Config, region string) *cloudwatch.Client {
	return cloudwatch.NewFromConfig(cfg, func(o *cloudwatch.Options) {
		if region != "" {
			o.Region = region
		}
	})
}
