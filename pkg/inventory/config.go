// Package inventory selects and reads AWS S3 Inventory reports.
//
// A bucket may carry several inventory configurations. SelectConfig picks the
// cheapest one that satisfies a scan's format, field, and prefix requirements,
// and Open resolves it to the newest readable report batch, streaming its
// rows one at a time.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the S3 surface the inventory package calls.
type API interface {
	ListBucketInventoryConfigurations(ctx context.Context, params *s3.ListBucketInventoryConfigurationsInput, optFns ...func(*s3.Options)) (*s3.ListBucketInventoryConfigurationsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Config is one inventory configuration attached to a bucket.
type Config struct {
	ID                string
	DestinationBucket string // bucket ARN or plain name
	DestinationPrefix string
	Format            string
	OptionalFields    []string
	Frequency         string
	ObjectVersions    string
	FilterPrefix      string
	Enabled           bool
}

// DestinationBucketName returns the destination bucket as a plain name
// suitable for S3 API calls, resolving an ARN if necessary.
func (c Config) DestinationBucketName() (string, error) {
	return bucketName(c.DestinationBucket)
}

// FetchConfigs retrieves all inventory configurations for a bucket,
// following continuation tokens.
func FetchConfigs(ctx context.Context, api API, bucket string) ([]Config, error) {
	var configs []Config
	input := &s3.ListBucketInventoryConfigurationsInput{Bucket: aws.String(bucket)}
	for {
		out, err := api.ListBucketInventoryConfigurations(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list inventory configurations for %s: %w", bucket, err)
		}
		for _, ic := range out.InventoryConfigurationList {
			configs = append(configs, fromSDK(ic))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	return configs, nil
}

func fromSDK(ic types.InventoryConfiguration) Config {
	c := Config{
		ID:             aws.ToString(ic.Id),
		Enabled:        aws.ToBool(ic.IsEnabled),
		ObjectVersions: string(ic.IncludedObjectVersions),
	}
	if ic.Schedule != nil {
		c.Frequency = string(ic.Schedule.Frequency)
	}
	if ic.Filter != nil {
		c.FilterPrefix = aws.ToString(ic.Filter.Prefix)
	}
	for _, f := range ic.OptionalFields {
		c.OptionalFields = append(c.OptionalFields, string(f))
	}
	if ic.Destination != nil && ic.Destination.S3BucketDestination != nil {
		dest := ic.Destination.S3BucketDestination
		c.DestinationBucket = aws.ToString(dest.Bucket)
		c.DestinationPrefix = aws.ToString(dest.Prefix)
		c.Format = string(dest.Format)
	}
	return c
}

// bucketName extracts a bucket name from either a plain name or a bucket ARN
// such as arn:aws:s3:::my-bucket.
func bucketName(bucketOrARN string) (string, error) {
	if bucketOrARN == "" {
		return "", errors.New("empty bucket identifier")
	}
	if !strings.HasPrefix(bucketOrARN, "arn:") {
		return bucketOrARN, nil
	}

	parts := strings.Split(bucketOrARN, ":")
	if len(parts) < 6 {
		return "", fmt.Errorf("invalid ARN %q: expected at least 6 colon-separated parts", bucketOrARN)
	}
	if parts[2] != "s3" {
		return "", fmt.Errorf("invalid S3 ARN %q: service must be 's3', got %q", bucketOrARN, parts[2])
	}

	resource := strings.Join(parts[5:], ":")
	if idx := strings.Index(resource, "/"); idx >= 0 {
		resource = resource[:idx]
	}
	if resource == "" {
		return "", fmt.Errorf("invalid S3 ARN %q: missing bucket name", bucketOrARN)
	}
	return resource, nil
}
