package inventory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/s3du/s3du/internal/logctx"
)

// batchPattern matches report batch folder names, which are UTC timestamps
// like 2024-01-15T01-00Z/. Data and hive partition folders do not match.
var batchPattern = regexp.MustCompile(`[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}-[0-9]{2}Z/$`)

// Open resolves cfg to its newest readable report batch and returns a Reader
// over that batch's data files. Batches whose manifest is missing are
// skipped in favor of the next older batch.
func Open(ctx context.Context, api API, fetcher FileFetcher, bucket string, cfg Config) (*Reader, error) {
	destBucket, err := cfg.DestinationBucketName()
	if err != nil {
		return nil, fmt.Errorf("resolve inventory destination for %q: %w", cfg.ID, err)
	}

	batches, err := listBatches(ctx, api, destBucket, reportPrefix(cfg, bucket))
	if err != nil {
		return nil, err
	}

	log := logctx.FromContext(ctx)
	for _, batch := range batches {
		m, outcome, err := fetchManifest(ctx, api, destBucket, batch+"manifest.json")
		switch outcome {
		case manifestFound:
			created, _ := m.CreationTime()
			log.Info().
				Str("config_id", cfg.ID).
				Time("generated", created).
				Msg("using inventory report")
			return newReader(ctx, fetcher, destBucket, m), nil
		case manifestNotFound:
			continue
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w for configuration %q, has it run?", ErrNoInventoryData, cfg.ID)
}

// reportPrefix builds the key prefix report batches are stored under:
// <destPrefix>/<sourceBucket>/<configID>/.
func reportPrefix(cfg Config, bucket string) string {
	p := cfg.DestinationPrefix
	if p != "" {
		p += "/"
	}
	return p + bucket + "/" + cfg.ID + "/"
}

// listBatches returns batch folder prefixes under prefix, newest first.
func listBatches(ctx context.Context, api API, destBucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(destBucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	var batches []string
	p := s3.NewListObjectsV2Paginator(api, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list report batches under s3://%s/%s: %w", destBucket, prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			if name := aws.ToString(cp.Prefix); batchPattern.MatchString(name) {
				batches = append(batches, name)
			}
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(batches)))
	return batches, nil
}

type manifestOutcome int

const (
	manifestFound manifestOutcome = iota
	manifestNotFound
	manifestFailed
)

// fetchManifest retrieves and parses one batch's manifest. A missing object
// is reported as manifestNotFound so the caller can fall back to an older
// batch; a batch appears in the listing before its manifest upload completes.
func fetchManifest(ctx context.Context, api API, bucket, key string) (*Manifest, manifestOutcome, error) {
	out, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, manifestNotFound, nil
		}
		return nil, manifestFailed, fmt.Errorf("get manifest s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	m, err := ParseManifest(out.Body)
	if err != nil {
		return nil, manifestFailed, fmt.Errorf("parse manifest s3://%s/%s: %w", bucket, key, err)
	}
	return m, manifestFound, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
