// Package discovery enumerates buckets across credential profiles and
// resolves each bucket's home region.
package discovery

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/s3du/s3du/internal/logctx"
)

// LocationAPI resolves bucket locations.
type LocationAPI interface {
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
}

// API is the S3 surface bucket discovery calls.
type API interface {
	LocationAPI
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// ClientFunc returns an S3 client authenticated as profile. An empty
// profile means the default credential chain.
type ClientFunc func(ctx context.Context, profile string) (API, error)

// Group is one (profile, region) batch of buckets.
type Group struct {
	Profile string
	Region  string
	Buckets []string
}

// Discover enumerates the buckets visible to each profile and resolves every
// bucket's home region, with at most workers concurrent location lookups.
// Groups are returned in profile input order, regions and buckets sorted.
func Discover(ctx context.Context, newClient ClientFunc, profiles []string, workers int) ([]Group, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var groups []Group
	for _, profile := range profiles {
		api, err := newClient(ctx, profile)
		if err != nil {
			return nil, fmt.Errorf("create S3 client for profile %q: %w", profile, err)
		}
		byRegion, err := discoverProfile(ctx, api, profile, workers)
		if err != nil {
			return nil, err
		}

		regions := make([]string, 0, len(byRegion))
		for region := range byRegion {
			regions = append(regions, region)
		}
		sort.Strings(regions)
		for _, region := range regions {
			buckets := byRegion[region]
			sort.Strings(buckets)
			groups = append(groups, Group{Profile: profile, Region: region, Buckets: buckets})
		}
	}
	return groups, nil
}

func discoverProfile(ctx context.Context, api API, profile string, workers int) (map[string][]string, error) {
	names, err := listBucketNames(ctx, api)
	if err != nil {
		return nil, fmt.Errorf("list buckets for profile %q: %w", profile, err)
	}

	type located struct {
		bucket string
		region string
	}
	results := make(chan located, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range names {
		g.Go(func() error {
			region, err := ResolveRegion(gctx, api, name)
			if err != nil {
				return err
			}
			results <- located{bucket: name, region: region}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	byRegion := make(map[string][]string)
	for r := range results {
		byRegion[r.region] = append(byRegion[r.region], r.bucket)
	}

	logctx.FromContext(ctx).Debug().
		Str("profile", profile).
		Int("buckets", len(names)).
		Int("regions", len(byRegion)).
		Msg("resolved bucket regions")
	return byRegion, nil
}

func listBucketNames(ctx context.Context, api API) ([]string, error) {
	var names []string
	p := s3.NewListBucketsPaginator(api, &s3.ListBucketsInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, b := range page.Buckets {
			names = append(names, aws.ToString(b.Name))
		}
	}
	return names, nil
}

// ResolveRegion returns the home region of a bucket.
func ResolveRegion(ctx context.Context, api LocationAPI, bucket string) (string, error) {
	out, err := api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: aws.String(bucket)})
	if err != nil {
		return "", fmt.Errorf("get bucket location for %s: %w", bucket, err)
	}
	return NormalizeLocation(string(out.LocationConstraint)), nil
}

// NormalizeLocation maps GetBucketLocation's legacy constraint values to
// real region names. Buckets in us-east-1 report an empty constraint and
// old eu-west-1 buckets report "EU".
func NormalizeLocation(constraint string) string {
	switch constraint {
	case "":
		return "us-east-1"
	case "EU":
		return "eu-west-1"
	}
	return constraint
}
