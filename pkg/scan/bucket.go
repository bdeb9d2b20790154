package scan

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/s3du/s3du/pkg/discovery"
	"github.com/s3du/s3du/pkg/inventory"
	"github.com/s3du/s3du/pkg/listing"
	"github.com/s3du/s3du/pkg/pricing"
)

// newBucketStream builds the record stream for a single-bucket scan. Cost
// mode resolves the bucket's region and its per-class prices up front, so
// pricing gaps fail before any records are produced.
func newBucketStream(ctx context.Context, opts Options, clients ClientFactory, prices *pricing.Table) (Stream, error) {
	api, err := clients.S3(ctx, opts.profile())
	if err != nil {
		return nil, err
	}

	var classPrices pricing.RegionPrices
	if opts.CostMode {
		region, err := discovery.ResolveRegion(ctx, api, opts.Bucket)
		if err != nil {
			return nil, err
		}
		classPrices, err = prices.ForRegion(region)
		if err != nil {
			return nil, err
		}
	}

	if opts.InventoryMode {
		rows, err := openInventory(ctx, api, clients, opts)
		if err != nil {
			return nil, err
		}
		return &inventoryStream{
			rows:     rows,
			prefix:   opts.Prefix,
			costMode: opts.CostMode,
			prices:   classPrices,
		}, nil
	}

	return &listStream{
		lister:   listing.NewLister(ctx, api, opts.Bucket, opts.Prefix),
		costMode: opts.CostMode,
		prices:   classPrices,
	}, nil
}

func openInventory(ctx context.Context, api S3API, clients ClientFactory, opts Options) (rowReader, error) {
	required := []string{"Size"}
	if opts.CostMode {
		required = append(required, "StorageClass")
	}

	configs, err := inventory.FetchConfigs(ctx, api, opts.Bucket)
	if err != nil {
		return nil, err
	}
	cfg, err := inventory.SelectConfig(opts.Bucket, configs, required, opts.Prefix)
	if err != nil {
		return nil, err
	}

	fetcher, err := clients.Fetcher(ctx, opts.profile())
	if err != nil {
		return nil, err
	}
	return inventory.Open(ctx, api, fetcher, opts.Bucket, cfg)
}

// listStream converts listed objects into records.
type listStream struct {
	lister   *listing.Lister
	costMode bool
	prices   pricing.RegionPrices
}

func (s *listStream) Next() (Record, error) {
	obj, err := s.lister.Next()
	if err != nil {
		return Record{}, err
	}

	size, err := contribution(s.costMode, s.prices, float64(obj.Size), obj.StorageClass)
	if err != nil {
		return Record{}, err
	}
	return Record{Path: strings.Split(obj.Key, "/"), Size: size, Count: 1}, nil
}

func (s *listStream) Close() error {
	return nil
}

// rowReader is the inventory row source, satisfied by *inventory.Reader.
type rowReader interface {
	Next() (inventory.Row, error)
	Close() error
}

// inventoryStream converts inventory report rows into records. Report keys
// are percent-encoded, so each is decoded before the prefix filter.
type inventoryStream struct {
	rows     rowReader
	prefix   string
	costMode bool
	prices   pricing.RegionPrices
}

func (s *inventoryStream) Next() (Record, error) {
	for {
		row, err := s.rows.Next()
		if err != nil {
			return Record{}, err
		}

		key := decodeKey(row["Key"])
		if !strings.HasPrefix(key, s.prefix) {
			continue
		}
		key = key[len(s.prefix):]

		bytes, err := strconv.ParseInt(row["Size"], 10, 64)
		if err != nil {
			return Record{}, fmt.Errorf("parse size %q of object %s: %w", row["Size"], key, err)
		}
		size, err := contribution(s.costMode, s.prices, float64(bytes), row["StorageClass"])
		if err != nil {
			return Record{}, err
		}
		return Record{Path: strings.Split(key, "/"), Size: size, Count: 1}, nil
	}
}

func (s *inventoryStream) Close() error {
	return s.rows.Close()
}

// decodeKey percent-decodes an inventory report key. Keys that are not
// valid encodings are kept as-is.
func decodeKey(raw string) string {
	key, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return key
}

// contribution converts an object's size into its record value: raw bytes,
// or the monthly dollar cost of storing them in the given class.
func contribution(costMode bool, prices pricing.RegionPrices, sizeBytes float64, class string) (float64, error) {
	if !costMode {
		return sizeBytes, nil
	}
	price, err := prices.ByClass(class)
	if err != nil {
		return 0, err
	}
	return pricing.Cost(sizeBytes, price), nil
}
