// Package pricing maps AWS regions and S3 storage classes to per-GiB-month
// storage prices.
package pricing

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

//go:embed pricing_data.json
var pricingData []byte

var (
	// ErrUnknownRegionPrice indicates the pricing table has no entry for a region.
	ErrUnknownRegionPrice = errors.New("unknown costs for region")
	// ErrUnknownClassPrice indicates a storage class has no price in a region.
	ErrUnknownClassPrice = errors.New("unknown costs for storage class")
)

// Table holds per-GiB-month prices keyed by region, then by the
// human-readable storage class description used in the pricing data file.
// Prices are kept as decimal strings until a region is resolved.
type Table struct {
	regions map[string]map[string]string
}

// Load parses the embedded pricing data into a Table.
func Load() (*Table, error) {
	var regions map[string]map[string]string
	if err := json.Unmarshal(pricingData, &regions); err != nil {
		return nil, fmt.Errorf("parse pricing data: %w", err)
	}
	return &Table{regions: regions}, nil
}

// ForRegion resolves per-class prices for one region. Classes without a
// price entry in the region's data are left out of the result, so lookups
// for them fail at use time rather than here.
func (t *Table) ForRegion(region string) (RegionPrices, error) {
	descs, ok := t.regions[region]
	if !ok {
		return RegionPrices{}, fmt.Errorf("%w %s", ErrUnknownRegionPrice, region)
	}

	rp := RegionPrices{
		region:   region,
		byClass:  make(map[string]float64, len(Classes)),
		byMetric: make(map[string]float64, len(Classes)),
	}
	for _, c := range Classes {
		raw, ok := descs[c.PriceKey]
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return RegionPrices{}, fmt.Errorf("parse price for %s in %s: %w", c.Name, region, err)
		}
		rp.byClass[c.Name] = price
		rp.byMetric[c.MetricName] = price
	}
	return rp, nil
}

// RegionPrices looks up per-GiB-month prices for a single region.
type RegionPrices struct {
	region   string
	byClass  map[string]float64
	byMetric map[string]float64
}

// Region returns the region these prices apply to.
func (p RegionPrices) Region() string { return p.region }

// ByClass returns the price for a storage class name, as reported by
// listings and inventory reports.
func (p RegionPrices) ByClass(class string) (float64, error) {
	price, ok := p.byClass[class]
	if !ok {
		return 0, fmt.Errorf("%w %q in region %s", ErrUnknownClassPrice, class, p.region)
	}
	return price, nil
}

// ByMetric returns the price for a CloudWatch StorageType dimension value.
func (p RegionPrices) ByMetric(metric string) (float64, error) {
	price, ok := p.byMetric[metric]
	if !ok {
		return 0, fmt.Errorf("%w %q in region %s", ErrUnknownClassPrice, metric, p.region)
	}
	return price, nil
}

const bytesPerGiB = 1 << 30

// Cost converts a byte total into a monthly cost at the given per-GiB price.
func Cost(sizeBytes, pricePerGiB float64) float64 {
	return sizeBytes / bytesPerGiB * pricePerGiB
}
