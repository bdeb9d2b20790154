package pricing

// Class describes one S3 storage class tracked for cost estimation.
type Class struct {
	// Name is the storage class as reported by listings and inventory reports.
	Name string
	// MetricName is the StorageType dimension value CloudWatch uses for the class.
	MetricName string
	// PriceKey is the description the pricing data file uses for the class.
	PriceKey string
}

// Classes lists the storage classes with per-GiB-month storage pricing.
var Classes = []Class{
	{Name: "STANDARD", MetricName: "StandardStorage", PriceKey: "Standard"},
	{Name: "STANDARD_IA", MetricName: "StandardIAStorage", PriceKey: "Standard - Infrequent Access"},
	{Name: "ONEZONE_IA", MetricName: "OneZoneIAStorage", PriceKey: "One Zone - Infrequent Access"},
	{Name: "INTELLIGENT_TIERING", MetricName: "IntelligentTieringFAStorage", PriceKey: "Intelligent-Tiering Frequent Access"},
	{Name: "GLACIER_IR", MetricName: "GlacierInstantRetrievalStorage", PriceKey: "Glacier Instant Retrieval"},
	{Name: "GLACIER", MetricName: "GlacierStorage", PriceKey: "Glacier Flexible Retrieval"},
	{Name: "DEEP_ARCHIVE", MetricName: "DeepArchiveStorage", PriceKey: "Glacier Deep Archive"},
	{Name: "REDUCED_REDUNDANCY", MetricName: "ReducedRedundancyStorage", PriceKey: "Reduced Redundancy"},
}
