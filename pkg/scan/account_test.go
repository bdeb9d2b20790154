package scan

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestScan_AccountWide(t *testing.T) {
	api := &fakeAWS{
		buckets: []string{"b-east", "b-eu"},
		locations: map[string]types.BucketLocationConstraint{
			"b-east": "",
			"b-eu":   types.BucketLocationConstraintEu,
		},
		metrics: map[string]float64{
			"b-east|StandardStorage": 1073741824,
			"b-east|AllStorageTypes": 42,
			"b-eu|GlacierStorage":    512,
			"b-eu|AllStorageTypes":   7,
		},
	}

	s, err := New(Options{}, &fakeClients{aws: api})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	stream, err := s.Records(quietCtx())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	recs := drain(t, stream)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	checkRecord(t, recs[0], []string{"b-eu", ""}, 512, 7)
	checkRecord(t, recs[1], []string{"b-east", ""}, 1073741824, 42)

	totals := s.Totals()
	if totals.Objects != 49 || totals.Size != 1073742336 {
		t.Errorf("totals = %+v, want 49 objects and 1073742336 bytes", totals)
	}
}

func TestScan_AccountCostMode(t *testing.T) {
	api := &fakeAWS{
		buckets: []string{"b"},
		metrics: map[string]float64{
			"b|StandardStorage": 2147483648,
			"b|AllStorageTypes": 3,
		},
	}

	s, err := New(Options{CostMode: true}, &fakeClients{aws: api})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	stream, err := s.Records(quietCtx())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	recs := drain(t, stream)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	checkRecord(t, recs[0], []string{"b", ""}, 0.046, 3)
}

func TestScan_AccountWideProfiles(t *testing.T) {
	p1 := &fakeAWS{
		buckets: []string{"shared"},
		metrics: map[string]float64{
			"shared|StandardStorage": 100,
			"shared|AllStorageTypes": 5,
		},
	}
	p2 := &fakeAWS{
		buckets: []string{"shared"},
		metrics: map[string]float64{
			"shared|StandardStorage": 999,
			"shared|AllStorageTypes": 70,
		},
	}

	s, err := New(Options{Profiles: []string{"p1", "p2"}},
		&fakeClients{byProfile: map[string]*fakeAWS{"p1": p1, "p2": p2}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	stream, err := s.Records(quietCtx())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	recs := drain(t, stream)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	checkRecord(t, recs[0], []string{"shared", ""}, 100, 5)
}

func TestScan_AccountSkipsEmptyBuckets(t *testing.T) {
	api := &fakeAWS{
		buckets: []string{"b-data", "b-empty"},
		metrics: map[string]float64{
			"b-data|StandardStorage": 2048,
			"b-data|AllStorageTypes": 4,
		},
	}

	s, err := New(Options{}, &fakeClients{aws: api})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	stream, err := s.Records(quietCtx())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}

	recs := drain(t, stream)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	checkRecord(t, recs[0], []string{"b-data", ""}, 2048, 4)
}

func TestScan_AccountCloudWatchError(t *testing.T) {
	api := &fakeAWS{buckets: []string{"b"}}
	s, err := New(Options{}, &fakeClients{aws: api, cwErr: errors.New("throttled")})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	stream, err := s.Records(quietCtx())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	defer stream.Close()

	if _, err := stream.Next(); err == nil {
		t.Fatal("expected error, got nil")
	}
}
