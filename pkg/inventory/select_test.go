package inventory

import (
	"errors"
	"strings"
	"testing"
)

func csvConfig(id string) Config {
	return Config{
		ID:             id,
		Format:         "CSV",
		Enabled:        true,
		OptionalFields: []string{"Size", "StorageClass"},
		Frequency:      "Daily",
		ObjectVersions: "Current",
	}
}

func TestSelectConfig_FiltersInvalidCandidates(t *testing.T) {
	disabled := csvConfig("disabled")
	disabled.Enabled = false

	parquet := csvConfig("parquet")
	parquet.Format = "Parquet"

	missingField := csvConfig("missing-field")
	missingField.OptionalFields = []string{"Size"}

	wrongPrefix := csvConfig("wrong-prefix")
	wrongPrefix.FilterPrefix = "logs/"

	valid := csvConfig("valid")

	got, err := SelectConfig("b", []Config{disabled, parquet, missingField, wrongPrefix, valid}, []string{"Size", "StorageClass"}, "data/")
	if err != nil {
		t.Fatalf("SelectConfig failed: %v", err)
	}
	if got.ID != "valid" {
		t.Errorf("selected %q, want %q", got.ID, "valid")
	}
}

func TestSelectConfig_NoCandidates(t *testing.T) {
	parquet := csvConfig("parquet-only")
	parquet.Format = "Parquet"

	_, err := SelectConfig("my-bucket", []Config{parquet}, []string{"Size"}, "data/")
	if !errors.Is(err, ErrNoMatchingConfig) {
		t.Fatalf("expected ErrNoMatchingConfig, got %v", err)
	}
	for _, want := range []string{"my-bucket", "data/", "Size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err.Error(), want)
		}
	}
}

func TestSelectConfig_LongerPrefixWins(t *testing.T) {
	shortPrefix := csvConfig("short")
	shortPrefix.FilterPrefix = ""
	shortPrefix.OptionalFields = []string{"Size"}

	longPrefix := csvConfig("long")
	longPrefix.FilterPrefix = "data/"
	longPrefix.Frequency = "Weekly"
	longPrefix.ObjectVersions = "All"
	longPrefix.OptionalFields = []string{"Size", "StorageClass", "ETag", "LastModifiedDate", "IsLatest"}

	got, err := SelectConfig("b", []Config{shortPrefix, longPrefix}, []string{"Size"}, "data/")
	if err != nil {
		t.Fatalf("SelectConfig failed: %v", err)
	}
	if got.ID != "long" {
		t.Errorf("selected %q, want %q", got.ID, "long")
	}
}

func TestSelectConfig_DailyBeatsWeekly(t *testing.T) {
	weekly := csvConfig("weekly")
	weekly.Frequency = "Weekly"

	daily := csvConfig("daily")

	got, err := SelectConfig("b", []Config{weekly, daily}, []string{"Size"}, "")
	if err != nil {
		t.Fatalf("SelectConfig failed: %v", err)
	}
	if got.ID != "daily" {
		t.Errorf("selected %q, want %q", got.ID, "daily")
	}
}

func TestSelectConfig_CurrentBeatsAllVersions(t *testing.T) {
	all := csvConfig("all-versions")
	all.ObjectVersions = "All"

	current := csvConfig("current-only")

	got, err := SelectConfig("b", []Config{all, current}, []string{"Size"}, "")
	if err != nil {
		t.Fatalf("SelectConfig failed: %v", err)
	}
	if got.ID != "current-only" {
		t.Errorf("selected %q, want %q", got.ID, "current-only")
	}
}

func TestSelectConfig_FewerFieldsWin(t *testing.T) {
	wide := csvConfig("wide")
	wide.OptionalFields = []string{"Size", "StorageClass", "ETag", "LastModifiedDate"}

	narrow := csvConfig("narrow")
	narrow.OptionalFields = []string{"Size"}

	got, err := SelectConfig("b", []Config{wide, narrow}, []string{"Size"}, "")
	if err != nil {
		t.Fatalf("SelectConfig failed: %v", err)
	}
	if got.ID != "narrow" {
		t.Errorf("selected %q, want %q", got.ID, "narrow")
	}
}

func TestSelectConfig_TieKeepsInputOrder(t *testing.T) {
	first := csvConfig("first")
	second := csvConfig("second")

	got, err := SelectConfig("b", []Config{first, second}, []string{"Size"}, "")
	if err != nil {
		t.Fatalf("SelectConfig failed: %v", err)
	}
	if got.ID != "first" {
		t.Errorf("selected %q, want %q", got.ID, "first")
	}
}

func TestSelectConfig_ResultAlwaysSatisfiesRequirements(t *testing.T) {
	configs := []Config{
		csvConfig("a"),
		csvConfig("b"),
		csvConfig("c"),
	}
	configs[0].OptionalFields = []string{"ETag"}
	configs[1].FilterPrefix = "other/"
	configs[2].FilterPrefix = "data/"

	got, err := SelectConfig("b", configs, []string{"Size", "StorageClass"}, "data/logs/")
	if err != nil {
		t.Fatalf("SelectConfig failed: %v", err)
	}
	if !hasFields(got.OptionalFields, []string{"Size", "StorageClass"}) {
		t.Errorf("selected config %q missing required fields", got.ID)
	}
	if !strings.HasPrefix("data/logs/", got.FilterPrefix) {
		t.Errorf("selected config %q filter prefix %q does not cover scan prefix", got.ID, got.FilterPrefix)
	}
}
