package inventory

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// SelectConfig picks the best inventory configuration for scanning bucket
// under scanPrefix. Candidates must be enabled, in CSV format, carry every
// required optional field, and have a filter prefix that covers scanPrefix.
// Among candidates, prefer a longer filter prefix, then a daily schedule,
// then current-versions-only, then fewer optional fields. Remaining ties are
// broken by input order.
func SelectConfig(bucket string, configs []Config, required []string, scanPrefix string) (Config, error) {
	var candidates []Config
	for _, c := range configs {
		if !c.Enabled {
			continue
		}
		if c.Format != "CSV" {
			continue
		}
		if !hasFields(c.OptionalFields, required) {
			continue
		}
		if !strings.HasPrefix(scanPrefix, c.FilterPrefix) {
			continue
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return Config{}, noMatchError(bucket, required, scanPrefix)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].sortKey(), candidates[j].sortKey()
		for n := range a {
			if a[n] != b[n] {
				return a[n] < b[n]
			}
		}
		return false
	})
	return candidates[0], nil
}

// sortKey orders configurations so the cheapest one to read sorts first.
func (c Config) sortKey() [4]int {
	k := [4]int{-len(c.FilterPrefix), 2, 2, len(c.OptionalFields)}
	if c.Frequency == "Daily" {
		k[1] = 1
	}
	if c.ObjectVersions == "Current" {
		k[2] = 1
	}
	return k
}

func hasFields(fields, required []string) bool {
	for _, want := range required {
		if !slices.Contains(fields, want) {
			return false
		}
	}
	return true
}

func noMatchError(bucket string, required []string, scanPrefix string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, " for bucket %q", bucket)
	if scanPrefix != "" {
		fmt.Fprintf(&sb, ", covering prefix %q", scanPrefix)
	}
	sb.WriteString(", in CSV format")
	if len(required) > 0 {
		quoted := make([]string, len(required))
		for i, f := range required {
			quoted[i] = fmt.Sprintf("%q", f)
		}
		fmt.Fprintf(&sb, ", with optional fields %s", strings.Join(quoted, ", "))
	}
	return fmt.Errorf("%w%s", ErrNoMatchingConfig, sb.String())
}
