package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/s3du/s3du/pkg/scan"
)

func TestParse_Defaults(t *testing.T) {
	inv, err := parse(nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if inv.opts.Bucket != "" || inv.opts.Prefix != "" {
		t.Errorf("opts = %+v, want empty bucket and prefix", inv.opts)
	}
	if inv.opts.Profiles != nil {
		t.Errorf("Profiles = %v, want nil", inv.opts.Profiles)
	}
	if inv.opts.CostMode || inv.opts.InventoryMode || inv.debug || inv.human {
		t.Errorf("unexpected mode flags set: %+v", inv)
	}
}

func TestParse_SingleBucket(t *testing.T) {
	inv, err := parse([]string{
		"-bucket", "media",
		"-prefix", "photos/",
		"-profile", "a,b",
		"-cost",
		"-human",
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if inv.opts.Bucket != "media" || inv.opts.Prefix != "photos/" {
		t.Errorf("opts = %+v, want bucket media prefix photos/", inv.opts)
	}
	if len(inv.opts.Profiles) != 2 || inv.opts.Profiles[0] != "a" || inv.opts.Profiles[1] != "b" {
		t.Errorf("Profiles = %v, want [a b]", inv.opts.Profiles)
	}
	if !inv.opts.CostMode {
		t.Error("CostMode not set")
	}
	if !inv.human {
		t.Error("human not set")
	}
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"prefix without bucket", []string{"-prefix", "p/"}, "-prefix requires -bucket"},
		{"inventory without bucket", []string{"-inventory"}, "-inventory requires -bucket"},
		{"endpoint with inventory", []string{"-bucket", "b", "-inventory", "-endpoint", "http://localhost:9000"},
			"AWS S3 Inventory not supported with custom endpoints"},
		{"endpoint with cost", []string{"-bucket", "b", "-cost", "-endpoint", "http://localhost:9000"},
			"AWS S3 cost not supported with custom endpoints"},
		{"endpoint account wide", []string{"-endpoint", "http://localhost:9000"},
			"AWS S3 bucket list not supported with custom endpoints"},
		{"positional argument", []string{"media"}, "unexpected argument: media"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.args)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestSplitProfiles(t *testing.T) {
	if got := splitProfiles(""); got != nil {
		t.Errorf("splitProfiles(\"\") = %v, want nil", got)
	}
	got := splitProfiles("dev,prod")
	if len(got) != 2 || got[0] != "dev" || got[1] != "prod" {
		t.Errorf("splitProfiles(\"dev,prod\") = %v, want [dev prod]", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v        float64
		costMode bool
		human    bool
		want     string
	}{
		{150, false, false, "150"},
		{1073741824, false, false, "1073741824"},
		{0.046, true, false, "0.046"},
		{150, false, true, "150 B"},
		{0.046, true, true, "$0.0460"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.v, tt.costMode, tt.human); got != tt.want {
			t.Errorf("formatValue(%v, %v, %v) = %q, want %q", tt.v, tt.costMode, tt.human, got, tt.want)
		}
	}
}

func TestPrintRecord_SingleBucket(t *testing.T) {
	var buf bytes.Buffer
	inv := invocation{opts: scan.Options{Bucket: "media"}}

	printRecord(&buf, scan.Record{Path: []string{"photos", "cat.jpg"}, Size: 150, Count: 1}, inv)
	if got := buf.String(); got != "150\tphotos/cat.jpg\n" {
		t.Errorf("line = %q, want %q", got, "150\tphotos/cat.jpg\n")
	}
}

func TestPrintRecord_AccountWide(t *testing.T) {
	var buf bytes.Buffer
	inv := invocation{}

	printRecord(&buf, scan.Record{Path: []string{"media", ""}, Size: 2048, Count: 7}, inv)
	if got := buf.String(); got != "2048\t7\tmedia/\n" {
		t.Errorf("line = %q, want %q", got, "2048\t7\tmedia/\n")
	}
}
