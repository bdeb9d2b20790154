// Package cli implements the command-line interface for s3du.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/s3du/s3du/internal/logctx"
	"github.com/s3du/s3du/pkg/awsconn"
	"github.com/s3du/s3du/pkg/cwmetrics"
	"github.com/s3du/s3du/pkg/humanfmt"
	"github.com/s3du/s3du/pkg/inventory"
	"github.com/s3du/s3du/pkg/logging"
	"github.com/s3du/s3du/pkg/scan"
)

// invocation is one fully parsed and validated command line.
type invocation struct {
	opts  scan.Options
	debug bool
	human bool
}

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	inv, err := parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	logging.Init(inv.debug, inv.human)
	log := logging.L()
	ctx := logctx.WithLogger(context.Background(), *log)

	tracker := logging.NewTracker(*log, inv.opts.CostMode)
	inv.opts.Notify = func(p scan.Progress) { tracker.Report(p.Records, p.Total) }

	scanner, err := scan.New(inv.opts, newClients(awsconn.NewFactory(inv.opts.Endpoint)))
	if err != nil {
		return err
	}
	return runScan(ctx, scanner, inv, tracker, os.Stdout)
}

func parse(args []string) (invocation, error) {
	fs := flag.NewFlagSet("s3du", flag.ContinueOnError)
	bucket := fs.String("bucket", "", "bucket to scan, scans every bucket when omitted")
	prefix := fs.String("prefix", "", "limit the scan to keys under this prefix")
	profile := fs.String("profile", "", "comma separated AWS config profiles")
	cost := fs.Bool("cost", false, "report storage cost instead of size")
	invReport := fs.Bool("inventory", false, "read an S3 Inventory report instead of listing objects")
	endpoint := fs.String("endpoint", "", "custom S3 endpoint URL")
	debug := fs.Bool("debug", false, "enable debug logging")
	human := fs.Bool("human", false, "pretty console logging")

	if err := fs.Parse(args); err != nil {
		return invocation{}, err
	}
	if fs.NArg() > 0 {
		return invocation{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	inv := invocation{
		opts: scan.Options{
			Bucket:        *bucket,
			Prefix:        *prefix,
			Profiles:      splitProfiles(*profile),
			CostMode:      *cost,
			InventoryMode: *invReport,
			Endpoint:      *endpoint,
		},
		debug: *debug,
		human: *human,
	}
	return inv, validate(inv.opts)
}

// splitProfiles turns the comma separated -profile value into a list, nil
// when the flag was not given.
func splitProfiles(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func validate(opts scan.Options) error {
	if opts.Bucket == "" {
		if opts.Prefix != "" {
			return errors.New("-prefix requires -bucket")
		}
		if opts.InventoryMode {
			return errors.New("-inventory requires -bucket")
		}
	}
	if opts.Endpoint != "" {
		switch {
		case opts.InventoryMode:
			return errors.New("AWS S3 Inventory not supported with custom endpoints")
		case opts.CostMode:
			return errors.New("AWS S3 cost not supported with custom endpoints")
		case opts.Bucket == "":
			return errors.New("AWS S3 bucket list not supported with custom endpoints")
		}
	}
	return nil
}

func runScan(ctx context.Context, scanner *scan.Scanner, inv invocation, tracker *logging.Tracker, w io.Writer) error {
	stream, err := scanner.Records(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		rec, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		printRecord(w, rec, inv)
	}

	totals := scanner.Totals()
	tracker.Done(totals.Objects, totals.Size)

	fmt.Fprintln(w)
	for _, f := range scanner.Summary() {
		fmt.Fprintf(w, "%s: %s\n", f.Label, f.Value)
	}
	return nil
}

// printRecord writes one record as a du-style line, value first. Account
// wide scans add an object count column.
func printRecord(w io.Writer, rec scan.Record, inv invocation) {
	path := strings.Join(rec.Path, "/")
	value := formatValue(rec.Size, inv.opts.CostMode, inv.human)
	if inv.opts.Bucket == "" {
		fmt.Fprintf(w, "%s\t%s\t%s\n", value, formatCount(rec.Count, inv.human), path)
		return
	}
	fmt.Fprintf(w, "%s\t%s\n", value, path)
}

func formatValue(v float64, costMode, human bool) string {
	if human {
		if costMode {
			return humanfmt.Dollars(v)
		}
		return humanfmt.BytesFloat(v)
	}
	if costMode {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func formatCount(n int64, human bool) string {
	if human {
		return humanfmt.Count(n)
	}
	return strconv.FormatInt(n, 10)
}

// clients adapts awsconn.Factory to the scan client factory.
type clients struct {
	factory *awsconn.Factory
}

func newClients(f *awsconn.Factory) *clients {
	return &clients{factory: f}
}

func (c *clients) S3(ctx context.Context, profile string) (scan.S3API, error) {
	return c.factory.S3(ctx, profile)
}

func (c *clients) CloudWatch(ctx context.Context, profile, region string) (cwmetrics.API, error) {
	return c.factory.CloudWatch(ctx, profile, region)
}

func (c *clients) Fetcher(ctx context.Context, profile string) (inventory.FileFetcher, error) {
	api, err := c.factory.S3(ctx, profile)
	if err != nil {
		return nil, err
	}
	return awsconn.NewDownloader(api, awsconn.DefaultDownloaderConfig()), nil
}
