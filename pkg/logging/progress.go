package logging

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/s3du/s3du/pkg/humanfmt"
)

// Tracker reports scan progress as structured log events. The scan core
// invokes it through a notifier callback, so reporting never blocks record
// production beyond the cost of one log write.
type Tracker struct {
	log      zerolog.Logger
	costMode bool
	start    time.Time
}

// NewTracker creates a progress tracker. In cost mode the running total is
// formatted as dollars, otherwise as bytes.
func NewTracker(log zerolog.Logger, costMode bool) *Tracker {
	return &Tracker{
		log:      log,
		costMode: costMode,
		start:    time.Now(),
	}
}

// Report logs one progress event with the records seen so far and the
// accumulated size or cost.
func (t *Tracker) Report(records int64, total float64) {
	e := t.log.Info().
		Str("event", "scan_progress").
		Int64("records", records)

	e = t.totalFields(e, total)
	e.Msg("scanning")
}

// Done logs the final completion event with elapsed time.
func (t *Tracker) Done(records int64, total float64) {
	elapsed := time.Since(t.start)
	e := t.log.Info().
		Str("event", "scan_completed").
		Int64("records", records).
		Int64("duration_ms", elapsed.Milliseconds())

	if IsPrettyMode() {
		e = e.Str("duration_h", humanfmt.Duration(elapsed))
	}

	e = t.totalFields(e, total)
	e.Msg("scan complete")
}

func (t *Tracker) totalFields(e *zerolog.Event, total float64) *zerolog.Event {
	if t.costMode {
		e = e.Float64("total_cost", total)
		if IsPrettyMode() {
			e = e.Str("total_cost_h", humanfmt.Dollars(total))
		}
		return e
	}
	e = e.Float64("total_bytes", total)
	if IsPrettyMode() {
		e = e.Str("total_bytes_h", humanfmt.BytesFloat(total))
	}
	return e
}
