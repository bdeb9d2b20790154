package inventory

import "errors"

var (
	// ErrNoMatchingConfig indicates no inventory configuration satisfies the
	// scan's format, field, and prefix requirements.
	ErrNoMatchingConfig = errors.New("no matching inventory configuration")
	// ErrNoInventoryData indicates no report batch for the selected
	// configuration has a fetchable manifest.
	ErrNoInventoryData = errors.New("no inventory report data files")
)
