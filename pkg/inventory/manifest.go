package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Manifest describes one inventory report batch: when it was generated, the
// column schema of its data files, and where those files live.
type Manifest struct {
	SourceBucket      string         `json:"sourceBucket"`
	DestinationBucket string         `json:"destinationBucket"`
	Version           string         `json:"version"`
	CreationTimestamp string         `json:"creationTimestamp"`
	FileFormat        string         `json:"fileFormat"`
	FileSchema        string         `json:"fileSchema"`
	Files             []ManifestFile `json:"files"`
}

// ManifestFile is a single data file listed in the manifest.
type ManifestFile struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	MD5Checksum string `json:"MD5checksum"`
}

// ParseManifest parses an inventory manifest.json document.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.FileFormat != "" && !strings.EqualFold(m.FileFormat, "CSV") {
		return fmt.Errorf("unsupported file format %q, only CSV inventories are supported", m.FileFormat)
	}
	if strings.TrimSpace(m.FileSchema) == "" {
		return errors.New("manifest missing fileSchema")
	}
	if _, err := m.CreationTime(); err != nil {
		return err
	}
	return nil
}

// Schema returns the manifest's column names, trimmed, in file order.
func (m *Manifest) Schema() []string {
	cols := strings.Split(m.FileSchema, ",")
	for i, col := range cols {
		cols[i] = strings.TrimSpace(col)
	}
	return cols
}

// CreationTime returns when the report batch was generated. The manifest
// stores the timestamp as a string of epoch milliseconds.
func (m *Manifest) CreationTime() (time.Time, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(m.CreationTimestamp), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse manifest creationTimestamp %q: %w", m.CreationTimestamp, err)
	}
	return time.UnixMilli(ms), nil
}
