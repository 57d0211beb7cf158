// Package output assembles and serializes the scan result document. The
// report is the sole artifact external renderers consume; everything the
// run learned is in it.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mcpsentry/mcpsentry/pkg/aggregate"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/jsonutil"
)

// Report is the structured result document for one scan run. Servers
// appear in configuration document order.
type Report struct {
	RunID         string                     `json:"run_id"`
	ScanTimestamp time.Time                  `json:"scan_timestamp"`
	ConfigFile    string                     `json:"config_file"`
	AnalyzersUsed []string                   `json:"analyzers_used"`
	Servers       []finding.ServerScanResult `json:"servers"`
	Summary       aggregate.Summary          `json:"summary"`
}

// Write serializes the report as indented JSON to w.
func (r *Report) Write(w io.Writer) error {
	if err := jsonutil.MarshalWrite(w, r, "  "); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path, or to stdout when path is "-".
func (r *Report) WriteFile(path string) error {
	if path == "-" {
		return r.Write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
