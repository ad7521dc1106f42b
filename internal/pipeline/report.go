// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.yaml.in/yaml/v3"
)

// State is the terminal state of a batch run.
type State string

const (
	StateNoItems      State = "no_items_found"
	StateAllSucceeded State = "completed"
	StateSomeFailed   State = "completed_with_failures"
)

// Report aggregates the outcomes of one run, one entry per discovered item.
type Report struct {
	Root     string
	Outcomes []Outcome
}

// Total returns the number of items processed.
func (r Report) Total() int {
	return len(r.Outcomes)
}

// Succeeded returns the number of items transformed without error.
func (r Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed returns the number of items whose transform failed.
func (r Report) Failed() int {
	return r.Total() - r.Succeeded()
}

// HasFailures reports whether any item failed.
func (r Report) HasFailures() bool {
	return r.Failed() > 0
}

// AllFailed reports whether there were items and none of them succeeded.
func (r Report) AllFailed() bool {
	return r.Total() > 0 && r.Succeeded() == 0
}

// State returns the terminal state of the run.
func (r Report) State() State {
	switch {
	case r.Total() == 0:
		return StateNoItems
	case r.HasFailures():
		return StateSomeFailed
	default:
		return StateAllSucceeded
	}
}

// ReportFile is the on-disk form of a Report.
type ReportFile struct {
	Tool        string        `yaml:"tool"`
	Root        string        `yaml:"root"`
	State       State         `yaml:"state"`
	Total       int           `yaml:"total"`
	Succeeded   int           `yaml:"succeeded"`
	Failed      int           `yaml:"failed"`
	GeneratedAt time.Time     `yaml:"generated_at"`
	Items       []ReportEntry `yaml:"items"`
}

// ReportEntry is one outcome in a ReportFile.
type ReportEntry struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	Action      Action `yaml:"action,omitempty"`
	Error       string `yaml:"error,omitempty"`
}

// NewReportFile converts a report for serialization.
func NewReportFile(tool string, r Report) ReportFile {
	rf := ReportFile{
		Tool:        tool,
		Root:        r.Root,
		State:       r.State(),
		Total:       r.Total(),
		Succeeded:   r.Succeeded(),
		Failed:      r.Failed(),
		GeneratedAt: time.Now().UTC(),
		Items:       make([]ReportEntry, len(r.Outcomes)),
	}
	for i, o := range r.Outcomes {
		e := ReportEntry{
			Source:      o.Item.Path,
			Destination: o.Destination,
			Action:      o.Action,
		}
		if o.Err != nil {
			e.Error = o.Err.Error()
		}
		rf.Items[i] = e
	}
	return rf
}

// WriteReport saves the report for tool as YAML at path.
func WriteReport(path, tool string, r Report) error {
	data, err := yaml.Marshal(NewReportFile(tool, r))
	if err != nil {
		return errors.Wrap(err, "marshaling report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing report %s", path)
	}
	return nil
}
