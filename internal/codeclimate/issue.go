// Package codeclimate provides the Code Climate / GitLab "Code Quality"
// report types and their JSON serializer.
//
// Schema reference:
// https://github.com/codeclimate/platform/blob/master/spec/analyzers/SPEC.md#data-types
package codeclimate

import (
	"encoding/json"
	"fmt"
	"os"
)

// Severity levels understood by the consuming dashboards. Blocker completes
// the schema enum; no cppcheck severity maps to it.
const (
	SeverityInfo     = "info"
	SeverityMinor    = "minor"
	SeverityMajor    = "major"
	SeverityCritical = "critical"
	SeverityBlocker  = "blocker"
)

// Issue is one Code Quality report element.
type Issue struct {
	Type        string   `json:"type"`
	CheckName   string   `json:"check_name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Severity    string   `json:"severity"`
	// Fingerprint uniquely identifies this issue occurrence so that
	// dashboards can deduplicate it, or exclude it from future analysis.
	Fingerprint    string     `json:"fingerprint"`
	Location       Location   `json:"location"`
	OtherLocations []Location `json:"other_locations,omitempty"`
	Content        *Content   `json:"content,omitempty"`
}

// Location points at a begin line/column in one source file.
type Location struct {
	Path      string    `json:"path"`
	Positions Positions `json:"positions"`
}

type Positions struct {
	Begin LineColumn `json:"begin"`
}

type LineColumn struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Content carries free-text elaboration for an issue (markdown allowed).
type Content struct {
	Data string `json:"data"`
}

// NewIssue returns an Issue with the constant type tag set. Each issue is
// built fresh from typed fields; there is no shared prototype to mutate.
func NewIssue() Issue {
	return Issue{Type: "issue"}
}

// Marshal renders the report as a JSON array. A nil or empty issue list
// renders as "[]", never "null" — an empty report is still a valid report.
func Marshal(issues []Issue) ([]byte, error) {
	if issues == nil {
		issues = []Issue{}
	}
	return json.MarshalIndent(issues, "", "  ")
}

// Write serializes the report and writes it to the given output path.
// If outputPath is "-", it writes to stdout.
func Write(issues []Issue, outputPath string) error {
	data, err := Marshal(issues)
	if err != nil {
		return fmt.Errorf("failed to marshal Code Quality JSON: %w", err)
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		if err == nil {
			_, err = os.Stdout.WriteString("\n")
		}
		return err
	}

	return os.WriteFile(outputPath, append(data, '\n'), 0644)
}
