// Package convert maps cppcheck XML error records onto Code Quality issues.
package convert

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/codequality-tools/cppcheck-codequality/internal/codeclimate"
	"github.com/codequality-tools/cppcheck-codequality/internal/cppcheck"
	"github.com/codequality-tools/cppcheck-codequality/internal/fingerprint"
)

// checkNamePrefix namespaces cppcheck rule ids so they cannot collide with
// identifiers from other tools feeding the same dashboard.
const checkNamePrefix = "cppcheck"

// MappingError reports a severity value outside the known closed set. The
// severity set is part of the schema contract; a new value means either a
// cppcheck upgrade this converter has not caught up with, or corrupted input.
type MappingError struct {
	Severity string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("unknown cppcheck severity %q", e.Severity)
}

// categoryBySeverity maps cppcheck severities onto Code Climate categories.
// The mapping is lossy (several severities collapse into one category), which
// is why the raw severity string is also appended to the categories list.
var categoryBySeverity = map[string]string{
	"error":       "Bug Risk",
	"warning":     "Bug Risk",
	"style":       "Style",
	"performance": "Performance",
	"portability": "Compatibility",
	"information": "Style",
}

// levelBySeverity maps cppcheck severities onto the dashboard severity levels
// used for sorting and coloring. Independent of categoryBySeverity: the two
// taxonomies serve different consumers.
var levelBySeverity = map[string]string{
	"error":       codeclimate.SeverityCritical,
	"warning":     codeclimate.SeverityMajor,
	"style":       codeclimate.SeverityMinor,
	"performance": codeclimate.SeverityMinor,
	"portability": codeclimate.SeverityMinor,
	"information": codeclimate.SeverityInfo,
}

// Converter performs one-directional cppcheck XML to Code Quality conversion.
// Each Convert call is independent; the only state is the configuration.
type Converter struct {
	// BaseDirs are tried in order when resolving relative source paths for
	// the fingerprint line lookup. Empty means "no explicit guidance".
	BaseDirs []string

	log *zap.SugaredLogger
}

// New creates a Converter. A nil logger is replaced with a no-op logger.
func New(baseDirs []string, log *zap.SugaredLogger) *Converter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Converter{BaseDirs: baseDirs, log: log}
}

// Convert reads a full cppcheck XML report from r and returns the ordered
// list of Code Quality issues.
//
// Empty input and reports without error records both yield an empty (non-nil)
// issue list and no error. Malformed XML, an unknown severity, and an
// unresolvable source path under explicit base directories abort the whole
// conversion — a structurally invalid document cannot be trusted to yield
// partial results.
func (c *Converter) Convert(r io.Reader) ([]codeclimate.Issue, error) {
	report, err := cppcheck.Parse(r)
	if err != nil {
		return nil, err
	}
	if report == nil {
		c.log.Info("empty report imported, skipping")
		return []codeclimate.Issue{}, nil
	}

	if report.Tool.Version != "" && report.Tool.Version < cppcheck.MinVersion {
		c.log.Warnf("report was produced by cppcheck %s, older than the verified baseline %s; the schema may have drifted",
			report.Tool.Version, cppcheck.MinVersion)
	}

	if len(report.Errors) == 0 {
		c.log.Warn("nothing to do: report contains no error records")
		return []codeclimate.Issue{}, nil
	}

	fp := fingerprint.New(c.BaseDirs, c.log)

	issues := make([]codeclimate.Issue, 0, len(report.Errors))
	for _, record := range report.Errors {
		// Some informational messages are not related to any code
		// location (e.g. "too many configs"). Just skip those.
		if len(record.Locations) == 0 {
			c.log.Debugw("skipping error record without location", "id", record.ID)
			continue
		}

		issue, err := c.mapRecord(record, fp)
		if err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	if len(issues) == 0 {
		c.log.Warn("result is empty")
	}
	return issues, nil
}

// mapRecord converts one error record into a Code Quality issue.
// The record is guaranteed to have at least one location.
func (c *Converter) mapRecord(record cppcheck.Error, fp *fingerprint.Fingerprinter) (codeclimate.Issue, error) {
	issue := codeclimate.NewIssue()

	category, ok := categoryBySeverity[record.Severity]
	if !ok {
		return issue, &MappingError{Severity: record.Severity}
	}
	// levelBySeverity is total over the same key set, so the lookup
	// cannot miss once the category lookup succeeded.
	level := levelBySeverity[record.Severity]

	checkName := fmt.Sprintf("%s[%s]", checkNamePrefix, record.ID)
	description := record.Message

	primary := record.Locations[0]
	path := primary.File
	if primary.File0 != "" {
		// The error was reported against a generated or included file;
		// file0 names the original. Point the issue at the original and
		// keep the reported path in the description so the link between
		// the two is not lost.
		path = primary.File0
		description = fmt.Sprintf("%s (reported in %s)", description, primary.File)
	}

	if record.CWE != "" {
		description = fmt.Sprintf("[CWE-%s] %s", record.CWE, description)
		issue.Content = &codeclimate.Content{
			Data: fmt.Sprintf("Refer to [CWE-%s](https://cwe.mitre.org/data/definitions/%s.html)",
				record.CWE, record.CWE),
		}
	}

	digest, err := fp.Compute(path, primary.Line, checkName)
	if err != nil {
		return issue, err
	}

	issue.CheckName = checkName
	issue.Description = description
	issue.Categories = []string{category, record.Severity}
	issue.Severity = level
	issue.Fingerprint = digest
	issue.Location = codeclimate.Location{
		Path: path,
		Positions: codeclimate.Positions{
			Begin: codeclimate.LineColumn{Line: primary.Line, Column: primary.Column},
		},
	}

	for _, loc := range record.Locations[1:] {
		issue.OtherLocations = append(issue.OtherLocations, codeclimate.Location{
			Path: loc.File,
			Positions: codeclimate.Positions{
				Begin: codeclimate.LineColumn{Line: loc.Line, Column: loc.Column},
			},
		})
	}

	return issue, nil
}

// ConvertFile converts the XML report at inputPath and writes the Code
// Quality JSON to outputPath ("-" for stdout). It returns the number of
// issues produced, for summary reporting.
func (c *Converter) ConvertFile(inputPath, outputPath string) (int, error) {
	fin, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("cannot open input file %q: %w", inputPath, err)
	}
	defer fin.Close()

	issues, err := c.Convert(fin)
	if err != nil {
		return 0, err
	}

	if err := codeclimate.Write(issues, outputPath); err != nil {
		return 0, fmt.Errorf("cannot write output file %q: %w", outputPath, err)
	}
	return len(issues), nil
}
