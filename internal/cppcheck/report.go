// Package cppcheck defines the cppcheck XML report schema and its parser.
package cppcheck

import (
	"bytes"
	"encoding/xml"
	"io"
)

// MinVersion is the oldest cppcheck release this converter was verified
// against. Reports from older releases are still processed, but the caller
// should warn about possible schema drift.
const MinVersion = "1.82"

// Report represents the <results> root element of a cppcheck XML v2 report.
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<results version="2">
//	  <cppcheck version="1.90"/>
//	  <errors>
//	    <error id="uninitMemberVar" severity="warning" msg="..." cwe="398">
//	      <location file="src/foo.cpp" line="50" column="5"/>
//	    </error>
//	  </errors>
//	</results>
type Report struct {
	XMLName xml.Name `xml:"results"`
	Version string   `xml:"version,attr"`
	Tool    Tool     `xml:"cppcheck"`
	// Errors decodes via a typed slice, so a report with a single <error>
	// element yields a one-element sequence rather than a scalar. Generic
	// XML-to-map decoders get this wrong; the typed schema rules it out.
	Errors []Error `xml:"errors>error"`
}

// Tool represents the <cppcheck version="..."/> marker element.
type Tool struct {
	Version string `xml:"version,attr"`
}

// Error represents one <error> element: a single linter finding.
type Error struct {
	ID       string `xml:"id,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"msg,attr"`
	Verbose  string `xml:"verbose,attr"`
	// CWE is the Common Weakness Enumeration id, empty when absent.
	// Kept as a string: it is only ever spliced into tags and URLs.
	CWE       string     `xml:"cwe,attr"`
	Locations []Location `xml:"location"`
}

// Location represents one <location> element. The first location on an error
// is the primary site; the rest are secondary/related sites.
type Location struct {
	File string `xml:"file,attr"`
	// File0 is the original analyzed file when File is a generated or
	// included file. Empty when absent.
	File0  string `xml:"file0,attr"`
	Line   int    `xml:"line,attr"`
	Column int    `xml:"column,attr"`
}

// ParseError reports a structurally invalid XML document. No sane defaults
// exist for unparseable input, so it aborts the whole conversion.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "cppcheck: malformed XML report: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads a full cppcheck XML report from r.
//
// An empty (or whitespace-only) input is not an error: it returns (nil, nil)
// and the caller is expected to produce an empty result. Anything else that
// fails to decode returns a *ParseError.
func Parse(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var report Report
	if err := xml.Unmarshal(data, &report); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &report, nil
}
