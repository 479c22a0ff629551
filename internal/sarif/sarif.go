// Package sarif renders reports as SARIF 2.1.0 documents.
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html
package sarif

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/google/uuid"

	"github.com/phobologic/rsinspect/internal/inspect"
	"github.com/phobologic/rsinspect/internal/model"
)

const schemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// Report is the top-level SARIF document.
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single analysis run.
type Run struct {
	Tool              Tool              `json:"tool"`
	AutomationDetails AutomationDetails `json:"automationDetails"`
	Results           []Result          `json:"results"`
	Invocations       []Invocation      `json:"invocations,omitempty"`
}

// AutomationDetails identifies the run.
type AutomationDetails struct {
	GUID string `json:"guid"`
}

// Tool describes the analysis tool.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver describes the primary analysis component.
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes an inspection.
type Rule struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name,omitempty"`
	ShortDescription     *Message           `json:"shortDescription,omitempty"`
	DefaultConfiguration *RuleConfiguration `json:"defaultConfiguration,omitempty"`
	Properties           map[string]any     `json:"properties,omitempty"`
}

// RuleConfiguration holds the default level of a rule.
type RuleConfiguration struct {
	Level string `json:"level,omitempty"` // error, warning, note, none
}

// Result is a single diagnostic.
type Result struct {
	RuleID       string            `json:"ruleId"`
	RuleIndex    int               `json:"ruleIndex"`
	Level        string            `json:"level"`
	Message      Message           `json:"message"`
	Locations    []Location        `json:"locations"`
	Fingerprints map[string]string `json:"fingerprints,omitempty"`
	Properties   map[string]any    `json:"properties,omitempty"`
}

// Message contains text.
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation identifies a file and region.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
}

// ArtifactLocation identifies a file.
type ArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// Region identifies a position within a file.
type Region struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

// Invocation describes one invocation of the tool.
type Invocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	Machine             string `json:"machine,omitempty"`
}

// Build converts a report into a SARIF document. Every known inspection is
// listed as a rule so ruleIndex stays stable across runs.
func Build(r *model.Report, version string) *Report {
	rules := inspect.Rules()
	index := make(map[string]int, len(rules))
	sarifRules := make([]Rule, len(rules))
	for i, rule := range rules {
		index[rule.ID] = i
		props := map[string]any{}
		if rule.Lint != "" {
			props["lint"] = rule.Lint
		}
		if rule.Code != "" {
			props["code"] = rule.Code
		}
		sarifRules[i] = Rule{
			ID:                   rule.ID,
			Name:                 rule.Title,
			ShortDescription:     &Message{Text: rule.Title},
			DefaultConfiguration: &RuleConfiguration{Level: levelFor(rule.Default)},
			Properties:           props,
		}
	}

	results := make([]Result, 0)
	for _, d := range r.Diagnostics() {
		res := Result{
			RuleID:    d.Inspection,
			RuleIndex: index[d.Inspection],
			Level:     severityLevel(d.Severity),
			Message:   Message{Text: d.Message},
			Locations: []Location{{
				PhysicalLocation: PhysicalLocation{
					ArtifactLocation: ArtifactLocation{URI: d.File, URIBaseID: "%SRCROOT%"},
					Region:           Region{StartLine: d.Line, StartColumn: d.Column},
				},
			}},
			Fingerprints: map[string]string{"rsinspect/v1": fingerprint(d)},
		}
		if d.Fix.Kind != model.NoFix {
			res.Properties = map[string]any{"fix": d.Fix.String()}
		}
		results = append(results, res)
	}

	return &Report{
		Schema:  schemaURI,
		Version: "2.1.0",
		Runs: []Run{{
			Tool: Tool{Driver: Driver{
				Name:    "rsinspect",
				Version: version,
				Rules:   sarifRules,
			}},
			AutomationDetails: AutomationDetails{GUID: uuid.NewString()},
			Results:           results,
			Invocations: []Invocation{{
				ExecutionSuccessful: true,
				Machine:             runtime.GOOS + "/" + runtime.GOARCH,
			}},
		}},
	}
}

// Encode renders the report as indented SARIF JSON.
func Encode(r *model.Report, version string) (string, error) {
	data, err := json.MarshalIndent(Build(r, version), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF: %w", err)
	}
	return string(data), nil
}

func severityLevel(s model.Severity) string {
	if s == model.SeverityError {
		return "error"
	}
	return "warning"
}

func levelFor(l model.Level) string {
	switch l {
	case model.Allow:
		return "none"
	case model.Deny, model.Forbid:
		return "error"
	}
	return "warning"
}

// fingerprint is stable across runs for the same finding.
func fingerprint(d model.Diagnostic) string {
	data := fmt.Sprintf("%s:%d:%d:%s", d.File, d.Line, d.Column, d.Inspection)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
