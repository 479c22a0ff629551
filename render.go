package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/rsinspect/internal/model"
	"github.com/phobologic/rsinspect/internal/sarif"
	"github.com/phobologic/rsinspect/internal/toon"
)

// render encodes the report in the configured output format.
func render(r *model.Report, format string) (string, error) {
	switch format {
	case "toon":
		return toon.Encode(r), nil
	case "sarif":
		return sarif.Encode(r, version)
	case "yaml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("encoding yaml: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	case "text":
		return renderText(r), nil
	}
	return "", fmt.Errorf("unsupported format %q", format)
}

// renderText writes one compiler-style line per diagnostic.
func renderText(r *model.Report) string {
	var b strings.Builder
	n := 0
	for _, d := range r.Diagnostics() {
		fmt.Fprintf(&b, "%s:%d:%d: %s[%s]: %s", d.File, d.Line, d.Column, d.Severity, d.Inspection, d.Message)
		if fix := d.Fix.String(); fix != "" {
			fmt.Fprintf(&b, " (fix: %s)", fix)
		}
		b.WriteByte('\n')
		n++
	}
	fmt.Fprintf(&b, "%d diagnostic(s) in %d of %d file(s)", n, len(r.Files), r.Analyzed)
	return b.String()
}
