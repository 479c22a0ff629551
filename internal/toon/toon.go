// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/rsinspect/internal/inspect"
	"github.com/phobologic/rsinspect/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a Report into TOON format.
func Encode(r *model.Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("repo: %s", encodeValue(r.RepoName)))
	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))
	parts = append(parts, fmt.Sprintf("analyzed: %d", r.Analyzed))

	var fileRows [][]string
	for i := range r.Files {
		fr := &r.Files[i]
		fileRows = append(fileRows, []string{
			fr.Path,
			strconv.Itoa(fr.Score),
			fmt.Sprintf("%.4f", fr.Centrality),
			strconv.Itoa(len(fr.Diagnostics)),
		})
	}
	parts = append(parts, formatTabular("files", []string{"path", "score", "centrality", "diagnostics"}, fileRows))

	var diagRows [][]string
	for i := range r.Files {
		for j := range r.Files[i].Diagnostics {
			d := &r.Files[i].Diagnostics[j]
			diagRows = append(diagRows, []string{
				d.File,
				strconv.Itoa(d.Line),
				strconv.Itoa(d.Column),
				string(d.Severity),
				d.Inspection,
				d.Message,
				d.Fix.String(),
			})
		}
	}
	parts = append(parts, formatTabular("diagnostics",
		[]string{"file", "line", "column", "severity", "inspection", "message", "fix"}, diagRows))

	return strings.Join(parts, "\n")
}

// EncodeRules renders the inspection catalogue as a TOON table.
func EncodeRules(rules []inspect.Rule) string {
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{r.ID, r.Lint, r.Code, string(r.Default), r.Title})
	}
	return formatTabular("rules", []string{"id", "lint", "code", "default", "title"}, rows)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
