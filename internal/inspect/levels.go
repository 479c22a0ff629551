package inspect

import (
	"github.com/phobologic/rsinspect/internal/model"
)

// Levels resolves the effective level of a lint from source attributes and
// configured defaults.
type Levels struct {
	// Defaults maps a lint or group to its configured level. Missing lints
	// warn.
	Defaults map[string]model.Level
}

// Resolve returns the level of lint given the attributes enclosing the
// diagnostic, innermost first. The innermost attribute naming the lint, or a
// group containing it, wins.
func (l Levels) Resolve(lint string, attrs []model.LintAttr) model.Level {
	for _, a := range attrs {
		if covers(a.Lint, lint) {
			return a.Level
		}
	}
	for _, name := range []string{lint, groupNonstandardStyle, groupWarnings} {
		if lvl, ok := l.Defaults[name]; ok && covers(name, lint) {
			return lvl
		}
	}
	return model.Warn
}

func covers(name, lint string) bool {
	switch name {
	case lint, groupWarnings:
		return true
	case groupNonstandardStyle:
		return lint == LintNonCamelCaseTypes || lint == LintNonSnakeCase || lint == LintNonUpperCaseGlobals
	}
	return false
}

// Apply sets the severity of a naming diagnostic from its lint level. It
// returns false when the lint is allowed.
func (l Levels) Apply(d model.Diagnostic, attrs []model.LintAttr) (model.Diagnostic, bool) {
	if d.Lint == "" {
		return d, true
	}
	switch l.Resolve(d.Lint, attrs) {
	case model.Allow:
		return d, false
	case model.Deny, model.Forbid:
		d.Severity = model.SeverityError
	default:
		d.Severity = model.SeverityWarning
	}
	return d, true
}

// ParseLevel converts a configured level name.
func ParseLevel(s string) (model.Level, bool) {
	switch lvl := model.Level(s); lvl {
	case model.Allow, model.Warn, model.Deny, model.Forbid:
		return lvl, true
	}
	return "", false
}
