// Package inspect turns identifiers and generic sites into diagnostics using
// the casing and arity engines.
package inspect

import (
	"fmt"

	"github.com/phobologic/rsinspect/internal/casing"
	"github.com/phobologic/rsinspect/internal/model"
)

// Lint ids, as accepted by #[allow(...)].
const (
	LintNonCamelCaseTypes   = "non_camel_case_types"
	LintNonSnakeCase        = "non_snake_case"
	LintNonUpperCaseGlobals = "non_upper_case_globals"

	groupNonstandardStyle = "nonstandard_style"
	groupWarnings         = "warnings"
)

// NamingRule is the naming convention applied to one declaration kind.
type NamingRule struct {
	ID    string
	Style casing.Style
	// Label starts the diagnostic message; Title names the inspection.
	Label string
	Title string
}

// Lint returns the lint controlling the rule.
func (r NamingRule) Lint() string {
	return styleLint(r.Style)
}

func styleLint(s casing.Style) string {
	switch s {
	case casing.CamelCase:
		return LintNonCamelCaseTypes
	case casing.UpperSnakeCase:
		return LintNonUpperCaseGlobals
	}
	return LintNonSnakeCase
}

// Naming maps each declaration kind to its naming rule.
var Naming = map[model.DeclKind]NamingRule{
	model.Argument:       {"argument-naming", casing.SnakeCase, "Argument", "Argument"},
	model.Constant:       {"const-naming", casing.UpperSnakeCase, "Constant", "Constant"},
	model.Static:         {"static-const-naming", casing.UpperSnakeCase, "Static constant", "Static constant"},
	model.Enum:           {"enum-naming", casing.CamelCase, "Type", "Enum"},
	model.EnumVariant:    {"enum-variant-naming", casing.CamelCase, "Enum variant", "Enum variant"},
	model.Function:       {"function-naming", casing.SnakeCase, "Function", "Function"},
	model.Method:         {"method-naming", casing.SnakeCase, "Method", "Method"},
	model.Lifetime:       {"lifetime-naming", casing.SnakeCase, "Lifetime", "Lifetime"},
	model.Macro:          {"macro-naming", casing.SnakeCase, "Macro", "Macro"},
	model.Module:         {"module-naming", casing.SnakeCase, "Module", "Module"},
	model.Struct:         {"struct-naming", casing.CamelCase, "Type", "Struct"},
	model.Field:          {"field-naming", casing.SnakeCase, "Field", "Field"},
	model.Trait:          {"trait-naming", casing.CamelCase, "Trait", "Trait"},
	model.TypeAlias:      {"type-alias-naming", casing.CamelCase, "Type", "Type alias"},
	model.AssociatedType: {"assoc-type-naming", casing.CamelCase, "Type", "Associated type"},
	model.TypeParameter:  {"type-parameter-naming", casing.CamelCase, "Type parameter", "Type parameter"},
	model.Variable:       {"variable-naming", casing.SnakeCase, "Variable", "Variable"},
}

// CheckName inspects a declared identifier. It returns false when the name
// conforms, when no rule covers the kind, or when the identifier is exempt.
// The returned diagnostic has warning severity; levels are applied by Levels.
func CheckName(id model.Identifier) (model.Diagnostic, bool) {
	rule, ok := Naming[id.Kind]
	if !ok || id.Exempt {
		return model.Diagnostic{}, false
	}
	suggestion, bad := casing.Classify(id.Name, rule.Style)
	if !bad {
		return model.Diagnostic{}, false
	}
	return model.Diagnostic{
		Inspection: rule.ID,
		Lint:       rule.Lint(),
		Severity:   model.SeverityWarning,
		Line:       id.Pos.Line,
		Column:     id.Pos.Column,
		Message: fmt.Sprintf("%s '%s' should have %s case name such as '%s'",
			rule.Label, id.Name, rule.Style.Phrase(), suggestion),
		Fix: model.Fix{Kind: model.RenameFix, Replacement: suggestion},
	}, true
}
