// Package model defines core data structures for rsinspect.
package model

import (
	"strconv"

	"github.com/phobologic/rsinspect/internal/arity"
)

// DeclKind is the declaration an identifier names. It selects the naming
// convention the identifier is checked against.
type DeclKind string

const (
	Argument       DeclKind = "argument"
	Constant       DeclKind = "constant"
	Static         DeclKind = "static"
	Enum           DeclKind = "enum"
	EnumVariant    DeclKind = "enum-variant"
	Function       DeclKind = "function"
	Method         DeclKind = "method"
	Lifetime       DeclKind = "lifetime"
	Macro          DeclKind = "macro"
	Module         DeclKind = "module"
	Struct         DeclKind = "struct"
	Field          DeclKind = "field"
	Trait          DeclKind = "trait"
	TypeAlias      DeclKind = "type-alias"
	AssociatedType DeclKind = "associated-type"
	TypeParameter  DeclKind = "type-parameter"
	Variable       DeclKind = "variable"
)

// Owner is where an item is declared.
type Owner string

const (
	Free    Owner = "free"
	InTrait Owner = "trait"
	InImpl  Owner = "impl"
	Foreign Owner = "foreign"
)

// Level is a lint level as written in #[allow(...)] style attributes.
type Level string

const (
	Allow  Level = "allow"
	Warn   Level = "warn"
	Deny   Level = "deny"
	Forbid Level = "forbid"
)

// Severity is the reported seriousness of a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rank orders severities for --fail-on comparisons.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	}
	return 0
}

// Position locates a node in a file. Line and Column are 1-based.
type Position struct {
	Line   int
	Column int
}

// Identifier is a declared name found by the syntax walker.
type Identifier struct {
	Name  string
	Kind  DeclKind
	Owner Owner
	Pos   Position
	// Levels holds lint levels from enclosing attributes, innermost first.
	Levels []LintAttr
	// Exempt marks names the naming checks must skip (extern #[no_mangle]).
	Exempt bool
}

// LintAttr is one lint named in an allow/warn/deny/forbid attribute.
type LintAttr struct {
	Lint  string
	Level Level
}

// Namespace separates names that resolve independently.
type Namespace string

const (
	TypeNamespace   Namespace = "type"
	ValueNamespace  Namespace = "value"
	MethodNamespace Namespace = "method"
)

// GenericSite is a reference that may carry generic arguments.
type GenericSite struct {
	Site arity.Site
	// Name is the last path segment of the referenced item.
	Name string
	// Qualified is set for calls through a path (a::f, T::new).
	Qualified bool
	Pos       Position
}

// GenericDecl is a declaration with generic parameters, indexed for
// resolution.
type GenericDecl struct {
	Name      string
	Namespace Namespace
	File      string
	Pos       Position
	Shape     arity.Declaration
}

// FileInfo holds what the syntax walker extracted from a single source file.
type FileInfo struct {
	Path        string
	Language    string
	Identifiers []Identifier
	Sites       []GenericSite
	Decls       []GenericDecl
}

// FixKind identifies a proposed remediation.
type FixKind string

const (
	NoFix               FixKind = ""
	RenameFix           FixKind = "rename"
	RemoveTypeArguments FixKind = "remove-type-arguments"
	AddTypeArguments    FixKind = "add-type-arguments"
)

// Fix describes a remediation without applying it.
type Fix struct {
	Kind        FixKind `json:"kind" yaml:"kind"`
	Replacement string  `json:"replacement,omitempty" yaml:"replacement,omitempty"`
	Keep        int     `json:"keep,omitempty" yaml:"keep,omitempty"`
	Missing     int     `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// String renders the fix for tabular output.
func (f Fix) String() string {
	switch f.Kind {
	case RenameFix:
		return "rename to " + f.Replacement
	case RemoveTypeArguments:
		return "remove type arguments after " + strconv.Itoa(f.Keep)
	case AddTypeArguments:
		if f.Missing == 1 {
			return "add 1 type argument"
		}
		return "add " + strconv.Itoa(f.Missing) + " type arguments"
	}
	return ""
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Inspection string   `json:"inspection" yaml:"inspection"`
	Lint       string   `json:"lint,omitempty" yaml:"lint,omitempty"`
	Code       string   `json:"code,omitempty" yaml:"code,omitempty"`
	Severity   Severity `json:"severity" yaml:"severity"`
	File       string   `json:"file" yaml:"file"`
	Line       int      `json:"line" yaml:"line"`
	Column     int      `json:"column" yaml:"column"`
	Message    string   `json:"message" yaml:"message"`
	Fix        Fix      `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// FileReport groups the diagnostics of one file.
type FileReport struct {
	Path  string `json:"path" yaml:"path"`
	Score int    `json:"score" yaml:"score"`
	// Centrality is the PageRank of the file in the declaration graph.
	Centrality  float64      `json:"centrality" yaml:"centrality"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Dependency is a file-level edge: Source uses generic items declared in
// Target.
type Dependency struct {
	Source  string
	Target  string
	Symbols []string
}

// Report is the complete analysis result, ready for serialization.
type Report struct {
	RepoName string       `json:"repo" yaml:"repo"`
	Root     string       `json:"root" yaml:"root"`
	Analyzed int          `json:"analyzed" yaml:"analyzed"`
	Files    []FileReport `json:"files" yaml:"files"`
}

// Diagnostics flattens the report in file order.
func (r *Report) Diagnostics() []Diagnostic {
	var out []Diagnostic
	for i := range r.Files {
		out = append(out, r.Files[i].Diagnostics...)
	}
	return out
}
