// Package arity checks the number of generic arguments supplied at a reference
// site against the parameter lists of the resolved declaration (rustc E0107).
package arity

import (
	"fmt"
	"strconv"
)

// SiteKind is the syntactic position of a generic reference.
type SiteKind int

const (
	TypeReference SiteKind = iota
	TraitReference
	CallExpression
	MethodCallExpression
)

func (k SiteKind) String() string {
	switch k {
	case TypeReference:
		return "type"
	case TraitReference:
		return "trait"
	case CallExpression:
		return "call"
	case MethodCallExpression:
		return "method-call"
	}
	return "unknown"
}

// Site is a reference occurrence with the generic arguments it supplies.
type Site struct {
	Kind      SiteKind
	TypeArgs  int
	ConstArgs int
}

// TypeParam is a declared type parameter.
type TypeParam struct {
	Name       string
	HasDefault bool
}

// Declaration is the parameter shape of a resolved generic item.
// Const parameters never carry defaults.
type Declaration struct {
	TypeParams  []TypeParam
	ConstParams int
}

// Total is the number of type and const parameters.
func (d Declaration) Total() int {
	return len(d.TypeParams) + d.ConstParams
}

// Required is the number of parameters without a default.
func (d Declaration) Required() int {
	n := d.ConstParams
	for _, p := range d.TypeParams {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// Bound qualifies an expected argument count.
type Bound int

const (
	Exact Bound = iota
	AtLeast
	AtMost
)

// Range is the expected argument count reported in a mismatch.
type Range struct {
	Bound Bound
	N     int
}

func (r Range) String() string {
	switch r.Bound {
	case AtLeast:
		return "at least " + strconv.Itoa(r.N)
	case AtMost:
		return "at most " + strconv.Itoa(r.N)
	}
	return strconv.Itoa(r.N)
}

// FixKind identifies the structural remediation for a mismatch.
type FixKind int

const (
	NoFix FixKind = iota
	RemoveTypeArguments
	AddTypeArguments
)

func (k FixKind) String() string {
	switch k {
	case RemoveTypeArguments:
		return "remove-type-arguments"
	case AddTypeArguments:
		return "add-type-arguments"
	}
	return "none"
}

// Fix describes a remediation. Keep is the number of type arguments to retain
// for RemoveTypeArguments; Missing is the number of placeholders to insert for
// AddTypeArguments.
type Fix struct {
	Kind    FixKind
	Keep    int
	Missing int
}

// Verdict is the outcome of Verify. When OK is false the remaining fields
// describe the mismatch.
type Verdict struct {
	OK       bool
	Expected Range
	Actual   int
	Label    string
	Fix      Fix
}

// Message renders the mismatch the way rustc phrases E0107.
func (v Verdict) Message() string {
	if v.OK {
		return ""
	}
	return fmt.Sprintf("Wrong number of %s arguments: expected %s, found %d", v.Label, v.Expected, v.Actual)
}

// Verify checks the arguments supplied at site against decl.
//
// Only the combined count of type and const arguments is compared. Call sites
// that supply no arguments at all are accepted: the arguments are inferred.
func Verify(site Site, decl Declaration) Verdict {
	actual := site.TypeArgs + site.ConstArgs
	total := decl.Total()
	if actual == total {
		return Verdict{OK: true}
	}
	required := decl.Required()

	var (
		expected Range
		mismatch bool
	)
	switch site.Kind {
	case TypeReference, TraitReference:
		expected, mismatch = checkTypePosition(actual, required, total)
	case CallExpression, MethodCallExpression:
		expected, mismatch = checkCallPosition(actual, required, total)
	}
	if !mismatch {
		return Verdict{OK: true}
	}

	return Verdict{
		Expected: expected,
		Actual:   actual,
		Label:    label(site, decl),
		Fix:      Remedy(site, decl),
	}
}

func checkTypePosition(actual, required, total int) (Range, bool) {
	switch {
	case actual > total:
		return tooMany(required, total), true
	case actual < required:
		return tooFew(required, total), true
	}
	return Range{}, false
}

func checkCallPosition(actual, required, total int) (Range, bool) {
	switch {
	case actual > total:
		return tooMany(required, total), true
	case actual >= 1 && actual < total:
		return tooFew(required, total), true
	}
	return Range{}, false
}

func tooMany(required, total int) Range {
	if required != total {
		return Range{Bound: AtMost, N: total}
	}
	return Range{Bound: Exact, N: total}
}

func tooFew(required, total int) Range {
	if required != total {
		return Range{Bound: AtLeast, N: required}
	}
	return Range{Bound: Exact, N: total}
}

func label(site Site, decl Declaration) string {
	haveType := len(decl.TypeParams) > 0 || site.TypeArgs > 0
	haveConst := decl.ConstParams > 0 || site.ConstArgs > 0
	switch {
	case haveType && !haveConst:
		return "type"
	case !haveType && haveConst:
		return "const"
	}
	return "generic"
}

// Remedy returns the structural fix for the arguments at site. Only type
// arguments are removed or inserted; const slots never get a fix.
func Remedy(site Site, decl Declaration) Fix {
	actual := site.TypeArgs + site.ConstArgs
	total := decl.Total()
	switch {
	case actual > total:
		if site.TypeArgs > len(decl.TypeParams) {
			return Fix{Kind: RemoveTypeArguments, Keep: len(decl.TypeParams)}
		}
	case actual < total:
		if site.TypeArgs < len(decl.TypeParams) {
			return Fix{Kind: AddTypeArguments, Missing: len(decl.TypeParams) - site.TypeArgs}
		}
	}
	return Fix{}
}
