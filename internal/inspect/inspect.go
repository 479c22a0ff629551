package inspect

import (
	"sort"

	"github.com/phobologic/rsinspect/internal/arity"
	"github.com/phobologic/rsinspect/internal/model"
)

// Resolver finds the declaration a generic site refers to.
type Resolver interface {
	Resolve(site model.GenericSite) (arity.Declaration, bool)
}

// Sink receives each diagnostic together with its proposed fix. The
// inspections never apply fixes themselves.
type Sink interface {
	Propose(d model.Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d model.Diagnostic)

// Propose calls f(d).
func (f SinkFunc) Propose(d model.Diagnostic) { f(d) }

// Inspector runs the enabled inspections over parsed files.
type Inspector struct {
	Levels   Levels
	Disabled map[string]bool
}

// File inspects one parsed file and sends every reported diagnostic to sink.
// Names are reported before generic sites; both keep source order.
func (in *Inspector) File(fi *model.FileInfo, r Resolver, sink Sink) {
	for i := range fi.Identifiers {
		id := &fi.Identifiers[i]
		d, ok := CheckName(*id)
		if !ok || in.Disabled[d.Inspection] {
			continue
		}
		d, ok = in.Levels.Apply(d, id.Levels)
		if !ok {
			continue
		}
		d.File = fi.Path
		sink.Propose(d)
	}

	if in.Disabled[GenericsID] || r == nil {
		return
	}
	for i := range fi.Sites {
		site := &fi.Sites[i]
		decl, ok := r.Resolve(*site)
		if !ok {
			continue
		}
		d, ok := CheckGenerics(*site, decl)
		if !ok {
			continue
		}
		d.File = fi.Path
		sink.Propose(d)
	}
}

// Rule describes an inspection for listings.
type Rule struct {
	ID      string
	Title   string
	Lint    string
	Code    string
	Default model.Level
}

// Rules lists every inspection sorted by id.
func Rules() []Rule {
	rules := make([]Rule, 0, len(Naming)+1)
	for _, r := range Naming {
		rules = append(rules, Rule{
			ID:      r.ID,
			Title:   r.Title + " naming convention",
			Lint:    r.Lint(),
			Default: model.Warn,
		})
	}
	rules = append(rules, Rule{
		ID:      GenericsID,
		Title:   "Wrong number of generic arguments",
		Code:    GenericsCode,
		Default: model.Deny,
	})
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].ID < rules[j].ID
	})
	return rules
}

// Known reports whether id names an inspection.
func Known(id string) bool {
	if id == GenericsID {
		return true
	}
	for _, r := range Naming {
		if r.ID == id {
			return true
		}
	}
	return false
}
