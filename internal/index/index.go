// Package index builds the cross-file declaration table that generic sites
// resolve against, and the file dependency edges it implies.
package index

import (
	"slices"
	"sort"

	"github.com/phobologic/rsinspect/internal/arity"
	"github.com/phobologic/rsinspect/internal/model"
)

type key struct {
	ns   model.Namespace
	name string
}

type entry struct {
	shape     arity.Declaration
	files     []string
	ambiguous bool
}

// Index maps (namespace, simple name) to a generic declaration. It is
// read-only after Build and safe for concurrent use.
type Index struct {
	entries map[key]*entry
}

// Build indexes every declaration in fileInfos. A name declared more than
// once with differing shapes is ambiguous and never resolves.
func Build(fileInfos []model.FileInfo) *Index {
	idx := &Index{entries: make(map[key]*entry)}
	for i := range fileInfos {
		fi := &fileInfos[i]
		for j := range fi.Decls {
			d := &fi.Decls[j]
			k := key{d.Namespace, d.Name}
			e, ok := idx.entries[k]
			if !ok {
				idx.entries[k] = &entry{shape: d.Shape, files: []string{fi.Path}}
				continue
			}
			if !sameShape(e.shape, d.Shape) {
				e.ambiguous = true
			}
			if !slices.Contains(e.files, fi.Path) {
				e.files = append(e.files, fi.Path)
			}
		}
	}
	for _, e := range idx.entries {
		sort.Strings(e.files)
	}
	return idx
}

// sameShape compares parameter counts and default positions. Parameter
// names do not matter for arity.
func sameShape(a, b arity.Declaration) bool {
	if a.ConstParams != b.ConstParams || len(a.TypeParams) != len(b.TypeParams) {
		return false
	}
	for i := range a.TypeParams {
		if a.TypeParams[i].HasDefault != b.TypeParams[i].HasDefault {
			return false
		}
	}
	return true
}

// Len returns the number of indexed names.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Resolve finds the declaration a site refers to.
func (idx *Index) Resolve(site model.GenericSite) (arity.Declaration, bool) {
	e := idx.lookup(site)
	if e == nil {
		return arity.Declaration{}, false
	}
	return e.shape, true
}

func (idx *Index) lookup(site model.GenericSite) *entry {
	for _, ns := range namespaces(site) {
		e, ok := idx.entries[key{ns, site.Name}]
		if !ok {
			continue
		}
		if e.ambiguous {
			return nil
		}
		return e
	}
	return nil
}

// namespaces lists where a site's name is looked up, in order.
func namespaces(site model.GenericSite) []model.Namespace {
	switch site.Site.Kind {
	case arity.TypeReference, arity.TraitReference:
		return []model.Namespace{model.TypeNamespace}
	case arity.CallExpression:
		if site.Qualified {
			// Type::assoc_fn resolves to an impl method.
			return []model.Namespace{model.ValueNamespace, model.MethodNamespace}
		}
		return []model.Namespace{model.ValueNamespace}
	case arity.MethodCallExpression:
		return []model.Namespace{model.MethodNamespace}
	}
	return nil
}

// Dependencies creates file edges from resolved generic sites to the files
// declaring them. Self-edges are dropped.
func (idx *Index) Dependencies(fileInfos []model.FileInfo) []model.Dependency {
	type edgeKey struct{ src, tgt string }
	edgeSymbols := make(map[edgeKey][]string)

	for i := range fileInfos {
		fi := &fileInfos[i]
		for j := range fi.Sites {
			site := &fi.Sites[j]
			e := idx.lookup(*site)
			if e == nil {
				continue
			}
			for _, defFile := range e.files {
				if defFile == fi.Path {
					continue
				}
				k := edgeKey{fi.Path, defFile}
				if !slices.Contains(edgeSymbols[k], site.Name) {
					edgeSymbols[k] = append(edgeSymbols[k], site.Name)
				}
			}
		}
	}

	deps := make([]model.Dependency, 0, len(edgeSymbols))
	for k, syms := range edgeSymbols {
		deps = append(deps, model.Dependency{Source: k.src, Target: k.tgt, Symbols: syms})
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})
	return deps
}
