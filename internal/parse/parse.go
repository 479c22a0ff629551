// Package parse walks Rust syntax trees and extracts declared identifiers,
// generic reference sites and generic declarations.
package parse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/rsinspect/internal/arity"
	"github.com/phobologic/rsinspect/internal/lang"
	"github.com/phobologic/rsinspect/internal/model"
)

// File parses a source file and returns what the inspections consume.
// The parser must be created for the Rust grammar.
// filePath is used only for bookkeeping and should be the repo-relative path.
func File(ctx context.Context, parser *sitter.Parser, source []byte, filePath string) (model.FileInfo, error) {
	fi := model.FileInfo{Path: filePath, Language: "rust"}
	if len(source) == 0 {
		return fi, nil
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return fi, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	w := &walker{source: source, info: &fi}
	w.walk(tree.RootNode())
	return fi, nil
}

type walker struct {
	source []byte
	info   *model.FileInfo
}

func (w *walker) text(n *sitter.Node) string {
	return lang.NodeText(n, w.source)
}

func position(n *sitter.Node) model.Position {
	p := n.StartPoint()
	return model.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (w *walker) walk(n *sitter.Node) {
	w.visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

func (w *walker) visit(n *sitter.Node) {
	switch n.Type() {
	case "struct_item", "union_item":
		w.item(n, model.Struct, model.TypeNamespace)
	case "enum_item":
		w.item(n, model.Enum, model.TypeNamespace)
	case "trait_item":
		w.item(n, model.Trait, model.TypeNamespace)
	case "enum_variant":
		w.name(n, "name", model.EnumVariant, model.Free)
	case "field_declaration":
		w.name(n, "name", model.Field, model.Free)
	case "mod_item":
		w.name(n, "name", model.Module, model.Free)
	case "macro_definition":
		w.name(n, "name", model.Macro, model.Free)
	case "const_item":
		w.name(n, "name", model.Constant, lang.OwnerOf(n))
	case "static_item":
		if owner := lang.OwnerOf(n); owner == model.Free {
			w.name(n, "name", model.Static, owner)
		}
	case "associated_type":
		w.name(n, "name", model.AssociatedType, model.InTrait)
	case "type_item":
		w.typeAlias(n)
	case "function_item", "function_signature_item":
		w.function(n)
	case "type_parameters":
		w.typeParameters(n)
	case "parameter":
		if pat := n.ChildByFieldName("pattern"); pat != nil && pat.Type() == "identifier" {
			w.addIdent(pat, w.text(pat), model.Argument, model.Free, n)
		}
	case "closure_parameters":
		w.closureParams(n)
	case "let_declaration":
		if pat := n.ChildByFieldName("pattern"); pat != nil {
			w.bindings(pat, n)
		}
	case "generic_type", "type_identifier", "scoped_type_identifier":
		w.typeSite(n)
	case "call_expression":
		w.callSite(n)
	}
}

// item records the name and the generic shape of a type-namespace item.
func (w *walker) item(n *sitter.Node, kind model.DeclKind, ns model.Namespace) {
	w.name(n, "name", kind, lang.OwnerOf(n))
	w.decl(n, ns)
}

func (w *walker) name(n *sitter.Node, field string, kind model.DeclKind, owner model.Owner) {
	nameNode := n.ChildByFieldName(field)
	if nameNode == nil {
		return
	}
	w.addIdent(nameNode, w.text(nameNode), kind, owner, n)
}

// addIdent records an identifier. Lint attributes are looked up from the
// declaring node so that attributes on the item apply.
func (w *walker) addIdent(nameNode *sitter.Node, name string, kind model.DeclKind, owner model.Owner, declNode *sitter.Node) {
	w.info.Identifiers = append(w.info.Identifiers, model.Identifier{
		Name:   lang.Unescape(name),
		Kind:   kind,
		Owner:  owner,
		Pos:    position(nameNode),
		Levels: lang.LintAttrs(declNode, w.source),
	})
}

func (w *walker) typeAlias(n *sitter.Node) {
	switch owner := lang.OwnerOf(n); owner {
	case model.Free:
		w.item(n, model.TypeAlias, model.TypeNamespace)
	case model.InTrait:
		w.name(n, "name", model.AssociatedType, owner)
	}
}

func (w *walker) function(n *sitter.Node) {
	owner := lang.OwnerOf(n)
	var (
		kind model.DeclKind
		ns   model.Namespace
	)
	switch owner {
	case model.Free:
		kind, ns = model.Function, model.ValueNamespace
	case model.InImpl, model.InTrait:
		kind, ns = model.Method, model.MethodNamespace
	default:
		return
	}

	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.addIdent(nameNode, w.text(nameNode), kind, owner, n)
	if kind == model.Function && lang.IsExternFn(n) && lang.HasOuterAttribute(n, w.source, "no_mangle") {
		w.info.Identifiers[len(w.info.Identifiers)-1].Exempt = true
	}
	w.decl(n, ns)
}

// decl indexes an item with its generic parameter shape.
func (w *walker) decl(n *sitter.Node, ns model.Namespace) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	w.info.Decls = append(w.info.Decls, model.GenericDecl{
		Name:      lang.Unescape(w.text(nameNode)),
		Namespace: ns,
		File:      w.info.Path,
		Pos:       position(nameNode),
		Shape:     w.shape(n.ChildByFieldName("type_parameters")),
	})
}

func (w *walker) shape(params *sitter.Node) arity.Declaration {
	var d arity.Declaration
	if params == nil {
		return d
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case "type_identifier":
			d.TypeParams = append(d.TypeParams, arity.TypeParam{Name: w.text(p)})
		case "constrained_type_parameter":
			left := p.ChildByFieldName("left")
			if left != nil && left.Type() == "type_identifier" {
				d.TypeParams = append(d.TypeParams, arity.TypeParam{Name: w.text(left)})
			}
		case "optional_type_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				d.TypeParams = append(d.TypeParams, arity.TypeParam{Name: w.text(name), HasDefault: true})
			}
		case "type_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				d.TypeParams = append(d.TypeParams, arity.TypeParam{
					Name:       w.text(name),
					HasDefault: p.ChildByFieldName("default_type") != nil,
				})
			}
		case "const_parameter":
			d.ConstParams++
		}
	}
	return d
}

func (w *walker) typeParameters(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "type_identifier":
			w.addIdent(p, w.text(p), model.TypeParameter, model.Free, p)
		case "constrained_type_parameter":
			left := p.ChildByFieldName("left")
			if left == nil {
				continue
			}
			if left.Type() == "lifetime" {
				w.addIdent(left, w.text(left), model.Lifetime, model.Free, p)
			} else {
				w.addIdent(left, w.text(left), model.TypeParameter, model.Free, p)
			}
		case "optional_type_parameter", "type_parameter":
			if name := p.ChildByFieldName("name"); name != nil {
				w.addIdent(name, w.text(name), model.TypeParameter, model.Free, p)
			}
		case "lifetime":
			w.addIdent(p, w.text(p), model.Lifetime, model.Free, p)
		case "lifetime_parameter":
			name := p.ChildByFieldName("name")
			if name == nil && p.NamedChildCount() > 0 {
				name = p.NamedChild(0)
			}
			if name != nil {
				w.addIdent(name, w.text(name), model.Lifetime, model.Free, p)
			}
		}
	}
}

// bindings records every variable bound by a let pattern.
// closureParams records untyped closure parameters, which sit directly under
// closure_parameters. Typed ones are parameter nodes and handled there.
func (w *walker) closureParams(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		pat := n.NamedChild(i)
		if pat.Type() == "mut_pattern" {
			for j := 0; j < int(pat.NamedChildCount()); j++ {
				if c := pat.NamedChild(j); c.Type() == "identifier" {
					pat = c
					break
				}
			}
		}
		if pat.Type() == "identifier" {
			w.addIdent(pat, w.text(pat), model.Argument, model.Free, n)
		}
	}
}

func (w *walker) bindings(pat *sitter.Node, let *sitter.Node) {
	switch pat.Type() {
	case "identifier":
		w.addIdent(pat, w.text(pat), model.Variable, model.Free, let)
	case "shorthand_field_identifier":
		w.addIdent(pat, w.text(pat), model.Variable, model.Free, let)
	case "field_pattern":
		if sub := pat.ChildByFieldName("pattern"); sub != nil {
			w.bindings(sub, let)
			return
		}
		if name := pat.ChildByFieldName("name"); name != nil {
			w.bindings(name, let)
		}
	case "tuple_struct_pattern", "struct_pattern":
		typ := pat.ChildByFieldName("type")
		for i := 0; i < int(pat.NamedChildCount()); i++ {
			child := pat.NamedChild(i)
			if lang.SameNode(child, typ) {
				continue
			}
			w.bindings(child, let)
		}
	case "tuple_pattern", "slice_pattern", "or_pattern", "mut_pattern", "ref_pattern",
		"reference_pattern", "captured_pattern":
		for i := 0; i < int(pat.NamedChildCount()); i++ {
			w.bindings(pat.NamedChild(i), let)
		}
	}
}
