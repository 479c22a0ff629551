package parse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/rsinspect/internal/arity"
	"github.com/phobologic/rsinspect/internal/lang"
	"github.com/phobologic/rsinspect/internal/model"
)

// typeParents are node types whose type-valued children are type references.
var typeParents = map[string]bool{
	"field_declaration":              true,
	"parameter":                      true,
	"let_declaration":                true,
	"type_arguments":                 true,
	"reference_type":                 true,
	"pointer_type":                   true,
	"array_type":                     true,
	"tuple_type":                     true,
	"function_item":                  true,
	"function_signature_item":        true,
	"function_type":                  true,
	"parameters":                     true,
	"closure_expression":             true,
	"type_item":                      true,
	"optional_type_parameter":        true,
	"ordered_field_declaration_list": true,
	"where_predicate":                true,
	"const_item":                     true,
	"static_item":                    true,
	"type_cast_expression":           true,
	"const_parameter":                true,
	"bounded_type":                   true,
}

// traitParents are node types whose type-valued children name traits.
var traitParents = map[string]bool{
	"trait_bounds":              true,
	"dynamic_type":              true,
	"abstract_type":             true,
	"higher_ranked_trait_bound": true,
}

// constArgs are argument node types counted as const generic arguments.
var constArgs = map[string]bool{
	"block":              true,
	"integer_literal":    true,
	"float_literal":      true,
	"string_literal":     true,
	"raw_string_literal": true,
	"char_literal":       true,
	"boolean_literal":    true,
	"negative_literal":   true,
	"unary_expression":   true,
}

// skippedArgs are type_arguments children that are neither type nor const
// arguments.
var skippedArgs = map[string]bool{
	"lifetime":                   true,
	"type_binding":               true,
	"constrained_type_parameter": true,
	"line_comment":               true,
	"block_comment":              true,
}

// typeSite records a type or trait reference with its generic arguments.
func (w *walker) typeSite(n *sitter.Node) {
	parent := n.Parent()
	if parent == nil {
		return
	}
	kind, ok := referenceKind(parent, n)
	if !ok {
		return
	}

	nameNode := n
	var args *sitter.Node
	if n.Type() == "generic_type" {
		nameNode = n.ChildByFieldName("type")
		args = n.ChildByFieldName("type_arguments")
		if nameNode == nil {
			return
		}
	}
	if nameNode.Type() == "scoped_type_identifier" {
		nameNode = nameNode.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
	}

	name := lang.Unescape(w.text(nameNode))
	if name == "Self" {
		return
	}

	typeArgs, constArgCount := w.countArgs(args)
	w.info.Sites = append(w.info.Sites, model.GenericSite{
		Site: arity.Site{Kind: kind, TypeArgs: typeArgs, ConstArgs: constArgCount},
		Name: name,
		Pos:  position(nameNode),
	})
}

// referenceKind decides whether n, a child of parent, sits in type or trait
// position. Declared names and path qualifiers are not references.
func referenceKind(parent, n *sitter.Node) (arity.SiteKind, bool) {
	pt := parent.Type()
	switch {
	case pt == "impl_item":
		if lang.IsField(parent, n, "trait") {
			return arity.TraitReference, true
		}
		if lang.IsField(parent, n, "type") {
			return arity.TypeReference, true
		}
	case pt == "qualified_type":
		if lang.IsField(parent, n, "alias") {
			return arity.TraitReference, true
		}
		return arity.TypeReference, true
	case traitParents[pt]:
		return arity.TraitReference, true
	case typeParents[pt]:
		if lang.IsField(parent, n, "name") {
			return 0, false
		}
		// Fn(A) -> B sugar takes no angle-bracketed arguments.
		if pt == "function_type" && lang.IsField(parent, n, "trait") {
			return 0, false
		}
		return arity.TypeReference, true
	}
	return 0, false
}

func (w *walker) countArgs(args *sitter.Node) (typeArgs, constArgCount int) {
	if args == nil {
		return 0, 0
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		t := args.NamedChild(i).Type()
		switch {
		case skippedArgs[t]:
		case constArgs[t]:
			constArgCount++
		default:
			typeArgs++
		}
	}
	return typeArgs, constArgCount
}

// callSite records a function or method call with its turbofish arguments.
func (w *walker) callSite(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	var args *sitter.Node
	if fn.Type() == "generic_function" {
		args = fn.ChildByFieldName("type_arguments")
		fn = fn.ChildByFieldName("function")
		if fn == nil {
			return
		}
	}

	var (
		kind      arity.SiteKind
		nameNode  *sitter.Node
		qualified bool
	)
	switch fn.Type() {
	case "identifier":
		kind, nameNode = arity.CallExpression, fn
	case "scoped_identifier":
		kind, nameNode, qualified = arity.CallExpression, fn.ChildByFieldName("name"), true
	case "field_expression":
		kind, nameNode = arity.MethodCallExpression, fn.ChildByFieldName("field")
	default:
		return
	}
	if nameNode == nil {
		return
	}

	typeArgs, constArgCount := w.countArgs(args)
	w.info.Sites = append(w.info.Sites, model.GenericSite{
		Site:      arity.Site{Kind: kind, TypeArgs: typeArgs, ConstArgs: constArgCount},
		Name:      lang.Unescape(w.text(nameNode)),
		Qualified: qualified,
		Pos:       position(nameNode),
	})
}
