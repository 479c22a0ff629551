package lang

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/phobologic/rsinspect/internal/model"
)

func init() {
	Languages["rust"] = &Language{
		Name:       "rust",
		Extensions: []string{".rs"},
		lang:       rust.GetLanguage(),
	}
}

var lintAttrRe = regexp.MustCompile(`(?s)^#\s*!?\s*\[\s*(allow|warn|deny|forbid)\s*\((.*)\)\s*\]$`)

// OwnerOf classifies where an item node is declared. Items nested in function
// bodies are free.
func OwnerOf(item *sitter.Node) model.Owner {
	for p := item.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "source_file", "block":
			return model.Free
		case "declaration_list":
			gp := p.Parent()
			if gp == nil {
				return model.Free
			}
			switch gp.Type() {
			case "impl_item":
				return model.InImpl
			case "trait_item":
				return model.InTrait
			case "foreign_mod_item":
				return model.Foreign
			}
			return model.Free
		}
	}
	return model.Free
}

// LintAttrs collects allow/warn/deny/forbid attributes that apply to node,
// innermost first: outer attributes of the node and each ancestor, then inner
// attributes of enclosing modules, blocks and the file.
func LintAttrs(node *sitter.Node, source []byte) []model.LintAttr {
	var attrs []model.LintAttr
	for n := node; n != nil; n = n.Parent() {
		for _, a := range outerAttributes(n) {
			attrs = append(attrs, parseLintAttr(NodeText(a, source))...)
		}
		switch n.Type() {
		case "source_file", "declaration_list", "block":
			inner := innerAttributes(n)
			for i := len(inner) - 1; i >= 0; i-- {
				attrs = append(attrs, parseLintAttr(NodeText(inner[i], source))...)
			}
		}
	}
	return attrs
}

// outerAttributes returns the attribute items directly preceding n, nearest
// first. Comments between attributes are skipped.
func outerAttributes(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for s := n.PrevSibling(); s != nil; s = s.PrevSibling() {
		switch s.Type() {
		case "attribute_item":
			out = append(out, s)
		case "line_comment", "block_comment":
		default:
			return out
		}
	}
	return out
}

func innerAttributes(n *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "inner_attribute_item" {
			out = append(out, child)
		}
	}
	return out
}

func parseLintAttr(text string) []model.LintAttr {
	m := lintAttrRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	level := model.Level(m[1])
	names := strings.Split(m[2], ",")
	attrs := make([]model.LintAttr, 0, len(names))
	// Later lints in one attribute take precedence, like later attributes do.
	for i := len(names) - 1; i >= 0; i-- {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		attrs = append(attrs, model.LintAttr{Lint: name, Level: level})
	}
	return attrs
}

// HasOuterAttribute reports whether an attribute preceding item mentions name
// as its path (#[name], #[name(...)], #[unsafe(name)]).
func HasOuterAttribute(item *sitter.Node, source []byte, name string) bool {
	re := regexp.MustCompile(`^#\s*\[\s*(unsafe\s*\(\s*)?` + regexp.QuoteMeta(name) + `\b`)
	for _, a := range outerAttributes(item) {
		if re.MatchString(NodeText(a, source)) {
			return true
		}
	}
	return false
}

// IsExternFn reports whether a function item declares an ABI (extern "C" fn).
func IsExternFn(fn *sitter.Node) bool {
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		if child.Type() != "function_modifiers" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			if child.Child(j).Type() == "extern_modifier" {
				return true
			}
		}
	}
	return false
}
