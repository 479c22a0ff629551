package lang

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/rsinspect/internal/model"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".rs", "rust"},
		{".py", ""},
		{".go", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	rs, ok := Languages["rust"]
	if !ok {
		t.Fatal("rust language not registered")
	}
	if rs.GetLanguage() == nil {
		t.Error("rust language is nil")
	}
}

func parseRust(t *testing.T, src string) *sitter.Node {
	t.Helper()
	p := Languages["rust"].NewParser()
	defer p.Close()
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	t.Cleanup(tree.Close)
	return tree.RootNode()
}

// find returns the first node of type typ in document order.
func find(n *sitter.Node, typ string) *sitter.Node {
	if n.Type() == typ {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if got := find(n.NamedChild(i), typ); got != nil {
			return got
		}
	}
	return nil
}

func TestUnescape(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"r#type": "type",
		"name":   "name",
		"r#":     "",
		"rr#x":   "rr#x",
	}
	for in, want := range tests {
		if got := Unescape(in); got != want {
			t.Errorf("Unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSameNodeAndIsField(t *testing.T) {
	t.Parallel()

	root := parseRust(t, "fn demo(x: u8) {}\n")
	fn := find(root, "function_item")
	if fn == nil {
		t.Fatal("no function_item")
	}
	name := fn.ChildByFieldName("name")

	if !SameNode(name, fn.ChildByFieldName("name")) {
		t.Error("same node not recognized")
	}
	if SameNode(name, nil) || SameNode(nil, nil) {
		t.Error("nil must never match")
	}
	if !IsField(fn, name, "name") {
		t.Error("name should be the name field")
	}
	if IsField(fn, name, "parameters") {
		t.Error("name is not the parameters field")
	}
}

func TestOwnerOf(t *testing.T) {
	t.Parallel()

	src := `fn free() {}
impl S { fn in_impl(&self) {} }
trait T { fn in_trait(&self); }
extern "C" { fn foreign(); }
fn outer() { fn nested() {} }
`
	root := parseRust(t, src)

	want := map[string]model.Owner{
		"free":     model.Free,
		"in_impl":  model.InImpl,
		"in_trait": model.InTrait,
		"foreign":  model.Foreign,
		"nested":   model.Free,
	}
	got := map[string]model.Owner{}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "function_item", "function_signature_item":
			name := NodeText(n.ChildByFieldName("name"), []byte(src))
			got[name] = OwnerOf(n)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(root)

	for name, owner := range want {
		if got[name] != owner {
			t.Errorf("OwnerOf(%s) = %v, want %v", name, got[name], owner)
		}
	}
}

func TestLintAttrs(t *testing.T) {
	t.Parallel()

	src := `#![warn(nonstandard_style)]

#[allow(non_snake_case, dead_code)]
// keep
#[deny(non_camel_case_types)]
fn Target() {}
`
	root := parseRust(t, src)
	fn := find(root, "function_item")

	got := LintAttrs(fn, []byte(src))
	want := []model.LintAttr{
		{Lint: "non_camel_case_types", Level: model.Deny},
		{Lint: "dead_code", Level: model.Allow},
		{Lint: "non_snake_case", Level: model.Allow},
		{Lint: "nonstandard_style", Level: model.Warn},
	}
	if len(got) != len(want) {
		t.Fatalf("LintAttrs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attr %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHasOuterAttributeAndExtern(t *testing.T) {
	t.Parallel()

	src := `#[unsafe(no_mangle)]
pub extern "C" fn Exported() {}

#[inline]
fn plain() {}
`
	root := parseRust(t, src)

	var fns []*sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if c := root.NamedChild(i); c.Type() == "function_item" {
			fns = append(fns, c)
		}
	}
	if len(fns) != 2 {
		t.Fatalf("found %d functions, want 2", len(fns))
	}

	if !HasOuterAttribute(fns[0], []byte(src), "no_mangle") {
		t.Error("no_mangle not detected")
	}
	if !IsExternFn(fns[0]) {
		t.Error("extern fn not detected")
	}
	if HasOuterAttribute(fns[1], []byte(src), "no_mangle") {
		t.Error("plain fn has no no_mangle")
	}
	if IsExternFn(fns[1]) {
		t.Error("plain fn is not extern")
	}
}
