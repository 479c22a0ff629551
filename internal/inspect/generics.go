package inspect

import (
	"github.com/phobologic/rsinspect/internal/arity"
	"github.com/phobologic/rsinspect/internal/model"
)

const (
	// GenericsID names the generic argument count inspection.
	GenericsID = "wrong-generic-arguments-number"
	// GenericsCode is the rustc error code for the same check.
	GenericsCode = "E0107"
)

// CheckGenerics verifies the generic arguments at site against the resolved
// declaration. Callers skip sites whose declaration did not resolve.
func CheckGenerics(site model.GenericSite, decl arity.Declaration) (model.Diagnostic, bool) {
	v := arity.Verify(site.Site, decl)
	if v.OK {
		return model.Diagnostic{}, false
	}
	return model.Diagnostic{
		Inspection: GenericsID,
		Code:       GenericsCode,
		Severity:   model.SeverityError,
		Line:       site.Pos.Line,
		Column:     site.Pos.Column,
		Message:    v.Message(),
		Fix:        convertFix(v.Fix),
	}, true
}

func convertFix(f arity.Fix) model.Fix {
	switch f.Kind {
	case arity.RemoveTypeArguments:
		return model.Fix{Kind: model.RemoveTypeArguments, Keep: f.Keep}
	case arity.AddTypeArguments:
		return model.Fix{Kind: model.AddTypeArguments, Missing: f.Missing}
	}
	return model.Fix{}
}
