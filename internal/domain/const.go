package domain

// Explicitness of a criterion: stated verbatim in the source text, or
// inferred by the extractor.
const (
	ExplicitnessExplicit = "explicit"
	ExplicitnessImplicit = "implicit"
)

// Edge types for the criteria dependency graph.
const (
	EdgeTypeRequires  = "requires"
	EdgeTypeConflicts = "conflicts"
	EdgeTypeEnhances  = "enhances"
)

// DefaultWeight is assigned when a criterion is created without one.
const DefaultWeight = 1.00

func ExplicitnessValid(s string) bool {
	return s == ExplicitnessExplicit || s == ExplicitnessImplicit
}

func EdgeTypeValid(s string) bool {
	switch s {
	case EdgeTypeRequires, EdgeTypeConflicts, EdgeTypeEnhances:
		return true
	default:
		return false
	}
}
