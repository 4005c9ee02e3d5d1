// Package guard enforces the responsibility separation between hierarchy
// levels: which category of scene mutation each level may perform. The
// narrowed scene interfaces make most breaches inexpressible at compile
// time; guard covers declared behavior before execution and produced
// structure after it. Enforcement is observational: violations are
// recorded and surfaced, never abort a render.
package guard

import "github.com/lixenwraith/kinetext/hierarchy"

// OpClass is one category of scene mutation
type OpClass uint16

const (
	// OpPosition moves the level's own node
	OpPosition OpClass = 1 << iota

	// OpOpacity fades the level's own node
	OpOpacity

	// OpGroupTransform applies a whole-group transform
	OpGroupTransform

	// OpChildLayout adds, removes or repositions child placeholders and
	// manages their spacing
	OpChildLayout

	// OpContentCreate creates primitive visual content
	OpContentCreate

	// OpContentRemove removes primitive visual content
	OpContentRemove

	// OpItemEffect applies a per-item visual effect
	OpItemEffect

	// OpChildContentMutation mutates content owned by a child level
	OpChildContentMutation

	// OpSiblingAccess touches a sibling's nodes
	OpSiblingAccess

	// OpParentTransform alters an ancestor's transform
	OpParentTransform
)

// OpSet is a bitmask of operation classes
type OpSet uint16

// Has reports whether the set contains the class
func (s OpSet) Has(c OpClass) bool {
	return uint16(s)&uint16(c) != 0
}

// With returns the set extended by the class
func (s OpSet) With(c OpClass) OpSet {
	return OpSet(uint16(s) | uint16(c))
}

// allowedOps is the fixed capability matrix
var allowedOps = map[hierarchy.Level]OpSet{
	hierarchy.LevelPhrase: OpSet(OpPosition | OpOpacity | OpGroupTransform),
	hierarchy.LevelWord:   OpSet(OpChildLayout),
	hierarchy.LevelCharacter: OpSet(OpContentCreate | OpContentRemove |
		OpItemEffect | OpPosition | OpOpacity),
}

// Allowed returns the allow set for a level
func Allowed(level hierarchy.Level) OpSet {
	return allowedOps[level]
}

// opClasses enumerates all classes for matrix scans
var opClasses = []OpClass{
	OpPosition, OpOpacity, OpGroupTransform, OpChildLayout,
	OpContentCreate, OpContentRemove, OpItemEffect,
	OpChildContentMutation, OpSiblingAccess, OpParentTransform,
}

// ruleFor maps a forbidden class to its violation rule name and severity.
// Classes named in the matrix's forbidden column are errors; ops merely
// outside a level's allow set are warnings.
func ruleFor(c OpClass, level hierarchy.Level) (string, Severity) {
	switch c {
	case OpContentCreate:
		return RuleContentCreation, SeverityError
	case OpContentRemove:
		return RuleContentRemoval, SeverityError
	case OpChildContentMutation:
		return RuleChildMutation, SeverityError
	case OpSiblingAccess:
		return RuleSiblingAccess, SeverityError
	case OpParentTransform:
		return RuleParentTransform, SeverityError
	case OpGroupTransform:
		// Group transform outside phrase level is the "phrase-level
		// transform" breach of the matrix
		return RuleParentTransform, SeverityError
	case OpChildLayout:
		return RuleLayoutMutation, SeverityError
	default:
		return RuleUnscopedOp, SeverityWarning
	}
}
