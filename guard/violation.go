package guard

import (
	"fmt"

	"github.com/lixenwraith/kinetext/hierarchy"
)

// Severity grades a violation
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the severity name
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Violation rule names
const (
	RuleContentCreation = "content_creation"
	RuleContentRemoval  = "content_removal"
	RuleChildMutation   = "child_mutation"
	RuleParentTransform = "parent_transform"
	RuleSiblingAccess   = "sibling_access"
	RuleLayoutMutation  = "layout_mutation"
	RuleUnscopedOp      = "unscoped_op"
	RuleNoDeclaredOps   = "no_declared_ops"
	RuleTransformScope  = "transform_scope"
)

// Violation is one recorded responsibility breach
type Violation struct {
	Rule        string
	Level       hierarchy.Level
	Severity    Severity
	Description string
}

// String formats the violation for logs
func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s at %s level: %s", v.Severity, v.Rule, v.Level, v.Description)
}
