package guard

import (
	"fmt"

	"github.com/lixenwraith/kinetext/core"
	"github.com/lixenwraith/kinetext/hierarchy"
	"github.com/lixenwraith/kinetext/parameter"
	"github.com/lixenwraith/kinetext/scene"
)

// Stats is a read-only snapshot of validation accounting
type Stats struct {
	TotalChecks    int
	PassedChecks   int
	ComplianceRate float64 // passed/total; 1.0 when nothing has run
	ErrorCount     int
	WarningCount   int
}

// Validator enforces the capability matrix. Violations accumulate in a
// bounded history for diagnostics; a check passes when it yields no
// error-severity violations. Single-writer per owning orchestrator.
type Validator struct {
	history  []Violation
	total    int
	passed   int
	errors   int
	warnings int
}

// NewValidator creates an empty validator
func NewValidator() *Validator {
	return &Validator{}
}

// CheckImplementation inspects a renderer's declared operation set before
// execution and returns one violation per forbidden operation class. An
// empty declaration is flagged as a warning, since a renderer that declares
// nothing cannot be matched against the matrix.
func (v *Validator) CheckImplementation(level hierarchy.Level, declared OpSet) []Violation {
	var found []Violation

	if declared == 0 {
		found = append(found, Violation{
			Rule:        RuleNoDeclaredOps,
			Level:       level,
			Severity:    SeverityWarning,
			Description: "renderer declares no operations",
		})
	}

	allowed := Allowed(level)
	for _, c := range opClasses {
		if !declared.Has(c) || allowed.Has(c) {
			continue
		}
		rule, severity := ruleFor(c, level)
		found = append(found, Violation{
			Rule:        rule,
			Level:       level,
			Severity:    severity,
			Description: fmt.Sprintf("declared operation class %#x is forbidden at %s level", uint16(c), level),
		})
	}

	v.record(found)
	return found
}

// CheckProduced inspects the subtree a level renderer actually produced.
// Covers only what the narrowed interfaces cannot prevent: primitive
// content appearing on phrase- or word-owned nodes, and group transforms
// leaking onto character placeholders.
func (v *Validator) CheckProduced(level hierarchy.Level, g scene.Graph, id scene.NodeID) []Violation {
	var found []Violation
	info := g.Inspect(id)

	switch level {
	case hierarchy.LevelPhrase, hierarchy.LevelWord:
		if info.HasContent {
			found = append(found, Violation{
				Rule:        RuleContentCreation,
				Level:       level,
				Severity:    SeverityError,
				Description: fmt.Sprintf("%s node %d carries primitive content", level, id),
			})
		}
	case hierarchy.LevelCharacter:
		if tr := info.Transform; (tr.Scale != 0 && tr.Scale != 1) || tr.Translate != (scene.Vec2{}) {
			found = append(found, Violation{
				Rule:        RuleTransformScope,
				Level:       level,
				Severity:    SeverityWarning,
				Description: fmt.Sprintf("character placeholder %d carries a group transform", id),
			})
		}
		if info.ChildCount > 0 {
			found = append(found, Violation{
				Rule:        RuleChildMutation,
				Level:       level,
				Severity:    SeverityError,
				Description: fmt.Sprintf("character placeholder %d grew %d children", id, info.ChildCount),
			})
		}
	}

	v.record(found)
	return found
}

// record appends to the bounded history and updates pass accounting
func (v *Validator) record(found []Violation) {
	v.total++

	hasError := false
	for _, viol := range found {
		if viol.Severity == SeverityError {
			hasError = true
			v.errors++
		} else {
			v.warnings++
		}
		core.Log().Warn("responsibility violation",
			"rule", viol.Rule, "level", viol.Level.String(), "severity", viol.Severity.String())

		v.history = append(v.history, viol)
		if len(v.history) > parameter.ViolationHistoryCap {
			v.history = v.history[len(v.history)-parameter.ViolationHistoryCap:]
		}
	}
	if !hasError {
		v.passed++
	}
}

// Violations returns a copy of the retained history
func (v *Validator) Violations() []Violation {
	out := make([]Violation, len(v.history))
	copy(out, v.history)
	return out
}

// ClearHistory discards retained violations without resetting accounting
func (v *Validator) ClearHistory() {
	v.history = v.history[:0]
}

// Stats returns the current accounting snapshot. A pipeline is fully
// compliant only when ComplianceRate is 1.0.
func (v *Validator) Stats() Stats {
	s := Stats{
		TotalChecks:  v.total,
		PassedChecks: v.passed,
		ErrorCount:   v.errors,
		WarningCount: v.warnings,
	}
	if v.total == 0 {
		s.ComplianceRate = 1.0
	} else {
		s.ComplianceRate = float64(v.passed) / float64(v.total)
	}
	return s
}
