package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/open-policy-agent/opa/rego"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Decisions returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Verdict is the policy outcome for one therapist configuration.
type Verdict struct {
	Decision   string   `json:"decision"`
	Violations []string `json:"violations"`
}

// Engine is the OPA policy engine for therapist configuration.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine from rego source. Empty content selects DefaultPolicy.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	if strings.TrimSpace(policyContent) == "" {
		policyContent = DefaultPolicy
	}
	r := rego.New(
		rego.Query("data.technique_policy.verdict"),
		rego.Module("technique_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate runs the policy against cfg.
func (e *Engine) Evaluate(ctx context.Context, cfg domain.TherapistConfig) (Verdict, error) {
	pool := make([]string, len(cfg.TechniquePool))
	for i, t := range cfg.TechniquePool {
		pool[i] = string(t)
	}
	input := map[string]interface{}{
		"personality":            string(cfg.Personality),
		"technique_pool":         pool,
		"base_response_delay_ms": cfg.BaseResponseDelayHint.Milliseconds(),
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy is expected to define a default verdict.
		return Verdict{Decision: DecisionAllow}, nil
	}

	obj, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return Verdict{}, fmt.Errorf("unexpected policy result %T", results[0].Expressions[0].Value)
	}
	v := Verdict{Decision: DecisionAllow}
	if d, ok := obj["decision"].(string); ok {
		v.Decision = d
	}
	if list, ok := obj["violations"].([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				v.Violations = append(v.Violations, s)
			}
		}
	}
	return v, nil
}

// Validate returns an error wrapping domain.ErrInvalidConfiguration when the
// policy denies cfg.
func (e *Engine) Validate(ctx context.Context, cfg domain.TherapistConfig) error {
	v, err := e.Evaluate(ctx, cfg)
	if err != nil {
		return err
	}
	if v.Decision == DecisionAllow {
		return nil
	}
	reason := strings.Join(v.Violations, "; ")
	if reason == "" {
		reason = "denied by policy"
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfiguration, reason)
}

// DefaultPolicy is the default policy content.
const DefaultPolicy = `
package technique_policy

import rego.v1

personalities := {"empathetic", "analytical", "supportive", "challenging"}

techniques := {
	"active_listening", "reflection", "reframing",
	"validation", "questioning", "summarizing",
}

violations contains msg if {
	not personalities[input.personality]
	msg := sprintf("unknown personality %q", [input.personality])
}

violations contains "technique pool is empty" if {
	count(input.technique_pool) == 0
}

violations contains msg if {
	some t in input.technique_pool
	not techniques[t]
	msg := sprintf("unknown technique %q", [t])
}

violations contains msg if {
	some i, t in input.technique_pool
	some j, u in input.technique_pool
	i < j
	t == u
	msg := sprintf("duplicate technique %q", [t])
}

violations contains "negative response delay hint" if {
	input.base_response_delay_ms < 0
}

default verdict := {"decision": "allow", "violations": []}

verdict := {"decision": "deny", "violations": sort(violations)} if {
	count(violations) > 0
}
`
