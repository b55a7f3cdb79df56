// Package policy evaluates admission policy over incoming generation
// requests before any stage runs.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.generation_policy.decision"),
		rego.Module("generation_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the generation admission policy. Input carries the keys
// requirements and length. Returns the decision ("allow" or "deny") and an
// optional reason.
func (e *Engine) Evaluate(ctx context.Context, input interface{}) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The policy defines a default; an empty result means it was not
		// loaded, so fail open.
		return "allow", "default", nil
	}

	val := results[0].Expressions[0].Value
	switch v := val.(type) {
	case string:
		return v, "", nil
	case map[string]interface{}:
		decision, _ := v["decision"].(string)
		reason, _ := v["reason"].(string)
		if decision == "" {
			decision = "allow"
		}
		return decision, reason, nil
	}

	return "allow", "unexpected return type", nil
}

// DefaultPolicy is the default admission policy content.
const DefaultPolicy = `
package generation_policy

blocked_phrases := ["rm -rf /", "drop table"]

default decision := {"decision": "allow", "reason": ""}

decision := {"decision": "deny", "reason": concat("; ", deny_reasons)} if {
	count(deny_reasons) > 0
}

# Reject oversized requirement payloads outright.
deny_reasons contains "requirements too long" if {
	input.length > 10000
}

deny_reasons contains "requirements contain a blocked phrase" if {
	some phrase in blocked_phrases
	contains(lower(input.requirements), phrase)
}
`
