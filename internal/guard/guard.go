// Package guard decides what a protected view does with the current session: wait, render,
// or redirect. The decision comes from a Rego policy evaluated in-process with OPA.
package guard

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"event-admin-console/internal/logging"
	"event-admin-console/internal/session/domain"
)

const query = "data.console.guard.action"

//go:embed policy.rego
var defaultPolicy string

// Actions a guard decision can take.
const (
	ActionWait                 = "wait"
	ActionRender               = "render"
	ActionRedirectLanding      = "redirect_landing"
	ActionRedirectUnauthorized = "redirect_unauthorized"
)

// Decision is the outcome for one protected view. Route is set for redirects.
type Decision struct {
	Action string
	Route  string
}

// Redirect reports whether the decision navigates away.
func (d Decision) Redirect() bool {
	return d.Action == ActionRedirectLanding || d.Action == ActionRedirectUnauthorized
}

// Options configures an Evaluator. Policy overrides the embedded policy; it must define
// data.console.guard.action.
type Options struct {
	Policy            string
	LandingRoute      string
	UnauthorizedRoute string
	Logger            *slog.Logger
}

// Evaluator evaluates the route-guard policy. Safe for concurrent use.
type Evaluator struct {
	prepared     rego.PreparedEvalQuery
	landing      string
	unauthorized string
	logger       *slog.Logger
}

// New compiles the policy and prepares the query.
func New(ctx context.Context, opts Options) (*Evaluator, error) {
	policy := opts.Policy
	if policy == "" {
		policy = defaultPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"guard.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile guard policy: %w", err)
	}
	prepared, err := rego.New(
		rego.Query(query),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare guard policy: %w", err)
	}
	e := &Evaluator{
		prepared:     prepared,
		landing:      opts.LandingRoute,
		unauthorized: opts.UnauthorizedRoute,
		logger:       logging.Or(opts.Logger),
	}
	if e.landing == "" {
		e.landing = "/"
	}
	if e.unauthorized == "" {
		e.unauthorized = "/unauthorized"
	}
	return e, nil
}

// HealthCheck evaluates the policy against an anonymous session.
func (e *Evaluator) HealthCheck(ctx context.Context) error {
	action, err := e.eval(ctx, domain.InitialState(), "")
	if err != nil {
		return err
	}
	if action != ActionRedirectLanding {
		return fmt.Errorf("guard policy: anonymous session yielded %q", action)
	}
	return nil
}

// Evaluate decides what a view requiring requiredRole ("" for any authenticated user) does
// for state. If the policy fails to evaluate, the built-in rules decide.
func (e *Evaluator) Evaluate(ctx context.Context, state domain.State, requiredRole string) Decision {
	action, err := e.eval(ctx, state, requiredRole)
	if err != nil {
		e.logger.Warn("guard: policy evaluation failed, using built-in rules", "error", err)
		action = fallback(state, requiredRole)
	}
	return e.decision(action)
}

func (e *Evaluator) eval(ctx context.Context, state domain.State, requiredRole string) (string, error) {
	rs, err := e.prepared.Eval(ctx, rego.EvalInput(buildInput(state, requiredRole)))
	if err != nil {
		return "", err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return "", errors.New("guard policy returned no result")
	}
	action, ok := rs[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("guard policy returned %T", rs[0].Expressions[0].Value)
	}
	switch action {
	case ActionWait, ActionRender, ActionRedirectLanding, ActionRedirectUnauthorized:
		return action, nil
	default:
		return "", fmt.Errorf("guard policy returned unknown action %q", action)
	}
}

func (e *Evaluator) decision(action string) Decision {
	switch action {
	case ActionRedirectLanding:
		return Decision{Action: action, Route: e.landing}
	case ActionRedirectUnauthorized:
		return Decision{Action: action, Route: e.unauthorized}
	default:
		return Decision{Action: action}
	}
}

func buildInput(state domain.State, requiredRole string) map[string]interface{} {
	var user interface{}
	if state.User != nil {
		user = map[string]interface{}{
			"id":      state.User.ID,
			"role_id": state.User.RoleID,
		}
	}
	return map[string]interface{}{
		"session": map[string]interface{}{
			"is_loading":       state.IsLoading,
			"is_authenticated": state.IsAuthenticated,
			"user":             user,
		},
		"required_role": requiredRole,
	}
}

func fallback(state domain.State, requiredRole string) string {
	switch {
	case state.IsLoading:
		return ActionWait
	case !state.IsAuthenticated || state.User == nil:
		return ActionRedirectLanding
	case !HasPermission(state.User, requiredRole):
		return ActionRedirectUnauthorized
	default:
		return ActionRender
	}
}

// HasPermission reports whether user holds role. An empty role is satisfied by any user.
func HasPermission(user *domain.UserProfile, role string) bool {
	if user == nil {
		return false
	}
	return role == "" || user.RoleID == role
}

// FormatUserName joins the non-empty name parts with single spaces.
func FormatUserName(user domain.UserProfile) string {
	return user.FullName()
}
