package authz

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/cedar-policy/cedar-go"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/domain"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

//go:embed policies.cedar
var policiesContent []byte

//go:embed restrict_view.cedar
var restrictViewContent []byte

// Config contains options for the Authorizer.
type Config struct {
	Logger *zap.Logger

	// RestrictTicketView limits USER principals to tickets they created.
	RestrictTicketView bool

	// PolicyBytes replaces the embedded policies (tests only).
	PolicyBytes []byte
}

// Authorizer wraps the Cedar policy engine.
type Authorizer struct {
	policies *cedar.PolicySet
	logger   *zap.Logger
}

// NewAuthorizer parses the policy set selected by cfg.
func NewAuthorizer(cfg Config) (*Authorizer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	policyData := cfg.PolicyBytes
	if policyData == nil {
		policyData = append([]byte{}, policiesContent...)
		if cfg.RestrictTicketView {
			policyData = append(append(policyData, '\n'), restrictViewContent...)
		}
	}

	ps, err := cedar.NewPolicySetFromBytes("policies.cedar", policyData)
	if err != nil {
		return nil, fmt.Errorf("parse policies: %w", err)
	}
	return &Authorizer{policies: ps, logger: logger}, nil
}

// Authorize is the single entry point for role decisions.
func (a *Authorizer) Authorize(_ context.Context, req Request) Decision {
	start := time.Now()

	if !req.Action.Known() {
		d := Decision{Reason: fmt.Sprintf("unknown action %q", req.Action)}
		a.logDecision(req, d)
		return d
	}
	if !req.Identity.Role.Valid() || req.Identity.UserID == "" {
		d := Decision{Reason: "principal has no valid role"}
		a.logDecision(req, d)
		return d
	}

	decision, diagnostic := cedar.Authorize(a.policies, buildEntities(req), buildCedarRequest(req))

	result := Decision{
		Allowed:  decision == cedar.Allow,
		Duration: time.Since(start),
	}
	if len(diagnostic.Reasons) > 0 {
		result.PolicyID = string(diagnostic.Reasons[0].PolicyID)
	}
	for _, evalErr := range diagnostic.Errors {
		a.logger.Error("policy evaluation error",
			zap.String("policy", string(evalErr.PolicyID)),
			zap.String("error", evalErr.Message))
	}

	if result.Allowed {
		result.Reason = "access permitted"
		result.Scope = scopeFor(req.Action, req.Identity.Role)
	} else if result.PolicyID != "" {
		result.Reason = fmt.Sprintf("denied by policy %s", result.PolicyID)
	} else {
		result.Reason = "no matching permit policy"
	}

	a.logDecision(req, result)
	return result
}

// Require turns a denial into a Forbidden error.
func (a *Authorizer) Require(ctx context.Context, req Request) (Decision, error) {
	decision := a.Authorize(ctx, req)
	if !decision.Allowed {
		return decision, apperrors.NewForbidden(fmt.Sprintf("%s not permitted for role %s", req.Action, req.Identity.Role))
	}
	return decision, nil
}

// scopeFor derives which tickets an allowed listing may return.
func scopeFor(action Action, role domain.Role) Scope {
	switch action {
	case ActionViewDashboard:
		if role.IsStaff() {
			return ScopeAll
		}
		return ScopeOwn
	case ActionListTickets:
		switch role {
		case domain.RoleAdmin:
			return ScopeAll
		case domain.RoleAgent:
			return ScopeAssignedOrUnassigned
		default:
			return ScopeOwn
		}
	}
	return ScopeNone
}

func buildEntities(req Request) cedar.EntityMap {
	principalUID := principalUID(req.Identity)
	resourceUID := resourceUID(req.Resource)

	return cedar.EntityMap{
		principalUID: cedar.Entity{
			UID:     principalUID,
			Parents: cedar.NewEntityUIDSet(),
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"id":   cedar.String(req.Identity.UserID),
				"role": cedar.String(string(req.Identity.Role)),
			}),
		},
		resourceUID: cedar.Entity{
			UID:     resourceUID,
			Parents: cedar.NewEntityUIDSet(),
			Attributes: cedar.NewRecord(cedar.RecordMap{
				"owner": cedar.String(req.Resource.OwnerID),
			}),
		},
	}
}

func buildCedarRequest(req Request) cedar.Request {
	return cedar.Request{
		Principal: principalUID(req.Identity),
		Action:    cedar.NewEntityUID("Action", cedar.String(string(req.Action))),
		Resource:  resourceUID(req.Resource),
		Context:   cedar.NewRecord(cedar.RecordMap{}),
	}
}

func principalUID(identity domain.Identity) cedar.EntityUID {
	return cedar.NewEntityUID("User", cedar.String(identity.UserID))
}

func resourceUID(resource Resource) cedar.EntityUID {
	resourceType := resource.Type
	if resourceType == "" {
		resourceType = ResourceTicket
	}
	id := resource.ID
	if id == "" {
		id = "*"
	}
	return cedar.NewEntityUID(cedar.EntityType(resourceType), cedar.String(id))
}

func (a *Authorizer) logDecision(req Request, d Decision) {
	fields := []zap.Field{
		zap.String("principal", req.Identity.UserID),
		zap.String("role", string(req.Identity.Role)),
		zap.String("action", string(req.Action)),
		zap.String("resource_type", req.Resource.Type),
		zap.String("resource", req.Resource.ID),
		zap.Bool("decision", d.Allowed),
		zap.String("reason", d.Reason),
		zap.String("policy_id", d.PolicyID),
		zap.Int64("duration_us", d.Duration.Microseconds()),
	}
	if d.Allowed {
		a.logger.Debug("authorization decision", fields...)
		return
	}
	a.logger.Info("authorization denied", fields...)
}
