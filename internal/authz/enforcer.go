// Package authz decides which roles may call which API routes.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

const (
	RoleLearner = "learner"
	RoleAdmin   = "admin"
)

// Enforcer wraps a synced casbin enforcer.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the embedded model. Policy comes from policyPath when
// set, the embedded policy otherwise.
func NewEnforcer(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}

	var e *casbin.SyncedEnforcer
	if policyPath != "" {
		e, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		e, err = casbin.NewSyncedEnforcer(m)
		if err == nil {
			err = loadPolicy(e, embeddedPolicy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	return &Enforcer{enforcer: e}, nil
}

func loadPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := e.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := e.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Allow reports whether role may perform method on path.
func (e *Enforcer) Allow(role, path, method string) (bool, error) {
	if role == "" {
		return false, nil
	}
	ok, err := e.enforcer.Enforce(role, path, method)
	if err != nil {
		return false, fmt.Errorf("enforce: %w", err)
	}
	return ok, nil
}

// ImpliedRoles lists the roles role inherits, itself included.
func (e *Enforcer) ImpliedRoles(role string) []string {
	roles, err := e.enforcer.GetImplicitRolesForUser(role)
	if err != nil {
		return []string{role}
	}
	return append([]string{role}, roles...)
}
