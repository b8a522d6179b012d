// Package permissions enables content API actions for the users-permissions public role.
package permissions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const rolesPath = "/users-permissions/roles"

var ErrPublicRoleNotFound = errors.New("public role not found")

// API is the subset of the Strapi client used here. strapi.Client satisfies it.
type API interface {
	Get(ctx context.Context, path string, q url.Values, out any) error
	Put(ctx context.Context, path string, body, out any) error
}

type Action struct {
	Enabled bool   `json:"enabled"`
	Policy  string `json:"policy"`
}

type Controller map[string]Action

type Scope struct {
	Controllers map[string]Controller `json:"controllers"`
}

type Role struct {
	ID          int              `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        string           `json:"type"`
	Permissions map[string]Scope `json:"permissions,omitempty"`
}

// Grant names the actions to enable on one content type, e.g. tag with find and findOne.
type Grant struct {
	ContentType string
	Actions     []string
}

func (g Grant) validate() error {
	if strings.TrimSpace(g.ContentType) == "" {
		return fmt.Errorf("grant: content type is required")
	}
	if len(g.Actions) == 0 {
		return fmt.Errorf("grant %s: at least one action is required", g.ContentType)
	}
	for _, a := range g.Actions {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("grant %s: blank action", g.ContentType)
		}
	}
	return nil
}

// Result lists actions by uid, e.g. api::tag.tag.find.
type Result struct {
	RoleID    int
	Enabled   []string
	Unchanged []string
}

// Changed reports whether the role was saved.
func (r Result) Changed() bool { return len(r.Enabled) > 0 }

// GrantPublic enables the granted actions on the public role. Actions that are already
// enabled are left alone, and the role is only saved when something changed.
func GrantPublic(ctx context.Context, api API, grants ...Grant) (Result, error) {
	for _, g := range grants {
		if err := g.validate(); err != nil {
			return Result{}, err
		}
	}

	id, err := publicRoleID(ctx, api)
	if err != nil {
		return Result{}, err
	}

	var detail struct {
		Role Role `json:"role"`
	}
	path := rolesPath + "/" + strconv.Itoa(id)
	if err := api.Get(ctx, path, nil, &detail); err != nil {
		return Result{}, fmt.Errorf("load role %d: %w", id, err)
	}
	role := detail.Role
	if role.Permissions == nil {
		role.Permissions = map[string]Scope{}
	}

	res := Result{RoleID: id}
	for _, g := range grants {
		ct := strings.TrimSpace(g.ContentType)
		scopeKey := "api::" + ct
		scope := role.Permissions[scopeKey]
		if scope.Controllers == nil {
			scope.Controllers = map[string]Controller{}
		}
		ctrl := scope.Controllers[ct]
		if ctrl == nil {
			ctrl = Controller{}
		}
		for _, action := range g.Actions {
			action = strings.TrimSpace(action)
			uid := "api::" + ct + "." + ct + "." + action
			current := ctrl[action]
			if current.Enabled {
				res.Unchanged = append(res.Unchanged, uid)
				continue
			}
			current.Enabled = true
			ctrl[action] = current
			res.Enabled = append(res.Enabled, uid)
		}
		scope.Controllers[ct] = ctrl
		role.Permissions[scopeKey] = scope
	}
	sort.Strings(res.Enabled)
	sort.Strings(res.Unchanged)

	if !res.Changed() {
		return res, nil
	}
	body := map[string]any{
		"name":        role.Name,
		"description": role.Description,
		"permissions": role.Permissions,
	}
	if err := api.Put(ctx, path, body, nil); err != nil {
		return Result{}, fmt.Errorf("save role %d: %w", id, err)
	}
	return res, nil
}

func publicRoleID(ctx context.Context, api API) (int, error) {
	var list struct {
		Roles []Role `json:"roles"`
	}
	if err := api.Get(ctx, rolesPath, nil, &list); err != nil {
		return 0, fmt.Errorf("list roles: %w", err)
	}
	for _, r := range list.Roles {
		if r.Type == "public" {
			return r.ID, nil
		}
	}
	return 0, ErrPublicRoleNotFound
}

// ParseActions splits a comma-separated action list.
func ParseActions(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
