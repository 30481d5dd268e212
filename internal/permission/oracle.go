package permission

import (
	"context"
	"fmt"
)

// Model selects how a subject's effective permissions are resolved.
type Model string

const (
	// ModelStored resolves to role defaults plus the user's stored grants.
	ModelStored Model = "stored"
	// ModelRoleTable resolves to role defaults only.
	ModelRoleTable Model = "role_table"
)

func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelStored, "":
		return ModelStored, nil
	case ModelRoleTable:
		return ModelRoleTable, nil
	}
	return "", fmt.Errorf("unknown permission model %q", s)
}

// Subject is whoever is asking: the authenticated user's role and stored grants.
type Subject struct {
	Role        Role
	Permissions []Permission
}

type Oracle struct {
	model Model
}

func NewOracle(model Model) *Oracle {
	if model == "" {
		model = ModelStored
	}
	return &Oracle{model: model}
}

func (o *Oracle) Model() Model { return o.model }

// HasPermission answers false without a subject and true for admin.
func (o *Oracle) HasPermission(s *Subject, p Permission) bool {
	if s == nil {
		return false
	}
	if s.Role.IsAdmin() {
		return true
	}
	for _, d := range roleDefaults[s.Role] {
		if d == p {
			return true
		}
	}
	if o.model == ModelRoleTable {
		return false
	}
	for _, g := range s.Permissions {
		if g == p {
			return true
		}
	}
	return false
}

func (o *Oracle) HasAny(s *Subject, perms ...Permission) bool {
	for _, p := range perms {
		if o.HasPermission(s, p) {
			return true
		}
	}
	return false
}

// Effective lists everything the subject may do under the oracle's model.
func (o *Oracle) Effective(s *Subject) []Permission {
	if s == nil {
		return nil
	}
	if s.Role.IsAdmin() {
		return All()
	}
	out := append([]Permission{}, roleDefaults[s.Role]...)
	if o.model == ModelStored {
		out = append(out, s.Permissions...)
	}
	return Normalize(out)
}

// Check adapts the oracle to the middleware authorizer shape.
func (o *Oracle) Check(_ context.Context, s *Subject, p Permission) (bool, error) {
	return o.HasPermission(s, p), nil
}
