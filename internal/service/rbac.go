package service

import "github.com/japama/watercontract/internal/repo"

// Permit autoriza quando role pertence a allowed. A negação carrega os
// papéis exigidos e o papel apresentado.
func Permit(role repo.Role, allowed ...repo.Role) error {
	for _, candidate := range allowed {
		if role == candidate {
			return nil
		}
	}
	required := make([]string, 0, len(allowed))
	for _, r := range allowed {
		required = append(required, string(r))
	}
	return ErrForbidden.WithDetails(map[string]any{
		"required_roles": required,
		"your_role":      string(role),
	})
}
