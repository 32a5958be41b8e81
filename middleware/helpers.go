package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/slot-arena/models"
	"github.com/golang-jwt/jwt/v4"
)

// AdminIdentity — администратор, восстановленный из JWT.
type AdminIdentity struct {
	ID          string
	Username    string
	Role        models.AdminRole
	Permissions []models.Permission
}

func (a *AdminIdentity) Can(p models.Permission) bool {
	return models.Allows(a.Role, a.Permissions, p)
}

func GetAdminFromContext(ctx context.Context) (*AdminIdentity, error) {
	admin, ok := ctx.Value(adminContextKey).(*AdminIdentity)
	if !ok || admin == nil {
		return nil, errors.New("admin claims not found in context")
	}
	return admin, nil
}

// WithAdmin returns a context carrying admin, as Authenticate does.
func WithAdmin(ctx context.Context, admin *AdminIdentity) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

func identityFromClaims(claims jwt.MapClaims) (*AdminIdentity, error) {
	id, ok := claims[jwtClaimAdminID].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("missing '%s' claim in token", jwtClaimAdminID)
	}
	username, _ := claims[jwtClaimUsername].(string)
	roleStr, ok := claims[jwtClaimRole].(string)
	if !ok {
		return nil, fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}
	role := models.AdminRole(roleStr)
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role value in claim: %q", roleStr)
	}

	identity := &AdminIdentity{ID: id, Username: username, Role: role}
	// неизвестные права игнорируются
	if raw, ok := claims[jwtClaimPermissions].([]interface{}); ok {
		for _, v := range raw {
			s, _ := v.(string)
			if p, known := models.ParsePermission(s); known {
				identity.Permissions = append(identity.Permissions, p)
			}
		}
	}
	return identity, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
