package models

import (
	"slices"
	"time"
)

// AdminRole — роли администраторов.
type AdminRole string

const (
	RoleAdmin      AdminRole = "admin"
	RoleSuperAdmin AdminRole = "super_admin"
)

func (r AdminRole) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Permission is a capability tag checked by the admin API.
type Permission string

const (
	PermViewRegistrations   Permission = "view_registrations"
	PermApproveRegistration Permission = "approve_registrations"
	PermRejectRegistration  Permission = "reject_registrations"
	PermDeleteRegistration  Permission = "delete_registrations"
	PermManageTournaments   Permission = "manage_tournaments"
	PermUploadQRCodes       Permission = "upload_qr_codes"
	PermResetTournaments    Permission = "reset_tournaments"
	PermViewAnalytics       Permission = "view_analytics"
	PermManageAdmins        Permission = "manage_admins"
)

var allPermissions = []Permission{
	PermViewRegistrations,
	PermApproveRegistration,
	PermRejectRegistration,
	PermDeleteRegistration,
	PermManageTournaments,
	PermUploadQRCodes,
	PermResetTournaments,
	PermViewAnalytics,
	PermManageAdmins,
}

// rolePolicy is the fixed grant table. Explicit per-admin permissions are added on top.
var rolePolicy = map[AdminRole][]Permission{
	RoleAdmin: {
		PermViewRegistrations,
		PermApproveRegistration,
		PermRejectRegistration,
		PermDeleteRegistration,
		PermManageTournaments,
		PermUploadQRCodes,
		PermViewAnalytics,
	},
	RoleSuperAdmin: allPermissions,
}

// ParsePermission reports whether s names a known permission.
func ParsePermission(s string) (Permission, bool) {
	p := Permission(s)
	return p, slices.Contains(allPermissions, p)
}

// Allows checks a permission against the role table and the explicit grants.
func Allows(role AdminRole, explicit []Permission, p Permission) bool {
	return slices.Contains(rolePolicy[role], p) || slices.Contains(explicit, p)
}

// Admin представляет администратора платформы.
type Admin struct {
	ID           string       `json:"id" db:"id" bson:"_id"`
	Username     string       `json:"username" db:"username" bson:"username"`
	Email        *string      `json:"email,omitempty" db:"email" bson:"email,omitempty"`
	PasswordHash string       `json:"-" db:"password_hash" bson:"passwordHash"`
	Role         AdminRole    `json:"role" db:"role" bson:"role"`
	Permissions  []Permission `json:"permissions" db:"permissions" bson:"permissions"`
	IsActive     bool         `json:"isActive" db:"is_active" bson:"isActive"`
	LastLogin    *time.Time   `json:"lastLogin,omitempty" db:"last_login" bson:"lastLogin,omitempty"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at" bson:"createdAt"`
}
