package postgresadapter

import "time"

type principalRecord struct {
	PrincipalID    string    `gorm:"column:principal_id;primaryKey"`
	Email          string    `gorm:"column:email;uniqueIndex;not null"`
	CredentialHash string    `gorm:"column:credential_hash;not null"`
	IsDeleted      bool      `gorm:"column:is_deleted;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (principalRecord) TableName() string { return "principals" }

type profileRecord struct {
	PrincipalID string    `gorm:"column:principal_id;primaryKey"`
	LegacyRole  string    `gorm:"column:legacy_role"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (profileRecord) TableName() string { return "profiles" }

type roleRecord struct {
	RoleID   string `gorm:"column:role_id;primaryKey"`
	Name     string `gorm:"column:name;uniqueIndex:idx_roles_name_guard;not null"`
	GuardTag string `gorm:"column:guard_tag;uniqueIndex:idx_roles_name_guard;not null"`
}

func (roleRecord) TableName() string { return "roles" }

type rolePermissionRecord struct {
	RoleID     string `gorm:"column:role_id;primaryKey"`
	Permission string `gorm:"column:permission;primaryKey"`
}

func (rolePermissionRecord) TableName() string { return "role_permissions" }

type principalRoleRecord struct {
	PrincipalID string `gorm:"column:principal_id;primaryKey"`
	RoleID      string `gorm:"column:role_id;primaryKey"`
}

func (principalRoleRecord) TableName() string { return "principal_roles" }

type principalPermissionRecord struct {
	PrincipalID string `gorm:"column:principal_id;primaryKey"`
	Permission  string `gorm:"column:permission;primaryKey"`
}

func (principalPermissionRecord) TableName() string { return "principal_permissions" }
