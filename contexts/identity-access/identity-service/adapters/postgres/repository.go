package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"backoffice/contexts/identity-access/identity-service/domain/entities"
	domainerrors "backoffice/contexts/identity-access/identity-service/domain/errors"
	"backoffice/contexts/identity-access/identity-service/ports"
)

// Repository is the PostgreSQL adapter for identity state. Principal and
// profile creation run inside one transaction so the profile always exists.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// AutoMigrate creates identity tables and their unique indexes.
func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&principalRecord{},
		&profileRecord{},
		&roleRecord{},
		&rolePermissionRecord{},
		&principalRoleRecord{},
		&principalPermissionRecord{},
	)
}

func (r *Repository) CreatePrincipal(ctx context.Context, input ports.CreatePrincipalInput) (entities.Principal, error) {
	record := principalRecord{
		PrincipalID:    input.PrincipalID,
		Email:          input.Email,
		CredentialHash: input.CredentialHash,
		CreatedAt:      input.Now,
		UpdatedAt:      input.Now,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&principalRecord{}).
			Where("email = ? AND is_deleted = false", input.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrDuplicateEmail
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Create(&profileRecord{
			PrincipalID: input.PrincipalID,
			LegacyRole:  input.LegacyRole,
			Status:      "active",
			CreatedAt:   input.Now,
		}).Error
	})
	if err != nil {
		return entities.Principal{}, err
	}
	return principalFromRecord(record), nil
}

func (r *Repository) GetPrincipal(ctx context.Context, principalID string) (entities.Principal, error) {
	var record principalRecord
	err := r.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		First(&record).Error
	if err != nil {
		return entities.Principal{}, translateNotFound(err, domainerrors.ErrPrincipalNotFound)
	}
	return principalFromRecord(record), nil
}

func (r *Repository) GetPrincipalByEmail(ctx context.Context, email string) (entities.Principal, error) {
	var record principalRecord
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&record).Error
	if err != nil {
		return entities.Principal{}, translateNotFound(err, domainerrors.ErrPrincipalNotFound)
	}
	return principalFromRecord(record), nil
}

func (r *Repository) GetProfile(ctx context.Context, principalID string) (entities.Profile, error) {
	var record profileRecord
	err := r.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		First(&record).Error
	if err != nil {
		return entities.Profile{}, translateNotFound(err, domainerrors.ErrPrincipalNotFound)
	}
	return entities.Profile{
		PrincipalID: record.PrincipalID,
		LegacyRole:  record.LegacyRole,
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
	}, nil
}

func (r *Repository) CreateRole(ctx context.Context, role entities.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&roleRecord{}).
			Where("name = ? AND guard_tag = ?", role.Name, role.GuardTag).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrDuplicateRole
		}
		if err := tx.Create(&roleRecord{
			RoleID:   role.RoleID,
			Name:     role.Name,
			GuardTag: role.GuardTag,
		}).Error; err != nil {
			return err
		}
		for _, permission := range role.Permissions {
			if err := tx.Create(&rolePermissionRecord{
				RoleID:     role.RoleID,
				Permission: permission,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetRoleByName(ctx context.Context, name string, guardTag string) (entities.Role, error) {
	var record roleRecord
	err := r.db.WithContext(ctx).
		Where("name = ? AND guard_tag = ?", name, guardTag).
		First(&record).Error
	if err != nil {
		return entities.Role{}, translateNotFound(err, domainerrors.ErrRoleNotFound)
	}

	var grants []rolePermissionRecord
	if err := r.db.WithContext(ctx).
		Where("role_id = ?", record.RoleID).
		Find(&grants).Error; err != nil {
		return entities.Role{}, err
	}
	role := entities.Role{
		RoleID:   record.RoleID,
		Name:     record.Name,
		GuardTag: record.GuardTag,
	}
	for _, grant := range grants {
		role.Permissions = append(role.Permissions, grant.Permission)
	}
	return role, nil
}

func (r *Repository) AssignRole(ctx context.Context, principalID string, roleID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&principalRoleRecord{}).
			Where("principal_id = ? AND role_id = ?", principalID, roleID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrRoleAlreadyAssigned
		}
		return tx.Create(&principalRoleRecord{
			PrincipalID: principalID,
			RoleID:      roleID,
		}).Error
	})
}

func (r *Repository) HasGlobalRole(ctx context.Context, principalID string, roleName string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("principal_roles").
		Joins("JOIN roles ON roles.role_id = principal_roles.role_id").
		Where("principal_roles.principal_id = ? AND roles.name = ?", principalID, roleName).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) GrantPermissionToRole(ctx context.Context, roleID string, permission string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&rolePermissionRecord{}).
			Where("role_id = ? AND permission = ?", roleID, permission).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domainerrors.ErrPermissionAlreadyGranted
		}
		return tx.Create(&rolePermissionRecord{RoleID: roleID, Permission: permission}).Error
	})
}

func (r *Repository) GrantPermissionToPrincipal(ctx context.Context, principalID string, permission string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&principalPermissionRecord{}).
			Where("principal_id = ? AND permission = ?", principalID, permission).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&principalPermissionRecord{
			PrincipalID: principalID,
			Permission:  permission,
		}).Error
	})
}

func (r *Repository) ListDirectPermissions(ctx context.Context, principalID string) ([]string, error) {
	var grants []principalPermissionRecord
	err := r.db.WithContext(ctx).
		Where("principal_id = ?", principalID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	items := make([]string, 0, len(grants))
	for _, grant := range grants {
		items = append(items, grant.Permission)
	}
	return items, nil
}

func (r *Repository) ListRolePermissions(ctx context.Context, principalID string) ([]string, error) {
	var rows []rolePermissionRecord
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role_permissions.role_id, role_permissions.permission").
		Joins("JOIN principal_roles ON principal_roles.role_id = role_permissions.role_id").
		Where("principal_roles.principal_id = ?", principalID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(rows))
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.Permission]; dup {
			continue
		}
		seen[row.Permission] = struct{}{}
		items = append(items, row.Permission)
	}
	return items, nil
}

func principalFromRecord(record principalRecord) entities.Principal {
	return entities.Principal{
		PrincipalID:    record.PrincipalID,
		Email:          record.Email,
		CredentialHash: record.CredentialHash,
		IsDeleted:      record.IsDeleted,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func translateNotFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
