package rbac

type Role struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

type Permission struct {
	ID       int64  `gorm:"primaryKey"`
	Name     string `gorm:"column:name;uniqueIndex;not null"`
	Category string `gorm:"column:category;not null"`
}

func (Permission) TableName() string {
	return "permissions"
}

// RolePermission is one role→permission edge. (role_id, permission_id) is
// unique.
type RolePermission struct {
	ID           int64 `gorm:"primaryKey"`
	RoleID       int64 `gorm:"column:role_id;not null;uniqueIndex:idx_roles_permissions_pair"`
	PermissionID int64 `gorm:"column:permission_id;not null;uniqueIndex:idx_roles_permissions_pair"`
}

func (RolePermission) TableName() string {
	return "roles_permissions"
}

// UserScope assigns one job to a user's scope attribute.
type UserScope struct {
	ID     int64 `gorm:"primaryKey"`
	UserID int64 `gorm:"column:user_id;not null;uniqueIndex:idx_user_scopes_pair"`
	JobID  int64 `gorm:"column:job_id;not null;uniqueIndex:idx_user_scopes_pair"`
}

func (UserScope) TableName() string {
	return "user_scopes"
}
