package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Username string  `json:"username" gorm:"unique"`
	Password string  `json:"-"`
	Name     string  `json:"name"`
	Email    string  `json:"email" gorm:"unique"`
	Roles    []Role  `json:"roles" gorm:"many2many:user_roles;"`
	Stores   []Store `json:"stores" gorm:"many2many:user_stores;"`
}

type Role struct {
	gorm.Model
	Name        string       `json:"name" gorm:"unique"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions" gorm:"many2many:role_permissions;"`
}

// Permission names are dotted capabilities, e.g. "inventory.adjust",
// "settlements.approve".
type Permission struct {
	gorm.Model
	Name        string `json:"name" gorm:"unique"`
	Description string `json:"description"`
}

// HasRole checks the loaded role list; Roles must be preloaded.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
