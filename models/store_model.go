package models

import "gorm.io/gorm"

// Store is a retail outlet. All stock balances and settlements are scoped to
// one store; nothing in the ledger crosses stores.
type Store struct {
	gorm.Model
	Code   string      `json:"code" gorm:"unique;not null"`
	Name   string      `json:"name" gorm:"not null"`
	Status StoreStatus `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
}

// AcceptsWrites reports whether non-admin mutations are allowed. Stores in
// maintenance only accept writes from admins.
func (s *Store) AcceptsWrites(isAdmin bool) bool {
	return s.Status == StoreActive || isAdmin
}
