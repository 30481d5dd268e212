package store

import (
	"strings"

	storeDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/store"
)

type Store struct {
	ID   string `json:"id" validate:"required,store_id"`
	Name string `json:"name" validate:"required,max=128"`
}

// Normalize upper-cases the business key so "t508" and "T508" name the same store.
func (s *Store) Normalize() {
	s.ID = strings.ToUpper(strings.TrimSpace(s.ID))
	s.Name = strings.TrimSpace(s.Name)
}

func ToDataModel(s *Store) *storeDatamodel.Store {
	return &storeDatamodel.Store{
		ID:   s.ID,
		Name: s.Name,
	}
}

func FromDataModel(s *storeDatamodel.Store) *Store {
	return &Store{
		ID:   s.ID,
		Name: s.Name,
	}
}
