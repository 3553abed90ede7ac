package pipeline

import (
	"fmt"

	"github.com/pbaille/contentpack/internal/domain"
)

// Store is the persistence surface the pipeline needs.
type Store interface {
	PathIndex
	InsertEntities(entities []*domain.Entity) error
	UpdateParents(entities []*domain.Entity) error
}

// Persist converts nodes and writes them in two passes: all entities are inserted
// with a NULL parent, then parents are resolved against the store and written back.
func Persist(s Store, nodes []domain.RawNode, isRoot RootPredicate) ([]*domain.Entity, error) {
	entities, err := CollectEntities(ConvertNodes(nodes))
	if err != nil {
		return nil, err
	}

	if err := s.InsertEntities(entities); err != nil {
		return nil, fmt.Errorf("insert entities: %w", err)
	}

	linked, err := LinkParents(entities, s, isRoot)
	if err != nil {
		return nil, err
	}

	if err := s.UpdateParents(linked); err != nil {
		return nil, fmt.Errorf("update parents: %w", err)
	}

	return linked, nil
}
