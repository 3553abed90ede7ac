package pipeline

import (
	"errors"
	"fmt"

	"github.com/pbaille/contentpack/internal/domain"
)

// PathIndex resolves persisted entities by their exact path.
// Misses return domain.ErrNotFound.
type PathIndex interface {
	EntityByPath(path string) (*domain.Entity, error)
}

// RootPredicate identifies the catalog root, the only entity allowed no parent.
type RootPredicate func(*domain.Entity) bool

// RootByPath matches the entity at path, ignoring a trailing slash.
func RootByPath(path string) RootPredicate {
	want := normalizePath(path)
	return func(e *domain.Entity) bool {
		return want != "" && normalizePath(e.Path) == want
	}
}

// RootByTitle matches the entity with the given title.
func RootByTitle(title string) RootPredicate {
	return func(e *domain.Entity) bool {
		return title != "" && e.Title == title
	}
}

// AnyRoot matches when any of preds does.
func AnyRoot(preds ...RootPredicate) RootPredicate {
	return func(e *domain.Entity) bool {
		for _, p := range preds {
			if p != nil && p(e) {
				return true
			}
		}
		return false
	}
}

// LinkParents resolves each entity's parent through index and assigns Parent and
// ParentID. Every entity must already be persisted so that parents outside this
// slice are found. The root keeps a nil parent; any other entity without a parent
// fails with *DanglingReferenceError.
func LinkParents(entities []*domain.Entity, index PathIndex, isRoot RootPredicate) ([]*domain.Entity, error) {
	resolved := make(map[string]*domain.Entity)

	for _, e := range entities {
		if isRoot != nil && isRoot(e) {
			e.Parent = nil
			e.ParentID = nil
			continue
		}

		parentPath, ok := ParentPath(e.Path)
		if !ok {
			return nil, &DanglingReferenceError{Path: e.Path}
		}

		key := normalizePath(parentPath)
		parent, ok := resolved[key]
		if !ok {
			found, err := lookupParent(index, parentPath)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				return nil, &DanglingReferenceError{Path: e.Path, ParentPath: parentPath}
			case err != nil:
				return nil, fmt.Errorf("lookup parent of %s: %w", e.Path, err)
			}
			resolved[key] = found
			parent = found
		}

		e.Parent = parent
		id := parent.ID
		e.ParentID = &id
	}

	return entities, nil
}

// lookupParent finds the topic at path with or without its trailing slash.
// Topics are normally stored as "khan/math/" while a leaf may read "khan/math/v1".
func lookupParent(index PathIndex, path string) (*domain.Entity, error) {
	trimmed := normalizePath(path)
	var err error
	for _, p := range []string{trimmed + "/", trimmed} {
		var e *domain.Entity
		e, err = index.EntityByPath(p)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, err
}
