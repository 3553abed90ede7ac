package pipeline

import "fmt"

// ValidationError reports a raw node that cannot become an entity: a required
// field is missing or its kind is not recognized. It aborts the build.
type ValidationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid node %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid node %q: field %s: %s", e.Path, e.Field, e.Reason)
}

// DanglingReferenceError reports a non-root entity whose parent path matches no
// persisted entity.
type DanglingReferenceError struct {
	Path       string
	ParentPath string
}

func (e *DanglingReferenceError) Error() string {
	if e.ParentPath == "" {
		return fmt.Sprintf("node %q has no parent path and is not the root", e.Path)
	}
	return fmt.Sprintf("node %q: no entity at parent path %q", e.Path, e.ParentPath)
}
