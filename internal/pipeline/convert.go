package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pbaille/contentpack/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// entityColumns are the raw keys that map onto Entity fields; everything else
// is kept in ExtraFields.
var entityColumns = map[string]bool{
	"id":          true,
	"title":       true,
	"description": true,
	"slug":        true,
	"kind":        true,
	"path":        true,
	"available":   true,
}

// ConvertNodes lazily converts raw nodes to entities, in order. The sequence can be
// ranged over more than once and stops after yielding the first error.
// Parents are not set here.
func ConvertNodes(nodes []domain.RawNode) iter.Seq2[*domain.Entity, error] {
	return func(yield func(*domain.Entity, error) bool) {
		for _, n := range nodes {
			e, err := ConvertNode(n)
			if !yield(e, err) || err != nil {
				return
			}
		}
	}
}

// CollectEntities drains seq, failing on the first error.
func CollectEntities(seq iter.Seq2[*domain.Entity, error]) ([]*domain.Entity, error) {
	var out []*domain.Entity
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ConvertNode validates one raw node and builds its entity.
func ConvertNode(n domain.RawNode) (*domain.Entity, error) {
	path := n.Path()

	kindName, _ := n.String("kind")
	if strings.TrimSpace(kindName) == "" {
		return nil, &ValidationError{Path: path, Field: "kind", Reason: "missing"}
	}
	kind, ok := domain.ParseKind(kindName)
	if !ok {
		return nil, &ValidationError{Path: path, Field: "kind", Reason: fmt.Sprintf("unknown kind %q", kindName)}
	}

	e := &domain.Entity{
		ID:    n.ID(),
		Title: n.Title(),
		Kind:  kind,
		Path:  path,
	}
	e.Description, _ = n.String("description")
	e.Slug, _ = n.String("slug")
	e.Available, _ = n.Bool("available")

	if err := validate.Struct(e); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			reason := fe.Tag()
			if reason == "required" {
				reason = "missing"
			}
			return nil, &ValidationError{Path: path, Field: fe.Field(), Reason: reason}
		}
		return nil, &ValidationError{Path: path, Reason: err.Error()}
	}

	extra, err := extraFields(n)
	if err != nil {
		return nil, &ValidationError{Path: path, Field: "extra_fields", Reason: err.Error()}
	}
	e.ExtraFields = extra

	return e, nil
}

func extraFields(n domain.RawNode) (string, error) {
	extra := make(map[string]any)
	for k, v := range n {
		if !entityColumns[k] {
			extra[k] = v
		}
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
