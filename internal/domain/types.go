package domain

import (
	"fmt"
	"strings"
)

// Kind enumerates the node kinds of the content tree. It is persisted as an integer.
type Kind int

const (
	KindTopic Kind = iota + 1
	KindVideo
	KindExercise
)

var kindNames = map[Kind]string{
	KindTopic:    "Topic",
	KindVideo:    "Video",
	KindExercise: "Exercise",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText renders the kind by name so JSON output stays readable.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown kind %q", string(b))
	}
	*k = parsed
	return nil
}

// ParseKind matches a feed kind name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return k, true
		}
	}
	return 0, false
}

// Entity is a validated content node ready for persistence.
// Parent and ParentID stay nil until the parent link pass resolves them by path.
type Entity struct {
	ID          string  `json:"id" validate:"required"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Slug        string  `json:"slug" validate:"required"`
	Kind        Kind    `json:"kind" validate:"required"`
	Path        string  `json:"path" validate:"required"`
	Available   bool    `json:"available"`
	ParentID    *string `json:"parent_id,omitempty"`
	Parent      *Entity `json:"-"`
	ExtraFields string  `json:"extra_fields,omitempty"`
}

// AssessmentItem is an exercise question whose item_data is a serialized JSON document.
type AssessmentItem struct {
	ID       string `json:"id"`
	ItemData string `json:"item_data"`
}
