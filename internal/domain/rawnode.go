package domain

// RawNode is one untyped record from the node feed. It never travels past the
// model converter.
type RawNode map[string]any

// Clone returns a shallow copy; nested values are shared.
func (n RawNode) Clone() RawNode {
	out := make(RawNode, len(n))
	for k, v := range n {
		out[k] = v
	}
	return out
}

// String returns the value under key when it is a string.
func (n RawNode) String(key string) (string, bool) {
	s, ok := n[key].(string)
	return s, ok
}

// Bool returns the value under key when it is a bool.
func (n RawNode) Bool(key string) (bool, bool) {
	b, ok := n[key].(bool)
	return b, ok
}

func (n RawNode) ID() string {
	s, _ := n.String("id")
	return s
}

func (n RawNode) Path() string {
	s, _ := n.String("path")
	return s
}

func (n RawNode) Title() string {
	s, _ := n.String("title")
	return s
}

// Kind parses the node's kind, reporting false when it is missing or unknown.
func (n RawNode) Kind() (Kind, bool) {
	s, ok := n.String("kind")
	if !ok {
		return 0, false
	}
	return ParseKind(s)
}

// Is reports whether the node has the given kind.
func (n RawNode) Is(k Kind) bool {
	got, ok := n.Kind()
	return ok && got == k
}

// UsesAssessmentItems reads uses_assessment_items, defaulting to false.
func (n RawNode) UsesAssessmentItems() bool {
	b, _ := n.Bool("uses_assessment_items")
	return b
}

// AssessmentItemIDs lists the ids in all_assessment_items, accepting both the
// decoded-JSON shape and typed slices.
func (n RawNode) AssessmentItemIDs() []string {
	var ids []string
	switch items := n["all_assessment_items"].(type) {
	case []any:
		for _, it := range items {
			if m, ok := it.(map[string]any); ok {
				if id, ok := m["id"].(string); ok {
					ids = append(ids, id)
				}
			}
		}
	case []map[string]any:
		for _, m := range items {
			if id, ok := m["id"].(string); ok {
				ids = append(ids, id)
			}
		}
	case []map[string]string:
		for _, m := range items {
			ids = append(ids, m["id"])
		}
	case []AssessmentItem:
		for _, it := range items {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
