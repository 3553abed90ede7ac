package pipeline

import "github.com/pbaille/contentpack/internal/domain"

// RemoveUntranslatedExercises drops exercises with no translated content.
// An exercise built on assessment items survives when at least one of its item
// ids is among items; an HTML exercise survives when its id is in htmlIDs.
// Topics and videos always survive.
func RemoveUntranslatedExercises(nodes []domain.RawNode, htmlIDs map[string]struct{}, items []domain.AssessmentItem) []domain.RawNode {
	itemIDs := make(map[string]struct{}, len(items))
	for _, it := range items {
		itemIDs[it.ID] = struct{}{}
	}

	out := make([]domain.RawNode, 0, len(nodes))
	for _, n := range nodes {
		if !n.Is(domain.KindExercise) || isTranslatedExercise(n, htmlIDs, itemIDs) {
			out = append(out, n)
		}
	}
	return out
}

func isTranslatedExercise(n domain.RawNode, htmlIDs, itemIDs map[string]struct{}) bool {
	if !n.UsesAssessmentItems() {
		_, ok := htmlIDs[n.ID()]
		return ok
	}
	for _, id := range n.AssessmentItemIDs() {
		if _, ok := itemIDs[id]; ok {
			return true
		}
	}
	return false
}

// RemoveMissingAssessmentItems returns copies of exercises whose
// all_assessment_items lists only ids present in items.
func RemoveMissingAssessmentItems(nodes []domain.RawNode, items []domain.AssessmentItem) []domain.RawNode {
	known := make(map[string]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}

	out := make([]domain.RawNode, len(nodes))
	for i, n := range nodes {
		out[i] = n
		if !n.Is(domain.KindExercise) {
			continue
		}
		switch list := n["all_assessment_items"].(type) {
		case []any:
			kept := make([]any, 0, len(list))
			for _, it := range list {
				if m, ok := it.(map[string]any); ok {
					if id, _ := m["id"].(string); known[id] {
						kept = append(kept, it)
					}
				}
			}
			c := n.Clone()
			c["all_assessment_items"] = kept
			out[i] = c
		case []map[string]any:
			kept := make([]map[string]any, 0, len(list))
			for _, m := range list {
				if id, _ := m["id"].(string); known[id] {
					kept = append(kept, m)
				}
			}
			c := n.Clone()
			c["all_assessment_items"] = kept
			out[i] = c
		}
	}
	return out
}
