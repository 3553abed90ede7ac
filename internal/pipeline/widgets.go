package pipeline

import (
	"encoding/json"

	"github.com/pbaille/contentpack/internal/domain"
)

// RemoveItemsWithEmptyWidgets drops assessment items whose question has no
// widgets; such items cannot be answered. Items whose item_data is not JSON are
// kept for the translator to pass through.
func RemoveItemsWithEmptyWidgets(items []domain.AssessmentItem) []domain.AssessmentItem {
	out := make([]domain.AssessmentItem, 0, len(items))
	for _, item := range items {
		if !json.Valid([]byte(item.ItemData)) || hasWidgets(item.ItemData) {
			out = append(out, item)
		}
	}
	return out
}

func hasWidgets(data string) bool {
	var doc struct {
		Question struct {
			Widgets any `json:"widgets"`
		} `json:"question"`
	}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return false
	}
	switch w := doc.Question.Widgets.(type) {
	case map[string]any:
		return len(w) > 0
	case []any:
		return len(w) > 0
	case string:
		return w != ""
	case bool:
		return w
	case float64:
		return w != 0
	default:
		return false
	}
}
