package pipeline

import (
	"testing"

	"github.com/pbaille/contentpack/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRemoveItemsWithEmptyWidgets(t *testing.T) {
	items := []domain.AssessmentItem{
		{ID: "radio", ItemData: `{"question":{"content":"2+2","widgets":{"radio 1":{"type":"radio"}}}}`},
		{ID: "empty", ItemData: `{"question":{"content":"2+2","widgets":{}}}`},
		{ID: "null", ItemData: `{"question":{"content":"2+2","widgets":null}}`},
		{ID: "no-widgets", ItemData: `{"question":{"content":"2+2"}}`},
		{ID: "no-question", ItemData: `{"hints":[]}`},
		{ID: "bad-question", ItemData: `{"question":"2+2"}`},
		{ID: "broken", ItemData: `{"question": `},
	}

	out := RemoveItemsWithEmptyWidgets(items)

	ids := make([]string, len(out))
	for i, it := range out {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"radio", "broken"}, ids)
}
