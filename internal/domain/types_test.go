package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("Exercise")
	assert.True(t, ok)
	assert.Equal(t, KindExercise, k)

	k, ok = ParseKind(" topic ")
	assert.True(t, ok)
	assert.Equal(t, KindTopic, k)

	_, ok = ParseKind("Article")
	assert.False(t, ok)
}

func TestKind_JSONUsesNames(t *testing.T) {
	b, err := json.Marshal(Entity{ID: "x", Kind: KindVideo})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"kind":"Video"`)

	var e Entity
	require.NoError(t, json.Unmarshal(b, &e))
	assert.Equal(t, KindVideo, e.Kind)
}

func TestRawNode_AssessmentItemIDs(t *testing.T) {
	var decoded RawNode
	require.NoError(t, json.Unmarshal([]byte(`{"all_assessment_items":[{"id":"a"},{"id":"b"}]}`), &decoded))
	assert.Equal(t, []string{"a", "b"}, decoded.AssessmentItemIDs())

	typed := RawNode{"all_assessment_items": []map[string]any{{"id": "jebs"}}}
	assert.Equal(t, []string{"jebs"}, typed.AssessmentItemIDs())

	assert.Empty(t, RawNode{}.AssessmentItemIDs())
}

func TestRawNode_CloneDoesNotAlias(t *testing.T) {
	n := RawNode{"title": "a"}
	c := n.Clone()
	c["title"] = "b"
	assert.Equal(t, "a", n["title"])
}
