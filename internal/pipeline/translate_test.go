package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/pbaille/contentpack/internal/catalog"
	"github.com/pbaille/contentpack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() catalog.Catalog {
	return catalog.Catalog{
		"Khan Academy":    "Academia Khan",
		"Math":            "Matemáticas",
		"Millions":        "Millones",
		"Counting videos": "Videos de conteo",
		"<p>Learn <b>counting</b></p>": "<p>Aprende a <b>contar</b></p>",
		"What is 2+2?":    "¿Cuánto es 2+2?",
	}
}

func TestTranslateNodes_TranslatesSelectedFields(t *testing.T) {
	nodes := []domain.RawNode{
		{"path": "khan/", "kind": "Topic", "title": "Khan Academy", "slug": "root", "description": "Not in catalog"},
		{"path": "khan/math/", "kind": "Topic", "title": "Math", "display_name": "Math", "slug": "math"},
		{"path": "khan/math/v/", "kind": "Video", "title": "Counting videos", "slug": "Math", "youtube_id": "Millions"},
	}
	cat := testCatalog()

	out := TranslateNodes(nodes, cat)

	require.Len(t, out, len(nodes))
	for i, node := range out {
		assert.Equal(t, nodes[i]["path"], node["path"], "order preserved")
		for _, field := range TranslatableFields {
			in, _ := nodes[i].String(field)
			got, _ := node.String(field)
			assert.Equal(t, cat.Get(in), got, "field %s of %s", field, nodes[i]["path"])
		}
		for key, val := range nodes[i] {
			if !contains(TranslatableFields, key) {
				assert.Equal(t, val, node[key], "untranslatable field %s untouched", key)
			}
		}
	}
}

func TestTranslateNodes_DoesNotMutateInput(t *testing.T) {
	nodes := []domain.RawNode{{"title": "Math"}}
	_ = TranslateNodes(nodes, testCatalog())
	assert.Equal(t, "Math", nodes[0]["title"])
}

func TestTranslateNodes_DescriptionFromHTML(t *testing.T) {
	nodes := []domain.RawNode{
		{"title": "x", "description_html": "<p>Learn <b>counting</b></p>"},
		{"title": "y", "description": "Keep me", "description_html": "<p>Learn <b>counting</b></p>"},
	}

	out := TranslateNodes(nodes, testCatalog())

	assert.Equal(t, "<p>Aprende a <b>contar</b></p>", out[0]["description_html"])
	assert.Equal(t, "Aprende a contar", out[0]["description"])
	assert.Equal(t, "Keep me", out[1]["description"])
}

func TestTranslateNodes_EmptyAndNilCatalog(t *testing.T) {
	assert.Empty(t, TranslateNodes(nil, testCatalog()))

	out := TranslateNodes([]domain.RawNode{{"title": "Math"}}, nil)
	assert.Equal(t, "Math", out[0]["title"])
}

func TestTranslateAssessmentItemText_ReturnsAllItems(t *testing.T) {
	items := []domain.AssessmentItem{
		{ID: "not_in_catalog", ItemData: `"wala ito sa catalog"`},
		{ID: "not_translated", ItemData: `"Heart failure"`},
		{ID: "translated", ItemData: `"Millions"`},
	}

	out := TranslateAssessmentItemText(items, testCatalog())

	require.Len(t, out, 3)
	ids := make([]string, len(out))
	for i, it := range out {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"not_in_catalog", "not_translated", "translated"}, ids)
	assert.Equal(t, `"wala ito sa catalog"`, out[0].ItemData)
	assert.Equal(t, `"Millones"`, out[2].ItemData)
}

func TestTranslateAssessmentItemText_UnparsableKept(t *testing.T) {
	items := []domain.AssessmentItem{{ID: "broken", ItemData: `{"question": `}}

	out := TranslateAssessmentItemText(items, testCatalog())

	require.Len(t, out, 1)
	assert.Equal(t, items[0], out[0])
}

func TestTranslateItemData_ContentFields(t *testing.T) {
	data := `{"question":{"content":"What is 2+2?","widgets":{"radio 1":{"type":"radio","options":{"choices":[{"content":"Millions"},{"content":"4"}]}}}},"hints":["Millions",{"content":"Math"}],"answerArea":{"calculator":false,"points":3},"answerForms":["Millions"]}`

	out, err := TranslateItemData(data, testCatalog())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	question := doc["question"].(map[string]any)
	assert.Equal(t, "¿Cuánto es 2+2?", question["content"])

	radio := question["widgets"].(map[string]any)["radio 1"].(map[string]any)
	assert.Equal(t, "radio", radio["type"], "non-content strings untouched")
	choices := radio["options"].(map[string]any)["choices"].([]any)
	assert.Equal(t, "Millones", choices[0].(map[string]any)["content"])
	assert.Equal(t, "4", choices[1].(map[string]any)["content"])

	hints := doc["hints"].([]any)
	assert.Equal(t, "Millions", hints[0], "bare strings below the top level are not content")
	assert.Equal(t, "Matemáticas", hints[1].(map[string]any)["content"])

	area := doc["answerArea"].(map[string]any)
	assert.Equal(t, false, area["calculator"])
	assert.EqualValues(t, 3, area["points"])
	assert.Equal(t, []any{"Millions"}, doc["answerForms"])
}

func TestTranslateItemData_NoHTMLEscaping(t *testing.T) {
	out, err := TranslateItemData(`{"content":"a < b & c"}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"content":"a < b & c"}`, out)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
