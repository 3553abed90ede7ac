package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pbaille/contentpack/internal/catalog"
	"github.com/pbaille/contentpack/internal/domain"
	"github.com/pbaille/contentpack/internal/htmltext"
)

// TranslatableFields are the node fields rewritten through the catalog.
// Translation here is best effort: an untranslated title never removes a node.
var TranslatableFields = []string{
	"title",
	"description",
	"display_name",
	"description_html",
}

// TranslateNodes returns copies of nodes with every translatable field replaced by
// its catalog translation. Other fields are left alone. When a node carries
// description_html but no description, the translated HTML is rendered as the
// plain-text description.
func TranslateNodes(nodes []domain.RawNode, cat catalog.Catalog) []domain.RawNode {
	out := make([]domain.RawNode, len(nodes))
	for i, node := range nodes {
		n := node.Clone()
		for _, field := range TranslatableFields {
			if s, ok := n.String(field); ok && s != "" {
				n[field] = cat.Get(s)
			}
		}
		if html, ok := n.String("description_html"); ok && html != "" {
			if desc, _ := n.String("description"); desc == "" {
				n["description"] = htmltext.ToText(html)
			}
		}
		out[i] = n
	}
	return out
}

// TranslateAssessmentItemText translates the text fragments of each item's
// item_data. Every input item comes back exactly once, in order, with its id
// unchanged; item_data that does not parse is passed through as is.
func TranslateAssessmentItemText(items []domain.AssessmentItem, cat catalog.Catalog) []domain.AssessmentItem {
	out := make([]domain.AssessmentItem, 0, len(items))
	for _, item := range items {
		data, err := TranslateItemData(item.ItemData, cat)
		if err != nil {
			data = item.ItemData
		}
		out = append(out, domain.AssessmentItem{ID: item.ID, ItemData: data})
	}
	return out
}

// TranslateItemData parses data as JSON and translates its text fragments: a bare
// string document and the value of every "content" key. Other strings, such as
// widget types or answer forms, are never looked up.
func TranslateItemData(data string, cat catalog.Catalog) (string, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("parse item data: %w", err)
	}

	if s, ok := doc.(string); ok {
		doc = cat.Get(s)
	} else {
		doc = translateContent(doc, cat)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode item data: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func translateContent(v any, cat catalog.Catalog) any {
	switch t := v.(type) {
	case []any:
		for i, elem := range t {
			t[i] = translateContent(elem, cat)
		}
		return t
	case map[string]any:
		for key, elem := range t {
			if s, ok := elem.(string); ok {
				if key == "content" {
					t[key] = cat.Get(s)
				}
				continue
			}
			t[key] = translateContent(elem, cat)
		}
		return t
	default:
		return v
	}
}
