package pipeline

import (
	"encoding/json"

	"github.com/pbaille/contentpack/internal/catalog"
	"github.com/pbaille/contentpack/internal/domain"
	"github.com/pbaille/contentpack/internal/logger"
)

// Input is everything the in-memory stages consume.
type Input struct {
	Nodes            []domain.RawNode
	AssessmentItems  []domain.AssessmentItem
	Catalog          catalog.Catalog
	HTMLExerciseIDs  map[string]struct{}
	UnavailablePaths []string
	KeepEmptyTopics  bool
}

// Output is the filtered, translated feed ready for conversion.
type Output struct {
	Nodes           []domain.RawNode
	AssessmentItems []domain.AssessmentItem
}

// Transform runs translation and filtering, in order. It does no I/O.
// Duplicates are resolved only after the availability and completeness filters,
// so a copy in a removed subtree never shadows a surviving one.
func Transform(in Input, log *logger.Logger) Output {
	items := RemoveItemsWithEmptyWidgets(in.AssessmentItems)
	for _, it := range items {
		if !json.Valid([]byte(it.ItemData)) {
			log.Debug("assessment item data is not JSON, kept untranslated", "id", it.ID)
		}
	}
	items = TranslateAssessmentItemText(items, in.Catalog)

	nodes := TranslateNodes(in.Nodes, in.Catalog)
	total := len(nodes)

	nodes = RemoveUnavailableTopics(nodes, in.UnavailablePaths)
	available := len(nodes)

	before := nodes
	nodes = RemoveUntranslatedExercises(nodes, in.HTMLExerciseIDs, items)
	translated := len(nodes)
	logDropped(log, before, nodes)

	nodes = RemoveDuplicateLeaves(nodes)
	deduped := len(nodes)

	nodes = RemoveMissingAssessmentItems(nodes, items)
	if !in.KeepEmptyTopics {
		nodes = PruneEmptyTopics(nodes)
	}
	nodes = MarkAvailability(nodes)

	log.Info("transformed content tree",
		"nodes", total,
		"unavailable_removed", total-available,
		"untranslated_exercises_removed", available-translated,
		"duplicates_removed", translated-deduped,
		"empty_topics_removed", deduped-len(nodes),
		"kept", len(nodes),
		"assessment_items", len(items),
		"empty_widget_items_removed", len(in.AssessmentItems)-len(items),
	)

	return Output{Nodes: nodes, AssessmentItems: items}
}

func logDropped(log *logger.Logger, before, after []domain.RawNode) {
	kept := make(map[string]bool, len(after))
	for _, n := range after {
		kept[n.Path()] = true
	}
	for _, n := range before {
		if !kept[n.Path()] {
			log.Debug("dropped untranslated exercise", "id", n.ID(), "path", n.Path())
		}
	}
}
