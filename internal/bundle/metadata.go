package bundle

import (
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/contentpack/internal/catalog"
	"github.com/pbaille/contentpack/internal/domain"
	"github.com/pbaille/contentpack/internal/langs"
)

// sourceLanguage is the language of videos with no translated_youtube_lang.
const sourceLanguage = "en"

// Metadata is written to metadata.json at the root of every pack.
type Metadata struct {
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	NativeName          string  `json:"native_name"`
	SoftwareVersion     string  `json:"software_version"`
	LanguagePackVersion string  `json:"language_pack_version"`
	BuildID             string  `json:"build_id"`
	PercentTranslated   float64 `json:"percent_translated"`
	TopicTreeTranslated float64 `json:"topic_tree_translated"`
	SubtitleCount       int     `json:"subtitle_count"`
	// VideoCount counts videos dubbed in the pack's language.
	VideoCount          int     `json:"video_count"`
	ExerciseCount       int     `json:"exercise_count"`
	TopicCount          int     `json:"topic_count"`
	AssessmentItemCount int     `json:"assessment_item_count"`
	// Beta marks packs shipping neither dubbed videos nor subtitles.
	Beta bool `json:"beta"`
}

func newMetadata(lang, version string, now time.Time) Metadata {
	l, _ := langs.Lookup(lang)
	return Metadata{
		Code:                lang,
		Name:                l.Name,
		NativeName:          l.NativeName,
		SoftwareVersion:     version,
		LanguagePackVersion: now.Format("20060102"),
		BuildID:             uuid.NewString(),
	}
}

func (m *Metadata) setCounts(counts map[domain.Kind]int, dubbed, items, subtitles int) {
	m.TopicCount = counts[domain.KindTopic]
	m.VideoCount = dubbed
	m.ExerciseCount = counts[domain.KindExercise]
	m.AssessmentItemCount = items
	m.SubtitleCount = subtitles
	m.Beta = dubbed == 0 && subtitles == 0
}

// isDubbed reports whether a video node's audio is in lang, comparing primary
// languages so "pt-BR" matches "pt".
func isDubbed(n domain.RawNode, lang string) bool {
	videoLang, _ := n.String("translated_youtube_lang")
	if videoLang == "" {
		videoLang = sourceLanguage
	}
	return langs.SamePrimary(videoLang, lang)
}

func countDubbed(nodes []domain.RawNode, lang string) int {
	n := 0
	for _, node := range nodes {
		if node.Is(domain.KindVideo) && isDubbed(node, lang) {
			n++
		}
	}
	return n
}

// interfacePercent combines the coverage of the interface catalogs, weighted by size.
func interfacePercent(files ...*catalog.POFile) float64 {
	var translated, total int
	for _, f := range files {
		if f == nil {
			continue
		}
		translated += len(f.Catalog)
		total += f.Total
	}
	if total == 0 {
		return 0
	}
	return float64(translated) / float64(total) * 100
}
