// Package langs resolves language codes to display names and primary subtags.
package langs

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"
)

//go:embed languages.json
var languagesJSON []byte

type Language struct {
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

var (
	loadOnce  sync.Once
	languages map[string]Language
)

func table() map[string]Language {
	loadOnce.Do(func() {
		if err := json.Unmarshal(languagesJSON, &languages); err != nil {
			panic("langs: embedded table: " + err.Error())
		}
	})
	return languages
}

// Lookup finds code in the language table. "pt_BR" and "pt-br" resolve like
// "pt-BR"; a region with no entry of its own falls back to its primary language.
func Lookup(code string) (Language, bool) {
	t := table()
	canon := canonical(code)
	if l, ok := t[canon]; ok {
		return l, true
	}
	l, ok := t[Primary(canon)]
	return l, ok
}

// Primary returns the primary subtag of a code: "pt-BR" gives "pt".
func Primary(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		return code[:i]
	}
	return code
}

// SamePrimary reports whether a and b share a primary language.
func SamePrimary(a, b string) bool {
	return a != "" && Primary(a) == Primary(b)
}

func canonical(code string) string {
	code = strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	lang, region, ok := strings.Cut(code, "-")
	if !ok {
		return strings.ToLower(code)
	}
	return strings.ToLower(lang) + "-" + strings.ToUpper(region)
}
