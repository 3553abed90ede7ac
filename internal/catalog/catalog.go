// Package catalog holds translation catalogs: PO parsing for input and
// GNU MO compilation for the packaged artifact, both through gettext-go.
package catalog

// Catalog maps source strings to translated strings.
type Catalog map[string]string

// Get returns the translation of s, or s itself when the catalog has none.
// A nil catalog translates nothing.
func (c Catalog) Get(s string) string {
	if t, ok := c[s]; ok && t != "" {
		return t
	}
	return s
}
