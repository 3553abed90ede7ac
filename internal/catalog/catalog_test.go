package catalog

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePO = `# Spanish translation
msgid ""
msgstr ""
"Project-Id-Version: ka-lite\n"
"Content-Type: text/plain; charset=UTF-8\n"

#: topics.py:1
msgid "Millions"
msgstr "Millones"

msgid "Heart failure"
msgstr ""

#, fuzzy
msgid "Fractions"
msgstr "Fracciones"

msgid ""
"Long "
"title"
msgstr "Titulo "
"largo"

msgctxt "menu"
msgid "Home"
msgstr "Inicio"

msgid "%d video"
msgid_plural "%d videos"
msgstr[0] "%d vídeo"
msgstr[1] "%d vídeos"

msgid "%d exercise"
msgid_plural "%d exercises"
msgstr[0] "%d ejercicio"
msgstr[1] ""

#~ msgid "Obsolete"
#~ msgstr "Obsoleto"
`

func TestCatalog_GetFallsBackToSource(t *testing.T) {
	cat := Catalog{"Millions": "Millones", "Empty": ""}
	assert.Equal(t, "Millones", cat.Get("Millions"))
	assert.Equal(t, "wala ito sa catalog", cat.Get("wala ito sa catalog"))
	assert.Equal(t, "Empty", cat.Get("Empty"))

	var nilCat Catalog
	assert.Equal(t, "x", nilCat.Get("x"))
}

func TestParsePO(t *testing.T) {
	po, err := ParsePO(strings.NewReader(samplePO))
	require.NoError(t, err)

	assert.Equal(t, "Millones", po.Catalog["Millions"])
	assert.Equal(t, "Titulo largo", po.Catalog["Long title"])
	assert.Equal(t, "Inicio", po.Catalog["Home"])
	assert.Equal(t, "%d vídeo", po.Catalog["%d video"])

	assert.NotContains(t, po.Catalog, "Heart failure", "empty msgstr is untranslated")
	assert.NotContains(t, po.Catalog, "Fractions", "fuzzy entries are untranslated")
	assert.NotContains(t, po.Catalog, "%d exercise", "incomplete plurals are untranslated")
	assert.NotContains(t, po.Catalog, "Obsolete")

	assert.Equal(t, "ka-lite", po.Header.ProjectIdVersion)
	assert.Equal(t, 7, po.Total)
	assert.InDelta(t, 4.0/7.0*100, po.PercentTranslated(), 0.001)
}

func TestParsePO_RejectsGarbage(t *testing.T) {
	_, err := ParsePO(strings.NewReader("msgid \"a\"\nmsgfoo \"b\"\n"))
	assert.Error(t, err)

	_, err = ParsePO(strings.NewReader("\"orphan continuation\"\n"))
	assert.Error(t, err)
}

func TestLoadPO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "es.po")
	require.NoError(t, os.WriteFile(path, []byte(samplePO), 0o644))

	po, err := LoadPO(path)
	require.NoError(t, err)
	assert.Equal(t, "Millones", po.Catalog.Get("Millions"))

	_, err = LoadPO(filepath.Join(t.TempDir(), "missing.po"))
	assert.Error(t, err)
}

func TestPercentTranslated_EmptyFile(t *testing.T) {
	po, err := ParsePO(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, po.PercentTranslated())
}

func TestParsePO_PluralWithoutForms(t *testing.T) {
	po, err := ParsePO(strings.NewReader("msgid \"%d item\"\nmsgid_plural \"%d items\"\nmsgstr \"\"\n"))
	require.NoError(t, err)
	assert.Empty(t, po.Catalog)
	assert.Equal(t, 1, po.Total)
}

func TestEncodeMO_RoundTrip(t *testing.T) {
	cat := Catalog{"msgid": "msgstr", "Millions": "Millones", "ñ": "enie"}

	b := EncodeMO(cat)
	assert.Equal(t, uint32(0x950412de), binary.LittleEndian.Uint32(b))
	assert.Equal(t, uint32(len(cat)+1), binary.LittleEndian.Uint32(b[8:]), "header entry is added")
	assert.Contains(t, string(b), DefaultContentType)

	decoded, err := DecodeMO(b)
	require.NoError(t, err)
	assert.Equal(t, cat, decoded)
}

func TestDecodeMO_Errors(t *testing.T) {
	_, err := DecodeMO([]byte{1, 2, 3})
	assert.Error(t, err)

	_, err = DecodeMO(make([]byte, 28))
	assert.Error(t, err)
}
