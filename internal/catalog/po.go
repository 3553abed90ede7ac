package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chai2010/gettext-go/mo"
	"github.com/chai2010/gettext-go/po"
)

// POFile is the result of parsing a gettext PO file.
type POFile struct {
	// Catalog holds only translated, non-fuzzy entries.
	Catalog Catalog
	Header  po.Header
	// Total counts every live (non-obsolete, non-header) entry.
	Total int
}

// PercentTranslated returns the share of entries with a usable translation, 0..100.
func (f *POFile) PercentTranslated() float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(len(f.Catalog)) / float64(f.Total) * 100
}

// LoadPO parses the PO file at path.
func LoadPO(path string) (*POFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open po: %w", err)
	}
	defer f.Close()

	file, err := ParsePO(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return file, nil
}

// ParsePO reads PO entries from r. Obsolete (#~) entries are ignored and fuzzy
// entries count toward Total but are not translated. Plural entries translate to
// their first form, and only when every form is filled in.
func ParsePO(r io.Reader) (*POFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read po: %w", err)
	}
	if err := checkContinuations(string(data)); err != nil {
		return nil, err
	}

	file, err := po.Load(data)
	if err != nil {
		return nil, fmt.Errorf("parse po: %w", err)
	}

	out := &POFile{Catalog: Catalog{}, Header: file.MimeHeader}
	for _, msg := range file.Messages {
		out.Total++
		if str, ok := translation(msg); ok {
			out.Catalog[msg.MsgId] = str
		}
	}
	return out, nil
}

func translation(msg po.Message) (string, bool) {
	if msg.GetFuzzy() {
		return "", false
	}
	if msg.MsgIdPlural == "" {
		return msg.MsgStr, msg.MsgStr != ""
	}
	if len(msg.MsgStrPlural) == 0 {
		return "", false
	}
	for _, s := range msg.MsgStrPlural {
		if s == "" {
			return "", false
		}
	}
	return msg.MsgStrPlural[0], true
}

// checkContinuations rejects a quoted string line that does not follow a keyword
// or another string line. gettext-go never advances past such a line.
func checkContinuations(data string) error {
	inString := false
	for i, line := range strings.Split(strings.ReplaceAll(data, "\r", ""), "\n") {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), `"`):
			if !inString {
				return fmt.Errorf("parse po: line %d: continuation without keyword", i+1)
			}
		case strings.HasPrefix(line, "msg"):
			inString = true
		default:
			inString = false
		}
	}
	return nil
}

// DefaultContentType is written into the MO header entry.
const DefaultContentType = "text/plain; charset=UTF-8"

// EncodeMO compiles the catalog to a little-endian GNU MO file. Entries are sorted
// by msgid behind the header entry; empty translations are left out.
func EncodeMO(cat Catalog) []byte {
	f := &mo.File{
		MimeHeader: mo.Header{
			MimeVersion:             "1.0",
			ContentType:             DefaultContentType,
			ContentTransferEncoding: "8bit",
		},
	}
	for id, str := range cat {
		f.Messages = append(f.Messages, mo.Message{MsgId: id, MsgStr: str})
	}
	return f.Data()
}

// DecodeMO reads a GNU MO file in either byte order. The header entry is dropped.
func DecodeMO(b []byte) (Catalog, error) {
	f, err := mo.Load(b)
	if err != nil {
		return nil, fmt.Errorf("decode mo: %w", err)
	}
	out := make(Catalog, len(f.Messages))
	for _, msg := range f.Messages {
		if msg.MsgIdPlural != "" && len(msg.MsgStrPlural) > 0 {
			out[msg.MsgId] = msg.MsgStrPlural[0]
			continue
		}
		out[msg.MsgId] = msg.MsgStr
	}
	return out, nil
}
