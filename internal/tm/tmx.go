package tm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Pair is one source/target translation unit read from a TMX file.
type Pair struct {
	SourceText string
	TargetText string
	Context    string   // from <note>, may be empty
	Confidence *float64 // from <prop type="x-confidence">, nil if absent
}

// ParseTMX reads translation units from a TMX document and returns the
// pairs that have both a sourceLang and a targetLang variant. Language tags
// match case-insensitively, and a region-qualified tag ("en-US") matches
// its primary language ("en").
func ParseTMX(r io.Reader, sourceLang, targetLang string) ([]Pair, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing tmx: %w", err)
	}
	if xmlquery.FindOne(doc, "//tmx") == nil {
		return nil, fmt.Errorf("parsing tmx: missing <tmx> root element")
	}

	var pairs []Pair
	for _, tu := range xmlquery.Find(doc, "//tu") {
		var src, tgt string
		var haveSrc, haveTgt bool
		for _, tuv := range xmlquery.Find(tu, "tuv") {
			seg := xmlquery.FindOne(tuv, "seg")
			if seg == nil {
				continue
			}
			lang := langAttr(tuv)
			switch {
			case !haveSrc && langMatches(lang, sourceLang):
				src, haveSrc = strings.TrimSpace(seg.InnerText()), true
			case !haveTgt && langMatches(lang, targetLang):
				tgt, haveTgt = strings.TrimSpace(seg.InnerText()), true
			}
		}
		if !haveSrc || !haveTgt || src == "" || tgt == "" {
			continue
		}

		p := Pair{SourceText: src, TargetText: tgt}
		if note := xmlquery.FindOne(tu, "note"); note != nil {
			p.Context = strings.TrimSpace(note.InnerText())
		}
		for _, prop := range xmlquery.Find(tu, "prop") {
			if prop.SelectAttr("type") != "x-confidence" {
				continue
			}
			c, err := strconv.ParseFloat(strings.TrimSpace(prop.InnerText()), 64)
			if err != nil || c < 0 || c > 1 {
				return nil, fmt.Errorf("parsing tmx: bad x-confidence %q", prop.InnerText())
			}
			p.Confidence = &c
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// langAttr returns the xml:lang (TMX 1.4) or lang (TMX 1.1) attribute.
func langAttr(n *xmlquery.Node) string {
	for _, a := range n.Attr {
		if a.Name.Local == "lang" {
			return a.Value
		}
	}
	return ""
}

func langMatches(tag, want string) bool {
	tag, want = strings.ToLower(tag), strings.ToLower(want)
	return tag == want || strings.HasPrefix(tag, want+"-")
}
