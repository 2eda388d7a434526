package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// XLIFF extracts bilingual units from XLIFF 1.2 (<trans-unit>) and
// XLIFF 2.x (<unit><segment>) files. Each unit keeps its existing target.
type XLIFF struct{}

func (x *XLIFF) Extract(ctx context.Context, r io.Reader) (*Result, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing xliff: %w", err)
	}
	root := xmlquery.FindOne(doc, "//xliff")
	if root == nil {
		return nil, fmt.Errorf("parsing xliff: missing <xliff> root element")
	}

	nodes := xmlquery.Find(root, "//trans-unit")
	if len(nodes) == 0 {
		nodes = xmlquery.Find(root, "//unit/segment")
	}

	res := &Result{}
	if file := xmlquery.FindOne(root, "file"); file != nil {
		res.Title = file.SelectAttr("original")
	}
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := xmlquery.FindOne(n, "source")
		if src == nil {
			continue
		}
		text := strings.TrimSpace(src.InnerText())
		if text == "" {
			continue
		}
		u := Unit{Source: text}
		if tgt := xmlquery.FindOne(n, "target"); tgt != nil {
			if t := strings.TrimSpace(tgt.InnerText()); t != "" {
				u.Target = &t
			}
		}
		res.Units = append(res.Units, u)
	}
	return res, nil
}
