package document

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFPages returns the plain text of the first maxPages pages (all pages when maxPages <= 0).
// A page that fails to decode contributes "" instead of failing the document;
// only a structurally invalid file is an error.
func PDFPages(data []byte, maxPages int) (pages []string, err error) {
	r, err := openPDF(data)
	if err != nil {
		return nil, err
	}

	n := r.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, pageText(r, i))
	}
	return pages, nil
}

func openPDF(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("pdf reader: %v", rec)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	return r, nil
}

// pageText rebuilds the page's lines from glyph positions, which covers
// producers that place lines with Td or Tm. Streams that only advance with
// T* and no leading keep every glyph on one baseline, so the operator-based
// plain text wins whenever it recovers more lines.
func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	p := r.Page(num)
	if p.V.IsNull() {
		return ""
	}

	byRow := contentText(p)
	plain, err := p.GetPlainText(nil)
	if err != nil {
		return byRow
	}
	if lineCount(plain) > lineCount(byRow) {
		return plain
	}
	return byRow
}

func contentText(p pdf.Page) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	return rowText(p.Content().Text)
}

// rowText groups glyphs by baseline, top to bottom, and orders each row left
// to right. A horizontal gap between glyphs becomes a single space.
func rowText(glyphs []pdf.Text) string {
	rows := make(map[int64][]pdf.Text)
	for _, g := range glyphs {
		if g.S == "\n" || g.S == "" {
			continue
		}
		y := int64(math.Round(g.Y))
		rows[y] = append(rows[y], g)
	}
	if len(rows) == 0 {
		return ""
	}

	ys := make([]int64, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Slice(ys, func(i, j int) bool { return ys[i] > ys[j] })

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var b strings.Builder
		for i, g := range row {
			if i > 0 {
				prev := row[i-1]
				gap := g.X - (prev.X + prev.W)
				if gap > 0.15*math.Max(g.FontSize, 1) && prev.S != " " && g.S != " " {
					b.WriteByte(' ')
				}
			}
			b.WriteString(g.S)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func lineCount(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
