// Package documenttest builds small single-page documents for tests.
package documenttest

import (
	"bytes"
	"fmt"
	"strings"
)

// Layout selects how each line of text is positioned in the content stream.
type Layout int

const (
	// LineFeed sets a leading once and advances with T*.
	LineFeed Layout = iota
	// Offset moves each line down with a relative Td.
	Offset
	// Matrix places each line absolutely with Tm.
	Matrix
)

const (
	fontSize = 11
	leading  = 14
	top      = 760
	left     = 72
)

// PDF returns a one-page PDF that draws lines in Helvetica with the given layout.
func PDF(layout Layout, lines ...string) []byte {
	var content bytes.Buffer
	content.WriteString("BT\n")
	fmt.Fprintf(&content, "/F1 %d Tf\n", fontSize)
	switch layout {
	case LineFeed:
		fmt.Fprintf(&content, "%d TL\n%d %d Td\n", leading, left, top)
		for _, line := range lines {
			fmt.Fprintf(&content, "(%s) Tj T*\n", escape(line))
		}
	case Offset:
		fmt.Fprintf(&content, "%d %d Td\n", left, top)
		for i, line := range lines {
			if i > 0 {
				fmt.Fprintf(&content, "0 -%d Td\n", leading)
			}
			fmt.Fprintf(&content, "(%s) Tj\n", escape(line))
		}
	case Matrix:
		for i, line := range lines {
			fmt.Fprintf(&content, "1 0 0 1 %d %d Tm (%s) Tj\n", left, top-i*leading, escape(line))
		}
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}
