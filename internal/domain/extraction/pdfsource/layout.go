package pdfsource

import (
	"math"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

const (
	defaultFontSize = 10
	minColumnGap    = 12.0
)

// page is one statement page, snapshotted at read time.
type page struct {
	tables [][][]string
	text   string
}

func (p page) Tables() [][][]string { return p.tables }
func (p page) Text() string         { return p.text }

// buildPage turns positioned text rows into the two views the extractor
// consumes: newline-joined text lines, and any column grids found on the page.
// Rows read top to bottom.
func buildPage(rows pdf.Rows) page {
	ordered := make([]*pdf.Row, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position > ordered[j].Position })

	var (
		lines    []string
		cellRows [][]string
	)
	for _, row := range ordered {
		cells := clusterRow(row.Content)
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, strings.Join(cells, " "))
		cellRows = append(cellRows, cells)
	}
	return page{
		tables: gridRuns(cellRows),
		text:   strings.Join(lines, "\n"),
	}
}

// clusterRow groups one row's fragments into cells. A horizontal gap wide
// enough to read as a column boundary starts a new cell; narrower gaps are
// word spacing inside the current cell.
func clusterRow(fragments pdf.TextHorizontal) []string {
	sorted := make([]pdf.Text, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.S) != "" {
			sorted = append(sorted, f)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var (
		cells []string
		b     strings.Builder
	)
	end := math.Inf(-1)
	for _, f := range sorted {
		size := f.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		gap := f.X - end
		switch {
		case b.Len() == 0:
			b.WriteString(f.S)
		case gap >= columnGap(size):
			cells = append(cells, strings.TrimSpace(b.String()))
			b.Reset()
			b.WriteString(f.S)
		case gap > size/6:
			b.WriteByte(' ')
			b.WriteString(f.S)
		default:
			b.WriteString(f.S)
		}
		if e := f.X + f.W; e > end {
			end = e
		}
	}
	cells = append(cells, strings.TrimSpace(b.String()))
	return cells
}

// columnGap scales the boundary threshold with the fragment's type size so
// tight footnote rows and large headings both split sensibly.
func columnGap(fontSize float64) float64 {
	if g := fontSize * 1.5; g > minColumnGap {
		return g
	}
	return minColumnGap
}

// gridRuns finds the table-shaped regions of a page: two or more consecutive
// rows that split into the same number of cells, three columns or wider.
// Anything narrower is prose and left to the text pass.
func gridRuns(rows [][]string) [][][]string {
	var tables [][][]string
	for i := 0; i < len(rows); {
		width := len(rows[i])
		j := i + 1
		for j < len(rows) && len(rows[j]) == width {
			j++
		}
		if width >= 3 && j-i >= 2 {
			table := make([][]string, j-i)
			copy(table, rows[i:j])
			tables = append(tables, table)
		}
		i = j
	}
	return tables
}
