package report

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

const (
	columnGap      = 2
	minColumnWidth = 6
	ellipsis       = "…"
)

// TableView is the interactive table: six columns plus an always visible summary block.
type TableView struct {
	maxWidth int // 0 means unlimited
	rows     [][]string
	summary  attendance.Summary
}

// NewTableView fits the table to maxWidth terminal cells; 0 disables truncation.
func NewTableView(maxWidth int) *TableView {
	return &TableView{maxWidth: maxWidth}
}

// TerminalWidth returns the width of f when it is a terminal, else 0.
func TerminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// Render replaces every displayed row and the summary.
func (tv *TableView) Render(res attendance.Result) {
	tv.rows = make([][]string, 0, len(res.Records))
	for _, r := range res.Records {
		tv.rows = append(tv.rows, r.Values())
	}
	tv.summary = res.Summary
}

func (tv *TableView) columnWidths(titles []string) []int {
	widths := make([]int, len(titles))
	for i, t := range titles {
		widths[i] = runewidth.StringWidth(t)
	}
	for _, row := range tv.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	if tv.maxWidth <= 0 {
		return widths
	}

	// shrink the widest column until the table fits
	for total(widths) > tv.maxWidth {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func total(widths []int) int {
	sum := columnGap * (len(widths) - 1)
	for _, w := range widths {
		sum += w
	}
	return sum
}

func writeLine(bw *bufio.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		cell = runewidth.Truncate(cell, widths[i], ellipsis)
		if i < len(cells)-1 {
			cell = runewidth.FillRight(cell, widths[i])
		}
		parts[i] = cell
	}
	_, _ = bw.WriteString(strings.Join(parts, strings.Repeat(" ", columnGap)) + "\n")
}

// WriteTo prints the title row, a rule, every row and the summary block.
func (tv *TableView) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	titles := attendance.ColumnTitles()
	widths := tv.columnWidths(titles)
	writeLine(bw, titles, widths)
	rule := make([]string, len(widths))
	for i, wd := range widths {
		rule[i] = strings.Repeat("-", wd)
	}
	writeLine(bw, rule, widths)
	for _, row := range tv.rows {
		writeLine(bw, row, widths)
	}

	_, _ = bw.WriteString("\n")
	for _, line := range tv.summary.Lines() {
		_, _ = bw.WriteString(line + "\n")
	}
	err := bw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
