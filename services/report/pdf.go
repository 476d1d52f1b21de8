package report

import (
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/Sissypen/CAS-CCS-Attendance-System/core/attendance"
)

// Letter page geometry in points, origin at the bottom left.
const (
	pageWidth    = 612.0
	pageHeight   = 792.0
	pageTop      = 750.0
	pageBottom   = 60.0
	linePitch    = 15.0
	titleGap     = 20.0
	headerGap    = 30.0
	summaryGap   = 20.0
	fontFamily   = "Helvetica"
	fontSize     = 10.0
	marginLeft   = 30.0
	summaryLines = 3
)

var pdfColumns = []struct {
	x     float64
	title string
}{
	{30, "DateTime"},
	{120, "Student ID"},
	{200, "Last"},
	{280, "First"},
	{360, "Year & Section"},
	{480, "Status"},
}

// Text is a string drawn with its baseline at (X, Y), Y measured from the page bottom.
type Text struct {
	X, Y float64
	Text string
}

type Page struct {
	Texts []Text
}

// LayoutPDF plans every page of the report. The column titles only appear on the first page;
// the summary is drawn once, after all records, on a new page if it would not fit.
func LayoutPDF(h Header, res attendance.Result) []Page {
	pages := []Page{{}}
	y := pageTop
	draw := func(x float64, s string) {
		cur := &pages[len(pages)-1]
		cur.Texts = append(cur.Texts, Text{X: x, Y: y, Text: s})
	}
	newPage := func() {
		pages = append(pages, Page{})
		y = pageTop
	}

	draw(marginLeft, h.Title)
	y -= titleGap
	for i, line := range h.Filters() {
		draw(marginLeft, line)
		if i == len(h.Filters())-1 {
			y -= headerGap
		} else {
			y -= linePitch
		}
	}

	for _, col := range pdfColumns {
		draw(col.x, col.title)
	}
	y -= linePitch

	for _, r := range res.Records {
		if y < pageBottom {
			newPage()
		}
		for i, v := range r.Values() {
			draw(pdfColumns[i].x, v)
		}
		y -= linePitch
	}

	y -= summaryGap
	if y-float64(summaryLines-1)*linePitch < pageBottom {
		newPage()
	}
	for _, line := range res.Summary.Lines() {
		draw(marginLeft, line)
		y -= linePitch
	}
	return pages
}

// WritePDF renders the LayoutPDF plan. The font is set again after every page break.
func WritePDF(w io.Writer, h Header, res attendance.Result) error {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle(h.Title, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, page := range LayoutPDF(h, res) {
		doc.AddPage()
		doc.SetFont(fontFamily, "", fontSize)
		for _, t := range page.Texts {
			doc.Text(t.X, pageHeight-t.Y, tr(t.Text))
		}
	}
	return doc.Output(w)
}

// ExportPDF writes res to path, or returns StatusNoData without creating a file.
func ExportPDF(path string, h Header, res attendance.Result) (Status, error) {
	return export(path, res.IsEmpty(), func(w io.Writer) error { return WritePDF(w, h, res) })
}
