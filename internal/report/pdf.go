package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin   = 20.0
	contentWidth = 210.0 - 2*pageMargin
	lineHeight   = 6.0
	rowPadding   = 1.5
	fontFamily   = "Times"
)

var columnWidths = []float64{40, 95, 35}

// ExportError reports the page on which rendering stopped. Page 1 is the
// cover; 0 means the failure happened while assembling the file.
type ExportError struct {
	Page int
	Err  error
}

func (e *ExportError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("report: export failed: %v", e.Err)
	}
	return fmt.Sprintf("report: export failed on page %d: %v", e.Page, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// PDFRenderer renders documents as A4 portrait PDF files, one report page
// per PDF page (long narrative text may flow onto extra pages).
type PDFRenderer struct {
	// Now stamps the creation date; defaults to time.Now.
	Now func() time.Time

	beforePage func(page int) error
}

// NewPDFRenderer returns a renderer stamping files with now.
func NewPDFRenderer(now func() time.Time) *PDFRenderer {
	return &PDFRenderer{Now: now}
}

// Render draws doc page by page. Nothing is written to w unless every page
// rendered; context cancellation is checked before each page.
func (r *PDFRenderer) Render(ctx context.Context, doc Document, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(fmt.Sprintf("%s - %s", reportSubtitle, MonthLabel(doc.Month, doc.Year)), true)
	pdf.SetCreator("internlog", true)
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	pdf.SetCreationDate(now())
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if err := r.page(ctx, pdf, 1, func() { drawCover(pdf, tr, doc.Cover) }); err != nil {
		return err
	}
	for _, page := range doc.TaskPages {
		page := page
		if err := r.page(ctx, pdf, page.Number, func() { drawTaskPage(pdf, tr, page) }); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return &ExportError{Err: err}
	}
	if _, err := io.Copy(w, &buf); err != nil {
		return &ExportError{Err: fmt.Errorf("write pdf: %w", err)}
	}
	return nil
}

func (r *PDFRenderer) page(ctx context.Context, pdf *fpdf.Fpdf, number int, draw func()) error {
	if err := ctx.Err(); err != nil {
		return &ExportError{Page: number, Err: err}
	}
	if r.beforePage != nil {
		if err := r.beforePage(number); err != nil {
			return &ExportError{Page: number, Err: err}
		}
	}
	pdf.AddPage()
	draw()
	if err := pdf.Error(); err != nil {
		return &ExportError{Page: number, Err: err}
	}
	return nil
}

func drawCover(pdf *fpdf.Fpdf, tr func(string) string, cover Cover) {
	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(contentWidth, 9, tr(cover.Title), "", 1, "C", false, 0, "")
	drawRule(pdf)
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(contentWidth, 8, tr(cover.Subtitle), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	for _, field := range cover.Fields {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(45, 8, tr(field.Label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.CellFormat(contentWidth-45, 8, tr(field.Value), "B", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	for _, section := range cover.Sections {
		sectionHeading(pdf, tr, section.Title)
		pdf.SetFont(fontFamily, "", 11)
		pdf.MultiCell(contentWidth, lineHeight, tr(section.Body), "", "L", false)
		pdf.Ln(4)
	}

	for _, list := range cover.ListSections {
		sectionHeading(pdf, tr, list.Title)
		pdf.SetFont(fontFamily, "", 11)
		if len(list.Items) == 0 {
			pdf.SetTextColor(153, 153, 153)
			pdf.MultiCell(contentWidth, lineHeight, tr(list.Fallback), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}
		for _, item := range list.Items {
			pdf.MultiCell(contentWidth, lineHeight, tr("- "+item), "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.Ln(16)
	x := pageMargin + contentWidth - 60
	y := pdf.GetY()
	pdf.Line(x, y, x+60, y)
	pdf.SetX(x)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(60, 8, tr(cover.Signature), "", 1, "C", false, 0, "")
}

func drawTaskPage(pdf *fpdf.Fpdf, tr func(string) string, page TaskPage) {
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(contentWidth, 9, tr(page.Heading), "", 1, "C", false, 0, "")
	drawRule(pdf)
	pdf.Ln(4)

	pdf.SetFont(fontFamily, "B", 11)
	pdf.SetFillColor(240, 240, 240)
	for i, column := range TaskColumns {
		pdf.CellFormat(columnWidths[i], 8, tr(column), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 10)
	for _, row := range page.Rows {
		drawRow(pdf, tr, []string{row.Date, row.Description, row.Duration})
	}
}

func drawRow(pdf *fpdf.Fpdf, tr func(string) string, cells []string) {
	lines := 1
	for i, cell := range cells {
		if n := len(pdf.SplitLines([]byte(tr(cell)), columnWidths[i]-2*rowPadding)); n > lines {
			lines = n
		}
	}
	height := float64(lines)*lineHeight + 2*rowPadding

	x, y := pdf.GetXY()
	for i, cell := range cells {
		pdf.Rect(x, y, columnWidths[i], height, "D")
		pdf.SetXY(x+rowPadding, y+rowPadding)
		pdf.MultiCell(columnWidths[i]-2*rowPadding, lineHeight, tr(cell), "", "L", false)
		x += columnWidths[i]
	}
	pdf.SetXY(pageMargin, y+height)
}

func sectionHeading(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(contentWidth, 8, tr(title), "", 1, "L", false, 0, "")
}

func drawRule(pdf *fpdf.Fpdf) {
	y := pdf.GetY() + 1
	center := pageMargin + contentWidth/2
	pdf.SetLineWidth(0.5)
	pdf.Line(center-24, y, center+24, y)
	pdf.SetLineWidth(0.2)
	pdf.Ln(3)
}
