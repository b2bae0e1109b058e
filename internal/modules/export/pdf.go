package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry in points. A4 with a 50pt margin on all sides.
const pdfMargin = 50

// WritePDF renders the document as a PDF and streams it to w. Built-in
// Helvetica keeps text vector without font embedding; non-cp1252 runes
// degrade to their closest translation.
func WritePDF(w io.Writer, doc Document) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(doc.Title, true)
	if doc.Author != "" {
		pdf.SetAuthor(doc.Author, true)
	}
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Helvetica", "B", 20)
		pdf.MultiCell(0, 24, tr(doc.Title), "", "C", false)
		if doc.Subtitle != "" {
			pdf.SetFont("Helvetica", "I", 13)
			pdf.MultiCell(0, 16, tr(doc.Subtitle), "", "C", false)
		}
		if doc.Author != "" {
			pdf.SetFont("Helvetica", "", 12)
			pdf.MultiCell(0, 15, tr(doc.Author), "", "C", false)
		}
		pdf.Ln(20)
	}

	for i, section := range doc.Outline {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 17, tr(fmt.Sprintf("%d. %s", i+1, section.Title)), "", "L", false)
		if section.Description != "" {
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 14, tr(section.Description), "", "L", false)
		}
		pdf.Ln(10)
	}

	for _, chapter := range doc.Chapters {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 16)
		pdf.MultiCell(0, 20, tr(chapter.Title), "", "L", false)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		writeParagraphs(pdf, tr, chapter.Content)
	}

	if doc.Body != "" {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "U", 16)
		pdf.MultiCell(0, 20, tr("Chapter Content"), "", "L", false)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		writeParagraphs(pdf, tr, doc.Body)
	}

	return pdf.Output(w)
}

func writeParagraphs(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pdf.MultiCell(0, 14, tr(para), "", "L", false)
		pdf.Ln(8)
	}
}
