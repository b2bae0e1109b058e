package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Minimal WordprocessingML package: content types, package relationships
// and a single document part. Word and LibreOffice both accept this
// without a styles part as long as formatting is inlined as run and
// paragraph properties.

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxDocumentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const docxDocumentClose = `</w:body></w:document>`

// WriteDOCX renders the document as a word-processor file and streams it
// to w.
func WriteDOCX(w io.Writer, doc Document) error {
	var body bytes.Buffer

	if doc.Title != "" {
		writeDocxParagraph(&body, doc.Title, docxStyle{Bold: true, Size: 40, Center: true})
		if doc.Subtitle != "" {
			writeDocxParagraph(&body, doc.Subtitle, docxStyle{Italic: true, Size: 26, Center: true})
		}
		if doc.Author != "" {
			writeDocxParagraph(&body, doc.Author, docxStyle{Size: 24, Center: true})
		}
		writeDocxParagraph(&body, "", docxStyle{})
	}

	for i, section := range doc.Outline {
		writeDocxParagraph(&body, fmt.Sprintf("%d. %s", i+1, section.Title), docxStyle{Bold: true, Size: 28})
		if section.Description != "" {
			writeDocxParagraph(&body, section.Description, docxStyle{Size: 22})
		}
	}

	for _, chapter := range doc.Chapters {
		writeDocxPageBreak(&body)
		writeDocxParagraph(&body, chapter.Title, docxStyle{Bold: true, Size: 32})
		writeDocxBodyText(&body, chapter.Content)
	}

	if doc.Body != "" {
		writeDocxPageBreak(&body)
		writeDocxParagraph(&body, "Chapter Content", docxStyle{Bold: true, Size: 32})
		writeDocxBodyText(&body, doc.Body)
	}

	archive := zip.NewWriter(w)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", docxDocumentOpen + body.String() + docxDocumentClose},
	}
	for _, part := range parts {
		f, err := archive.Create(part.name)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(f, part.content); err != nil {
			return err
		}
	}
	return archive.Close()
}

// docxStyle holds inline run formatting. Size is in half-points, the
// native unit of w:sz.
type docxStyle struct {
	Bold   bool
	Italic bool
	Size   int
	Center bool
}

func writeDocxParagraph(buf *bytes.Buffer, text string, style docxStyle) {
	buf.WriteString("<w:p>")
	if style.Center {
		buf.WriteString(`<w:pPr><w:jc w:val="center"/></w:pPr>`)
	}
	if text != "" {
		buf.WriteString("<w:r>")
		writeDocxRunProps(buf, style)
		buf.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(buf, []byte(text))
		buf.WriteString("</w:t></w:r>")
	}
	buf.WriteString("</w:p>")
}

func writeDocxRunProps(buf *bytes.Buffer, style docxStyle) {
	if !style.Bold && !style.Italic && style.Size == 0 {
		return
	}
	buf.WriteString("<w:rPr>")
	if style.Bold {
		buf.WriteString("<w:b/>")
	}
	if style.Italic {
		buf.WriteString("<w:i/>")
	}
	if style.Size > 0 {
		fmt.Fprintf(buf, `<w:sz w:val="%d"/>`, style.Size)
	}
	buf.WriteString("</w:rPr>")
}

func writeDocxBodyText(buf *bytes.Buffer, text string) {
	for _, para := range strings.Split(text, "\n") {
		writeDocxParagraph(buf, strings.TrimSpace(para), docxStyle{Size: 22})
	}
}

func writeDocxPageBreak(buf *bytes.Buffer) {
	buf.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}
