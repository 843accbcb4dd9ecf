// Package export turns a single-shot response into a downloadable document.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"inferdesk/internal/domain"
	"inferdesk/internal/infra/config"
)

// Page geometry in millimetres on A4 portrait.
const (
	marginLeft   = 10.0
	marginTop    = 10.0
	marginBottom = 10.0
	textWidth    = 180.0
	lineFactor   = 1.15 // line height as a multiple of the font size
	ptToMM       = 25.4 / 72
)

// filenamePrefix and slugLen shape the document name.
const (
	filenamePrefix = "literature_review_"
	slugLen        = 20
)

// Document is an exported file held in memory.
type Document struct {
	Name  string
	Data  []byte
	Pages int
}

// utf8Family names the embedded font registered from ExportConfig.FontFile.
const utf8Family = "body"

// PDFExporter renders text to a paginated PDF.
type PDFExporter struct {
	fontFamily string
	fontFile   string
	fontSize   float64
	now        func() time.Time
}

// NewPDFExporter creates an exporter from export config.
func NewPDFExporter(cfg config.ExportConfig) *PDFExporter {
	family := cfg.FontFamily
	if family == "" {
		family = "Helvetica"
	}
	size := cfg.FontSize
	if size <= 0 {
		size = 11
	}
	return &PDFExporter{fontFamily: family, fontFile: cfg.FontFile, fontSize: size, now: time.Now}
}

// Export lays out fullText wrapped to the page width, starting a new page
// whenever the next line would cross the bottom margin. It writes nothing
// to disk.
//
// With a core font the text is translated to cp1252 and runes outside that
// code page are dropped. Set ExportConfig.FontFile to a UTF-8 TrueType font
// to keep them.
func (e *PDFExporter) Export(fullText, nameHint string) (Document, error) {
	const op = "PDFExporter.Export"
	if strings.TrimSpace(fullText) == "" {
		return Document{}, domain.NewDomainError(op, domain.ErrExport, "nothing to export")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(e.now())
	pdf.SetTitle(strings.TrimSpace(nameHint), true)
	pdf.SetCreator("inferdesk", true)
	tr, err := e.setFont(pdf)
	if err != nil {
		return Document{}, domain.NewDomainError(op, domain.ErrExport, err.Error())
	}
	_, pageH := pdf.GetPageSize()
	lineH := e.fontSize * ptToMM * lineFactor

	pdf.AddPage()
	y := marginTop
	for _, line := range wrap(pdf, tr, fullText) {
		if y > pageH-marginBottom {
			pdf.AddPage()
			y = marginTop
		}
		if line != "" {
			pdf.Text(marginLeft, y, line)
		}
		y += lineH
	}

	pages := pdf.PageCount()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, domain.NewDomainError(op, domain.ErrExport, err.Error())
	}
	return Document{Name: Filename(nameHint), Data: buf.Bytes(), Pages: pages}, nil
}

// setFont selects the body font and returns the matching text translator.
func (e *PDFExporter) setFont(pdf *fpdf.Fpdf) (func(string) string, error) {
	if e.fontFile == "" {
		pdf.SetFont(e.fontFamily, "", e.fontSize)
		return pdf.UnicodeTranslatorFromDescriptor(""), pdf.Error()
	}
	data, err := os.ReadFile(e.fontFile)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	pdf.AddUTF8FontFromBytes(utf8Family, "", data)
	pdf.SetFont(utf8Family, "", e.fontSize)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load font %s: %w", filepath.Base(e.fontFile), err)
	}
	return func(s string) string { return s }, nil
}

// wrap splits text into paragraphs and each paragraph into lines that fit
// textWidth in the current font. Blank paragraphs become blank lines.
func wrap(pdf *fpdf.Fpdf, tr func(string) string, text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimRight(tr(para), " \t")
		if para == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, pdf.SplitText(para, textWidth)...)
	}
	return lines
}

// Filename derives the document name from the first 20 characters of
// hint. Characters outside [A-Za-z0-9_-] become underscores.
func Filename(hint string) string {
	runes := []rune(strings.TrimSpace(hint))
	if len(runes) > slugLen {
		runes = runes[:slugLen]
	}
	var b strings.Builder
	for _, r := range runes {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	slug := b.String()
	if strings.Trim(slug, "_") == "" {
		slug = "untitled"
	}
	return filenamePrefix + slug + ".pdf"
}

// Save writes doc into dir and returns the full path.
func Save(dir string, doc Document) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create export dir: %v", domain.ErrExport, err)
	}
	path := filepath.Join(dir, doc.Name)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", domain.ErrExport, doc.Name, err)
	}
	return path, nil
}
