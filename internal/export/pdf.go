package export

import (
	"bytes"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/becalab/becamap/internal/models"
)

const (
	pdfMargin     = 25.0
	pdfLineHeight = 5.0
	pdfLabelWidth = 30.0
)

// renderPDF lays out each record as a fixed ordered run of labeled fields
// with a ----- separator between records. Records are sorted by id so the
// document reads AE-01, AE-02, ... regardless of input order.
func renderPDF(records []models.Scholarship) ([]byte, error) {
	sorted := make([]models.Scholarship, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	doc := newPDFDoc()
	for _, s := range sorted {
		doc.addField("CÓDIGO", s.ID)
		doc.addField("PAÍS", s.Country)
		doc.addField("REGIÓN", s.Region)
		doc.addField("BECA", s.Name)
		doc.addField("UNIVERSIDAD", s.University)
		doc.addField("NIVEL", s.Level)
		doc.addField("EXCELENCIA", boolText(s.Excellence))
		doc.addField("MUJERES", boolText(s.WomenOnly))
		doc.addField("ÁREA", s.Area)
		doc.addField("DISCIPLINA", s.Discipline)
		doc.addField("CARRERA", s.Career)
		doc.addField("EXCEPCIONES", s.Exceptions)
		doc.addField("MODALIDAD", s.Modality)
		doc.addField("IDIOMA", s.Language)
		doc.addField("COOPERANTE", s.Cooperator)
		doc.addField("NACIONALIDAD", s.Nationality)
		doc.addField("BENEFICIOS", s.Benefits)
		doc.addField("REQUISITOS", s.Requirements)
		doc.addField("SIGUIENTE", s.NextDeadline)
		doc.addField("ÚLTIMA", s.FinalDeadline)
		doc.addField("ESTADO", s.State)
		doc.addField("ADICIONAL", s.AdditionalInfo)
		doc.addField("URL", s.SourceURL)
		doc.separator()
	}

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type pdfDoc struct {
	pdf        *fpdf.Fpdf
	translate  func(string) string
	y          float64
	pageWidth  float64
	pageHeight float64
}

func newPDFDoc() *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	// Fixed document dates keep identical input producing identical bytes.
	pdf.SetCreationDate(time.Unix(0, 0).UTC())
	pdf.SetModificationDate(time.Unix(0, 0).UTC())
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	return &pdfDoc{
		pdf:        pdf,
		translate:  pdf.UnicodeTranslatorFromDescriptor(""),
		y:          pdfMargin,
		pageWidth:  w,
		pageHeight: h,
	}
}

func (d *pdfDoc) checkPageBreak(height float64) {
	if d.y+height > d.pageHeight-pdfMargin {
		d.pdf.AddPage()
		d.y = pdfMargin
	}
}

func (d *pdfDoc) addField(label, value string) {
	if value == "" || value == "null" || value == "undefined" {
		return
	}

	d.checkPageBreak(pdfLineHeight)
	d.pdf.SetFont("Times", "B", 11)
	d.pdf.Text(pdfMargin, d.y, d.translate(label+":"))

	d.pdf.SetFont("Times", "", 11)
	lines := d.pdf.SplitText(d.translate(value), d.pageWidth-pdfMargin*2-pdfLabelWidth)
	for _, line := range lines {
		d.checkPageBreak(pdfLineHeight)
		d.pdf.Text(pdfMargin+pdfLabelWidth, d.y, line)
		d.y += pdfLineHeight
	}
}

func (d *pdfDoc) separator() {
	d.y += pdfLineHeight
	d.checkPageBreak(pdfLineHeight)
	d.pdf.SetFont("Times", "", 11)
	d.pdf.Text(pdfMargin, d.y, "-----")
	d.y += pdfLineHeight * 2
}

func boolText(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
