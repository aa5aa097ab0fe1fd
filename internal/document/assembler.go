// Package document lays out the readiness report as a PDF.
package document

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taicc-readiness/internal/model"
	"taicc-readiness/utilities"
)

const (
	Title  = "TAICC AI Readiness Assessment Report"
	Footer = "Report generated by TAICC AI Readiness Assessment Tool"

	fontFamily   = "Arial"
	bottomMargin = 15.0
	lineHeight   = 8.0
)

// Charts holds the PNG images placed in the report. A nil image is left out.
type Charts struct {
	Bar  []byte
	Pie  []byte
	Line []byte
}

// Input is everything the layout needs.
type Input struct {
	Profile     model.UserProfile
	Maturity    model.MaturityLabel
	Report      model.CompiledReport
	Charts      Charts
	GeneratedAt time.Time
}

type Assembler interface {
	Assemble(ctx context.Context, in Input) (*model.ReportDocument, error)
}

type assembler struct {
	logos LogoSource
}

// NewAssembler returns an Assembler. logos may be nil, in which case no
// branding is drawn.
func NewAssembler(logos LogoSource) Assembler {
	return &assembler{logos: logos}
}

// Assemble renders the document in its fixed order: logo, title, watermark,
// user details, maturity, executive summary, bar chart, detailed report,
// pie chart, line chart, footer.
func (a *assembler) Assemble(ctx context.Context, in Input) (*model.ReportDocument, error) {
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	logo, haveLogo := a.fetchLogo(ctx)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(in.GeneratedAt)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	if haveLogo {
		pdf.RegisterImageOptionsReader("logo", gofpdf.ImageOptions{ImageType: logo.Type}, bytes.NewReader(logo.Data))
		if err := pdf.Error(); err != nil {
			utilities.Warn("Report logo could not be decoded, rendering without branding: %v", err)
			pdf.ClearError()
			haveLogo = false
		}
	}
	if haveLogo {
		pdf.ImageOptions("logo", 10, 8, 40, 0, false, gofpdf.ImageOptions{ImageType: logo.Type}, 0, "")
	}

	pdf.SetFont(fontFamily, "B", 16)
	pdf.CellFormat(0, 10, ToWinAnsi(Title), "", 1, "C", false, 0, "")
	pdf.Ln(15)

	if haveLogo {
		pdf.SetAlpha(0.1, "Normal")
		pdf.ImageOptions("logo", 60, 100, 90, 0, false, gofpdf.ImageOptions{ImageType: logo.Type}, 0, "")
		pdf.SetAlpha(1, "Normal")
	}

	pdf.SetFont(fontFamily, "", 12)
	line(pdf, "User Details:")
	for _, f := range in.Profile.Fields() {
		line(pdf, f[0]+": "+f[1])
	}
	pdf.Ln(5)
	line(pdf, "AI Maturity Level: "+string(in.Maturity))
	pdf.Ln(10)

	section(pdf, "Executive Summary", in.Report.ExecutiveSummary)
	chartImage(pdf, "bar", in.Charts.Bar, left, contentW, 10)

	pdf.Ln(20)
	section(pdf, "Detailed Report", in.Report.Detailed)
	chartImage(pdf, "pie", in.Charts.Pie, left, contentW, 10)
	chartImage(pdf, "line", in.Charts.Line, left, contentW, 20)

	pdf.Ln(10)
	pdf.SetFont(fontFamily, "I", 10)
	pdf.CellFormat(0, 10, ToWinAnsi(Footer), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return &model.ReportDocument{
		FileName:    model.ReportFileName(in.Profile.Name),
		Bytes:       buf.Bytes(),
		GeneratedAt: in.GeneratedAt,
	}, nil
}

func (a *assembler) fetchLogo(ctx context.Context) (Image, bool) {
	if a.logos == nil {
		return Image{}, false
	}
	logo, err := a.logos.Logo(ctx)
	if err != nil {
		utilities.Warn("Report logo unavailable, rendering without branding: %v", err)
		return Image{}, false
	}
	return logo, true
}

func line(pdf *gofpdf.Fpdf, text string) {
	pdf.CellFormat(0, lineHeight, ToWinAnsi(text), "", 1, "L", false, 0, "")
}

func section(pdf *gofpdf.Fpdf, heading, body string) {
	pdf.SetFont(fontFamily, "B", 14)
	pdf.CellFormat(0, 10, ToWinAnsi(heading), "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 12)
	pdf.MultiCell(0, lineHeight, ToWinAnsi(body), "", "L", false)
}

func chartImage(pdf *gofpdf.Fpdf, name string, png []byte, x, w, gap float64) {
	if len(png) == 0 {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.Ln(gap)
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x, 0, w, 0, true, opts, 0, "")
}
