package report

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/user/orbit_check_go/internal/analysis"
	"github.com/user/orbit_check_go/internal/parser"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// ReportInput is everything that goes into the PDF report of one run.
type ReportInput struct {
	Dataset      string
	Prefix       string
	Particle     int
	Threshold    float64
	Mismatches   *analysis.MismatchReport
	Trajectories []parser.TrajectoryResult
	Figures      []Figure
}

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // manually tracked Y position for flowing content
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["mono"] = func() {
		s.pdf.SetFont("Courier", "", 9)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellRed"] = func() { // absent trajectory files
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(text), pdfContentWidth)
	s.checkAddPage(math.Max(1, float64(len(lines))) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addTable(headers []string, widthsRel []float64, rows [][]string, cellStyle func(row, col int) string) {
	widths := make([]float64, len(widthsRel))
	for i, rel := range widthsRel {
		widths[i] = rel * pdfContentWidth
	}

	writeHeader := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for i, h := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, h, "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	writeHeader()
	for r, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			writeHeader()
		}
		x := pdfMargin
		for c, cell := range row {
			s.applyStyle(cellStyle(r, c))
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[c], s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += widths[c]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	s.pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(imageName, x, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

// BuildPDFReport writes the run summary, the trajectory load table and all
// figures into a landscape Letter PDF.
func BuildPDFReport(outPath string, in ReportInput) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph(fmt.Sprintf("Orbit Classification Check, ipart=%s", parser.ParticleTag(in.Particle)), "h1", "C")
	styler.addSpacer(3)
	if in.Dataset != "" {
		styler.writeParagraph("Dataset: "+in.Dataset, "normal", "L")
	}
	styler.writeParagraph("Data directory: "+in.Prefix, "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Mismatch threshold: %g", in.Threshold), "normal", "L")
	styler.addSpacer(4)

	styler.writeParagraph("Different Classifications", "h2", "L")
	if in.Mismatches != nil {
		styler.writeParagraph(fmt.Sprintf("%d of %d particles differ.", in.Mismatches.Count, in.Mismatches.Total), "normal", "L")
		if in.Mismatches.Count > 0 {
			styler.writeParagraph(strings.Join(in.Mismatches.Lines()[1:], ""), "mono", "L")
		}
	} else {
		styler.writeParagraph("No classification data.", "normal", "L")
	}
	styler.addSpacer(4)

	if len(in.Trajectories) > 0 {
		styler.writeParagraph("Trajectory Files", "h2", "L")
		styler.addTable(
			[]string{"File", "Kind", "Status", "Rows"},
			[]float64{0.4, 0.2, 0.2, 0.2},
			trajectoryRows(in.Trajectories),
			func(r, c int) string {
				if c == 2 && in.Trajectories[r].Absent() {
					return "tableCellRed"
				}
				return "tableCell"
			},
		)
	}

	imgWidth := pdfContentWidth * 0.7
	imgHeight := imgWidth * float64(FigureHeight/FigureWidth)
	for _, fig := range in.Figures {
		img, err := fig.Render("png")
		if err != nil {
			return err
		}
		styler.newPage()
		styler.addImage(img, fig.Name, imgWidth, imgHeight, fig.Plot.Title.Text)
	}

	return pdf.OutputFileAndClose(outPath)
}

// trajectoryRows is the file table of the report, one row per cut file.
func trajectoryRows(trs []parser.TrajectoryResult) [][]string {
	rows := make([][]string, len(trs))
	for i, tr := range trs {
		rows[i] = []string{filepath.Base(tr.Path), tr.Kind.String(), tr.Status.String(), fmt.Sprint(rowsOf(tr))}
	}
	return rows
}

func rowsOf(tr parser.TrajectoryResult) int {
	if tr.Absent() {
		return 0
	}
	return tr.Table.Rows()
}
