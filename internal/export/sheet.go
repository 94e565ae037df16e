package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

// StandSheet renders a one-page review sheet for a stand. The QR code in
// the top right corner links to standURL.
func StandSheet(stand domain.Stand, partner domain.Partner, standURL string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(standURL, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qrcode.Encode -> %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Stand %d review sheet", stand.ID), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Stand review sheet")
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 10, 35, 35, false, imageOpts, 0, "")

	pdf.SetFont("Arial", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(50, 7, label, "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 7, value, "", "", false)
	}

	line("Partner", partnerLabel(partner))
	line("Event", orDash(stand.EventName))
	line("Booth number", orDash(deref(stand.BoothNumber)))
	line("Construction", orDash(string(stand.BoothConstructionType)))
	line("Status", string(stand.Status))
	if stand.SubmissionDeadline != nil {
		line("Deadline", stand.SubmissionDeadline.Format(dateLayout))
	}
	if stand.RevisionFeedback != "" {
		line("Revision feedback", stand.RevisionFeedback)
	}
	pdf.Ln(4)

	section(pdf, "Requirements")
	line("AV equipment", orDash(stand.AV.EquipmentList))
	line("AV instructions", orDash(stand.AV.SpecialInstructions))
	line("Power voltage", orDash(deref(stand.PowerVoltage)))
	outlets := "-"
	if stand.PowerOutlets != nil {
		outlets = strconv.Itoa(*stand.PowerOutlets)
	}
	line("Power outlets", outlets)
	line("Special", orDash(deref(stand.SpecialRequirements)))
	pdf.Ln(4)

	section(pdf, "Submissions")
	table(pdf, []string{"Kind", "Type", "Source", "Submitted"}, submissionRows(stand))
	pdf.Ln(4)

	section(pdf, "Revision history")
	history := make([][]string, 0, len(stand.RevisionHistory))
	for _, e := range stand.RevisionHistory {
		history = append(history, []string{e.ChangedAt.Format(dateLayout), string(e.Status), e.ChangedBy, e.Feedback})
	}
	table(pdf, []string{"When", "Status", "By", "Feedback"}, history)

	var buf bytes.Buffer
	if err = pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf.Output -> %w", err)
	}

	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
}

func table(pdf *gofpdf.Fpdf, header []string, rows [][]string) {
	widths := []float64{35, 40, 70, 45}

	pdf.SetFont("Arial", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(rows) == 0 {
		pdf.CellFormat(sum(widths), 7, "none", "1", 1, "C", false, 0, "")
		return
	}
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, truncate(cell, int(widths[i]/2)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func submissionRows(stand domain.Stand) [][]string {
	var rows [][]string
	for _, a := range stand.ArtworkSubmissions {
		label := fmt.Sprintf("%s %gx%gm", a.ArtworkType, a.Width, a.Height)
		rows = append(rows, submissionRow("artwork", label, a.SubmissionSource, a.SubmittedAt))
	}
	for _, l := range stand.LogoSubmissions {
		rows = append(rows, submissionRow("logo", "", l.SubmissionSource, l.SubmittedAt))
	}
	for _, r := range stand.RenderSubmissions {
		rows = append(rows, submissionRow("render", "", r.SubmissionSource, r.SubmittedAt))
	}
	for _, d := range stand.TechnicalDrawingSubmissions {
		rows = append(rows, submissionRow("drawing", string(d.DrawingType), d.SubmissionSource, d.SubmittedAt))
	}
	return rows
}

func submissionRow(kind, label string, src domain.SubmissionSource, at time.Time) []string {
	source := src.LinkURL
	if src.Type == domain.SubmissionFile {
		source = src.FileName
		if source == "" {
			source = src.FileURL
		}
	}
	return []string{kind, orDash(label), source, at.Format(dateLayout)}
}

func partnerLabel(p domain.Partner) string {
	parts := []string{}
	for _, s := range []string{p.Name, p.Company, p.Email} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("partner #%d", p.ID)
	}
	return strings.Join(parts, " / ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func sum(v []float64) float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	return total
}
