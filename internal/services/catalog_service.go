package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"devcamper/internal/domain/models"
	"devcamper/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"
)

// CatalogService renders a bootcamp's course catalog as a PDF.
type CatalogService struct {
	Bootcamps BootcampStore
	Courses   CourseStore
	Log       logrus.FieldLogger
}

func (s CatalogService) Generate(ctx context.Context, bootcampID int64) ([]byte, string, error) {
	b, err := s.Bootcamps.FindByID(ctx, bootcampID)
	if err != nil {
		return nil, "", err
	}
	courses, err := s.Courses.ListByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(ctx, s.Log, "catalog", "generate", fmt.Sprintf("bootcamp_id=%d courses=%d", b.ID, len(courses)))
	return buildCatalogPDF(b, courses)
}

func buildCatalogPDF(b models.Bootcamp, courses []models.Course) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(b.Name+" course catalog", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, safe(b.Name, "Bootcamp"))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, safe(b.Description, "-"), "", "", false)
	pdf.Ln(4)

	lines := []string{
		fmt.Sprintf("Careers        : %s", safe(strings.Join(b.Careers, ", "), "-")),
		fmt.Sprintf("Address        : %s", safe(b.Address, "-")),
		fmt.Sprintf("Website        : %s", safe(b.Website, "-")),
		fmt.Sprintf("Average cost   : %s", averageText(b.AverageCost, utils.FormatUSD)),
		fmt.Sprintf("Average rating : %s", averageText(b.AverageRating, func(v float64) string { return utils.FormatMoney(v) + " / 10" })),
		fmt.Sprintf("Listed since   : %s", utils.FormatDate(b.CreatedAt)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Courses")
	pdf.Ln(10)

	if len(courses) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.Cell(0, 7, "No courses published yet.")
		pdf.Ln(7)
	}
	for i, c := range courses {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, fmt.Sprintf("%d) %s", i+1, safe(c.Title, "-")))
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, fmt.Sprintf("%s weeks | %s | minimum skill: %s | scholarship: %s | added %s",
			safe(c.Weeks, "-"), utils.FormatUSD(c.Tuition), safe(c.MinimumSkill, "-"), yesNo(c.ScholarshipAvailable), utils.FormatDate(c.CreatedAt)))
		pdf.Ln(6)
		pdf.MultiCell(0, 6, safe(c.Description, "-"), "", "", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("CATALOG_%d_%s.pdf", b.ID, safeFilenamePart(b.Slug))
	return buf.Bytes(), filename, nil
}

func averageText(v *float64, format func(float64) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
