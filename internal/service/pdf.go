package service

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/go-pdf/fpdf"

	"ommiquiz/internal/domain/models"
	"ommiquiz/internal/domain/services"
)

// pdfRenderer implements the PDFRenderer interface using core PDF fonts.
// Content passes through a cp1252 translator so German umlauts survive.
type pdfRenderer struct {
	logger *slog.Logger
}

// NewPDFRenderer creates a new PDF renderer
func NewPDFRenderer(logger *slog.Logger) services.PDFRenderer {
	return &pdfRenderer{logger: logger}
}

// SpeedQuiz renders a printable worksheet with up to maxCards randomly
// sampled cards: a dotted answer line for single-answer questions,
// checkbox rows for multiple-answer ones.
func (r *pdfRenderer) SpeedQuiz(set *models.FlashcardSet, maxCards int) ([]byte, error) {
	cards := sampleCards(set.Flashcards, maxCards)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	title := set.Title
	if title == "" {
		title = "Speed Quiz"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(127, 140, 141)
	pdf.CellFormat(0, 8, "Speed Quiz Worksheet - 12 Random Questions", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	for i, card := range cards {
		pdf.SetTextColor(44, 62, 80)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Write(6, fmt.Sprintf("Question %d: ", i+1))
		pdf.SetFont("Helvetica", "", 11)
		pdf.Write(6, tr(card.Question))
		pdf.Ln(8)

		if card.Type == models.CardTypeMultiple || len(card.Answers) > 0 {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(52, 73, 94)
			for _, answer := range card.Answers {
				pdf.SetX(28)
				pdf.CellFormat(6, 6, "", "1", 0, "", false, 0, "")
				pdf.CellFormat(0, 6, " "+tr(answer), "", 1, "L", false, 0, "")
				pdf.Ln(1)
			}
		} else {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(52, 73, 94)
			pdf.SetX(28)
			pdf.MultiCell(0, 6, "Answer: "+strings.Repeat(".", 120), "", "L", false)
		}
		pdf.Ln(6)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(149, 165, 166)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated by Ommiquiz | %d questions", len(cards)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render speed quiz pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// LearningHistory renders the learning report: summary statistics then
// one row per session.
func (r *pdfRenderer) LearningHistory(report *models.LearningReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(102, 126, 234)
	pdf.CellFormat(0, 10, "Quiz History Report", "", 1, "C", false, 0, "")

	userInfo := report.UserEmail
	if report.UserName != "" {
		userInfo = fmt.Sprintf("%s (%s)", report.UserName, report.UserEmail)
	}
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(127, 140, 141)
	pdf.CellFormat(0, 7, tr(userInfo), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, fmt.Sprintf("Last %d Days", report.ReportPeriodDays), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 9, "Summary Statistics", "", 1, "L", false, 0, "")

	summary := report.Summary
	rows := [][2]string{
		{"Total Quiz Sessions:", fmt.Sprintf("%d", summary.TotalSessions)},
		{"Total Cards Reviewed:", fmt.Sprintf("%d", summary.TotalCardsReviewed)},
		{"Cards Learned (Box 1):", boxCount(summary.TotalLearned, summary.TotalCardsReviewed)},
		{"Cards Uncertain (Box 2):", boxCount(summary.TotalUncertain, summary.TotalCardsReviewed)},
		{"Cards Not Learned (Box 3):", boxCount(summary.TotalNotLearned, summary.TotalCardsReviewed)},
		{"Total Study Time:", formatDuration(summary.TotalDurationSeconds)},
		{"Average Session Duration:", formatDuration(int(summary.AverageSessionDuration))},
	}
	pdf.SetDrawColor(224, 224, 224)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 8, row[0], "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(70, 8, row[1], "B", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 9, "Session History", "", 1, "L", false, 0, "")

	if len(report.Sessions) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, "No quiz sessions found in this period.", "", 1, "L", false, 0, "")
	} else {
		r.sessionTable(pdf, tr, report.Sessions)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(149, 165, 166)
	footer := fmt.Sprintf("Generated by Ommiquiz on %s", report.GeneratedAt.Format("2006-01-02 at 15:04"))
	pdf.CellFormat(0, 6, footer, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render learning history pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) sessionTable(pdf *fpdf.Fpdf, tr func(string) string, sessions []models.QuizSession) {
	widths := []float64{24, 16, 58, 14, 34, 24}
	headers := []string{"Date", "Time", "Flashcard Set", "Cards", "Score", "Duration"}

	pdf.SetFillColor(102, 126, 234)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(44, 62, 80)
	for i, session := range sessions {
		fill := i%2 == 1
		pdf.SetFillColor(248, 249, 250)

		title := session.FlashcardTitle
		if title == "" {
			title = "Unknown"
		}
		if len(title) > 38 {
			title = title[:35] + "..."
		}

		score := fmt.Sprintf("%d/%d (%.0f%%)",
			session.BoxDistribution.Box1,
			session.CardsReviewed,
			scorePercentage(session.BoxDistribution))

		duration := "N/A"
		if session.DurationSeconds > 0 {
			duration = formatDuration(session.DurationSeconds)
		}

		pdf.CellFormat(widths[0], 8, session.CompletedAt.Format("2006-01-02"), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[1], 8, session.CompletedAt.Format("15:04"), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[2], 8, tr(title), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[3], 8, fmt.Sprintf("%d", session.CardsReviewed), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[4], 8, score, "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[5], 8, duration, "1", 1, "C", fill, 0, "")
	}
}

// sampleCards picks up to count cards without replacement; sets at or
// under the limit are returned whole, in order.
func sampleCards(cards []models.Card, count int) []models.Card {
	if len(cards) <= count {
		return slices.Clone(cards)
	}
	shuffled := slices.Clone(cards)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:count]
}

// boxCount renders "N (P%)" against the total cards reviewed.
func boxCount(count, total int) string {
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%d (%.1f%%)", count, float64(count)/float64(total)*100)
}

// scorePercentage is the learned share of one session's reviewed cards.
func scorePercentage(dist models.BoxDistribution) float64 {
	total := dist.Box1 + dist.Box2 + dist.Box3
	if total == 0 {
		return 0
	}
	return float64(dist.Box1) / float64(total) * 100
}

// formatDuration renders seconds as 45s, 3m 20s, or 1h 5m.
func formatDuration(seconds int) string {
	switch {
	case seconds <= 0:
		return "N/A"
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
}
