package report

import (
	"fmt"
	"io"
	"time"

	"umahelper/models"

	"gorm.io/gorm"
)

// Summary aggregates the scans recorded in one month.
type Summary struct {
	Month         string
	Total         int64
	Failed        int64
	AvgConfidence float64
	TopEvents     []EventCount
}

// EventCount is how often an event was the best match.
type EventCount struct {
	Name  string
	Count int64
}

// MonthRange parses YYYY-MM into a half-open UTC interval.
func MonthRange(month string) (time.Time, time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// Build computes the month summary, optionally restricted to one source.
func Build(db *gorm.DB, month, source string, top int) (Summary, error) {
	start, end, err := MonthRange(month)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Month: month}
	q := func() *gorm.DB {
		tx := db.Model(&models.Scan{}).Where("created_at >= ? AND created_at < ?", start, end)
		if source != "" {
			tx = tx.Where("source = ?", source)
		}
		return tx
	}
	if err := q().Count(&s.Total).Error; err != nil {
		return s, fmt.Errorf("count: %w", err)
	}
	if err := q().Where("failed = ?", true).Count(&s.Failed).Error; err != nil {
		return s, fmt.Errorf("count failed: %w", err)
	}
	if err := q().Where("failed = ?", false).Select("COALESCE(AVG(confidence), 0)").Scan(&s.AvgConfidence).Error; err != nil {
		return s, fmt.Errorf("avg confidence: %w", err)
	}
	if err := q().Where("top_event <> ''").
		Select("top_event AS name, COUNT(*) AS count").
		Group("top_event").
		Order("count DESC, name").
		Limit(top).
		Scan(&s.TopEvents).Error; err != nil {
		return s, fmt.Errorf("top events: %w", err)
	}
	return s, nil
}

// Write prints s in the plain report layout.
func Write(w io.Writer, s Summary) {
	fmt.Fprintf(w, "Scan report month=%s (UTC):\n", s.Month)
	fmt.Fprintf(w, "  scans=%d failed=%d avg_confidence=%.2f\n", s.Total, s.Failed, s.AvgConfidence)
	for _, e := range s.TopEvents {
		fmt.Fprintf(w, "  %5d  %s\n", e.Count, e.Name)
	}
}

// ListScans prints every scan of the month, oldest first.
func ListScans(db *gorm.DB, w io.Writer, month string) error {
	start, end, err := MonthRange(month)
	if err != nil {
		return err
	}
	var rows []models.Scan
	if err := db.Where("created_at >= ? AND created_at < ?", start, end).Order("id").Find(&rows).Error; err != nil {
		return fmt.Errorf("fetch rows failed: %w", err)
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%d|%s|%s|%s|%.1f|%s|%v|%s\n", r.ID, r.ScanID, r.Source, r.FileName, r.Confidence, r.TopEvent, r.Failed, r.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
