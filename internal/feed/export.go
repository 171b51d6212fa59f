package feed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
)

// csvHeader is the reserved first row of a mentions export.
var csvHeader = []string{"Date", "Platform", "Content", "Sentiment", "Engagement", "Author", "URL"}

// MarshalCSV renders mentions as CSV. Embedded quotes are doubled per RFC
// 4180 (encoding/csv does this for us).
func MarshalCSV(mentions []models.Mention) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, m := range mentions {
		record := []string{
			m.Timestamp.Format("2006-01-02"),
			m.Platform,
			m.Content,
			m.Sentiment,
			strconv.Itoa(m.Engagement),
			m.Author,
			m.URL,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportCSV serializes the currently filtered mention set. An empty filtered
// set produces no file, only a warning.
func (e *Engine) ExportCSV() (filename string, data []byte, err error) {
	mentions := e.Filtered()
	if len(mentions) == 0 {
		e.notifier.Notify(notifications.LevelWarning, "No mentions to export")
		return "", nil, nil
	}

	data, err = MarshalCSV(mentions)
	if err != nil {
		return "", nil, fmt.Errorf("failed to export mentions: %w", err)
	}

	filename = fmt.Sprintf("mentions-export-%s.csv", time.Now().Format("2006-01-02"))
	e.notifier.Notify(notifications.LevelSuccess,
		fmt.Sprintf("Exported %d mentions to CSV", len(mentions)))
	return filename, data, nil
}
