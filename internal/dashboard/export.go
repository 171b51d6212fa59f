package dashboard

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/sirupsen/logrus"
)

func dateSuffix() string {
	return time.Now().Format("2006-01-02")
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportSignalsCSV exports the current signal set as a single-row CSV.
func (s *Service) ExportSignalsCSV() (string, []byte, error) {
	sig := s.store.Signals()
	headers := []string{"brandedSearchVolume", "directTraffic", "inboundMessages", "communityEngagement", "firstPartyData", "attributionScore"}
	rows := [][]string{{
		strconv.FormatFloat(sig.BrandedSearchVolume, 'f', -1, 64),
		strconv.FormatFloat(sig.DirectTraffic, 'f', -1, 64),
		strconv.FormatFloat(sig.InboundMessages, 'f', -1, 64),
		strconv.FormatFloat(sig.CommunityEngagement, 'f', -1, 64),
		strconv.FormatFloat(sig.FirstPartyData, 'f', -1, 64),
		strconv.FormatFloat(sig.AttributionScore, 'f', 1, 64),
	}}
	data, err := writeCSV(headers, rows)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("attribution-signals-%s.csv", dateSuffix()), data, nil
}

// ExportCampaignsCSV exports all logged campaigns. An empty campaign list
// produces a warning and no file.
func (s *Service) ExportCampaignsCSV() (string, []byte, error) {
	campaigns := s.store.Snapshot().Campaigns
	if len(campaigns) == 0 {
		s.notifier.Notify(notifications.LevelWarning, "No campaigns data to export")
		return "", nil, nil
	}

	headers := []string{"name", "brandedSearchDelta", "mentions", "signups", "communityBuzz", "notes"}
	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{
			c.Name,
			c.BrandedSearchDelta,
			strconv.Itoa(c.Mentions),
			strconv.Itoa(c.Signups),
			c.CommunityBuzz,
			c.Notes,
		})
	}
	data, err := writeCSV(headers, rows)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("campaigns-%s.csv", dateSuffix()), data, nil
}

// ExportEchoesCSV exports all logged echoes. An empty echo list produces a
// warning and no file.
func (s *Service) ExportEchoesCSV() (string, []byte, error) {
	echoes := s.store.Snapshot().Echoes
	if len(echoes) == 0 {
		s.notifier.Notify(notifications.LevelWarning, "No echoes data to export")
		return "", nil, nil
	}

	headers := []string{"timestamp", "type", "content", "source"}
	rows := make([][]string, 0, len(echoes))
	for _, e := range echoes {
		rows = append(rows, []string{e.Timestamp, e.Type, e.Content, e.Source})
	}
	data, err := writeCSV(headers, rows)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("echoes-%s.csv", dateSuffix()), data, nil
}

// ExportSummary serializes the attribution summary as pretty-printed JSON.
func (s *Service) ExportSummary() (string, []byte, error) {
	data, err := json.MarshalIndent(s.Summary(), "", "  ")
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("attribution-summary-%s.json", dateSuffix()), data, nil
}

// Backup wraps the full dashboard state in a versioned envelope. When a backup
// store is configured the envelope is mirrored there under the same filename.
func (s *Service) Backup() (string, []byte, error) {
	envelope := models.Backup{
		BackupDate: time.Now(),
		Version:    BackupVersion,
		State:      s.store.Snapshot(),
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return "", nil, err
	}
	filename := fmt.Sprintf("dashboard-backup-%s.json", dateSuffix())

	if s.backupStore != nil {
		if err := s.backupStore.Store(filename, data); err != nil {
			logrus.Warnf("Failed to mirror backup to remote storage: %v", err)
		}
	}

	s.notifier.Notify(notifications.LevelSuccess, "Dashboard state backed up successfully")
	return filename, data, nil
}

// RestoreBackup replaces all current state with the envelope's contents.
// A Backup followed by RestoreBackup and another Backup yields identical
// state payloads.
func (s *Service) RestoreBackup(data []byte) error {
	var envelope struct {
		BackupDate time.Time              `json:"backupDate"`
		Version    string                 `json:"version"`
		State      *models.DashboardState `json:"state"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.notifier.Notify(notifications.LevelError, fmt.Sprintf("Restore failed: %v", err))
		return fmt.Errorf("parsing backup: %w", err)
	}
	if envelope.State == nil {
		s.notifier.Notify(notifications.LevelError, "Restore failed: invalid backup file format")
		return fmt.Errorf("invalid backup file format")
	}

	s.store.Restore(*envelope.State)
	s.notifier.Notify(notifications.LevelSuccess, "Dashboard state restored successfully")
	return nil
}
