package dashboard

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/stretchr/testify/assert"
)

func TestService_BackupRestoreRoundTrip(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SetBrand(models.BrandConfig{Name: "BrandX", Website: "https://brandx.io"})
	assert.NoError(t, store.AddCampaign(models.Campaign{Name: "Launch"}))

	filename, data, err := svc.Backup()
	assert.NoError(t, err)
	assert.Equal(t, "dashboard-backup-"+time.Now().Format("2006-01-02")+".json", filename)

	// Disturb the state, then restore.
	store.Clear()
	assert.NoError(t, store.SetSignal("directTraffic", 1))
	assert.NoError(t, svc.RestoreBackup(data))

	// A second backup must carry an identical state payload.
	_, again, err := svc.Backup()
	assert.NoError(t, err)

	var first, second models.Backup
	assert.NoError(t, json.Unmarshal(data, &first))
	assert.NoError(t, json.Unmarshal(again, &second))

	firstState, err := json.Marshal(first.State)
	assert.NoError(t, err)
	secondState, err := json.Marshal(second.State)
	assert.NoError(t, err)
	assert.Equal(t, string(firstState), string(secondState))
}

func TestService_Backup_MirrorsToBackupStorage(t *testing.T) {
	svc, _, _ := newTestService(t)
	mirror := newMemStore()
	svc.UseBackupStorage(mirror)

	filename, data, err := svc.Backup()
	assert.NoError(t, err)
	assert.Equal(t, data, mirror.data[filename])
}

func TestService_RestoreBackup_RejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "Not JSON", payload: `{broken`},
		{name: "Missing state", payload: `{"backupDate":"2026-01-01T00:00:00Z","version":"1.0"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, notifier := newTestService(t)
			before := store.Snapshot()

			err := svc.RestoreBackup([]byte(tt.payload))

			assert.Error(t, err)
			assert.Equal(t, before, store.Snapshot(), "failed restore leaves state untouched")
			assert.Contains(t, notifier.levels, notifications.LevelError)
		})
	}
}

func TestService_ExportSignalsCSV(t *testing.T) {
	svc, store, _ := newTestService(t)
	assert.NoError(t, store.SetSignal("directTraffic", 1000))

	filename, data, err := svc.ExportSignalsCSV()
	assert.NoError(t, err)
	assert.Equal(t, "attribution-signals-"+time.Now().Format("2006-01-02")+".csv", filename)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, []string{"brandedSearchVolume", "directTraffic", "inboundMessages", "communityEngagement", "firstPartyData", "attributionScore"}, records[0])
	assert.Equal(t, "1000", records[1][1])
}

func TestService_ExportCampaignsCSV(t *testing.T) {
	svc, store, _ := newTestService(t)
	assert.NoError(t, store.AddCampaign(models.Campaign{
		Name:               "Podcast tour",
		BrandedSearchDelta: "+12%",
		Mentions:           40,
		Signups:            7,
		CommunityBuzz:      "high",
		Notes:              "Q3 push",
	}))

	_, data, err := svc.ExportCampaignsCSV()
	assert.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, []string{"name", "brandedSearchDelta", "mentions", "signups", "communityBuzz", "notes"}, records[0])

	last := records[len(records)-1]
	assert.Equal(t, "Podcast tour", last[0])
	assert.Equal(t, "40", last[2])
}

func TestService_ExportCampaignsCSV_EmptyWarnsOnly(t *testing.T) {
	svc, store, notifier := newTestService(t)
	store.Restore(models.DashboardState{})

	filename, data, err := svc.ExportCampaignsCSV()

	assert.NoError(t, err)
	assert.Empty(t, filename)
	assert.Nil(t, data)
	assert.Contains(t, notifier.messages, "No campaigns data to export")
}

func TestService_ExportEchoesCSV_EmptyWarnsOnly(t *testing.T) {
	svc, store, notifier := newTestService(t)
	store.Restore(models.DashboardState{})

	_, data, err := svc.ExportEchoesCSV()

	assert.NoError(t, err)
	assert.Nil(t, data)
	assert.Contains(t, notifier.messages, "No echoes data to export")
}

func TestService_ExportSummary(t *testing.T) {
	svc, store, _ := newTestService(t)
	store.SetBrand(models.BrandConfig{Name: "BrandX"})

	filename, data, err := svc.ExportSummary()
	assert.NoError(t, err)
	assert.Contains(t, filename, "attribution-summary-")

	var summary models.AttributionSummary
	assert.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "BrandX", summary.Brand)
	assert.Equal(t, BackupVersion, summary.Version)
}
