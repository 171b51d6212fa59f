package state

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/notifications"
	"github.com/brandsignal/attribution-dashboard/internal/scoring"
	"github.com/brandsignal/attribution-dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// EventSink receives the side effects of every state mutation: a user-facing
// notification surface and render hooks. Absent collaborators are a NopSink,
// never a nil check at the call site.
type EventSink interface {
	Notify(level notifications.Level, message string)
	Render()
	RenderFeed()
}

// NopSink ignores all events.
type NopSink struct{}

func (NopSink) Notify(notifications.Level, string) {}
func (NopSink) Render()                            {}
func (NopSink) RenderFeed()                        {}

// Store owns the single DashboardState instance. All mutations go through
// typed actions which run the same pipeline: mutate, recompute the derived
// score, persist, render, notify. Reads get a snapshot; writers replace
// slices rather than mutating them in place, so snapshots stay stable.
type Store struct {
	mu      sync.RWMutex
	state   models.DashboardState
	storage storage.Interface
	key     string
	sink    EventSink
}

// NewStore creates a store seeded with defaults. Call Load to hydrate it
// from persisted state.
func NewStore(st storage.Interface, key string, sink EventSink) *Store {
	if sink == nil {
		sink = NopSink{}
	}
	return &Store{
		state:   Defaults(),
		storage: st,
		key:     key,
		sink:    sink,
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Signals returns the current signal set.
func (s *Store) Signals() models.SignalSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Signals
}

// Mentions returns a copy of the live feed mention collection.
func (s *Store) Mentions() []models.Mention {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Mention(nil), s.state.LiveFeed.Mentions...)
}

// Load hydrates the store from persisted state, merging over defaults:
// list-valued fields replace wholesale when the stored value is a list,
// record-valued fields merge key by key, scalars overwrite. A corrupted
// list field is reset to its default, the repaired state persisted, and
// the user notified; the rest of the blob survives.
func (s *Store) Load() {
	data, err := s.storage.Retrieve(s.key)
	if err == storage.ErrNotFound {
		logrus.Debug("No persisted state found, keeping defaults")
		return
	}
	if err != nil {
		s.sink.Notify(notifications.LevelWarning, "Failed to load saved data")
		logrus.Errorf("Failed to read persisted state: %v", err)
		return
	}

	s.mu.Lock()
	repaired, err := mergeState(&s.state, data)
	if err != nil {
		s.mu.Unlock()
		s.sink.Notify(notifications.LevelWarning, "Failed to load saved data")
		logrus.Errorf("Failed to parse persisted state: %v", err)
		return
	}
	s.state.Signals.AttributionScore = scoring.Calculate(s.state.Signals)
	s.mu.Unlock()

	if len(repaired) > 0 {
		logrus.Warnf("Repaired corrupted state fields: %s", strings.Join(repaired, ", "))
		s.Save()
		s.sink.Notify(notifications.LevelSuccess, "Fixed corrupted data - dashboard restored to working state")
	}
}

// mergeState merges a stored JSON blob into the default-initialized state.
// Returns the names of list fields that had to be reset.
func mergeState(st *models.DashboardState, data []byte) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	// Record-valued fields: decode over the default so omitted keys keep
	// their default values.
	recordField(raw, "signals", &st.Signals)
	recordField(raw, "brandConfig", &st.Brand)
	recordField(raw, "setupWizard", &st.SetupWizard)
	recordField(raw, "settings", &st.Settings)
	recordField(raw, "apiKeys", &st.APIKeys)
	recordField(raw, "apiStatus", &st.APIStatus)
	recordField(raw, "mentionsData", &st.MentionsData)

	var repaired []string

	// The live feed is a record holding a list; a corrupted mentions list
	// fails the whole decode, in which case the default feed is kept.
	if r, ok := raw["liveFeed"]; ok {
		merged := st.LiveFeed
		if err := json.Unmarshal(r, &merged); err != nil {
			repaired = append(repaired, "liveFeed")
		} else {
			if merged.Mentions == nil {
				merged.Mentions = []models.Mention{}
			}
			st.LiveFeed = merged
		}
	}

	// List-valued fields replace wholesale, but only with a list.
	repaired = appendIfRepaired(repaired, listField(raw, "campaigns", &st.Campaigns))
	repaired = appendIfRepaired(repaired, listField(raw, "echoes", &st.Echoes))
	repaired = appendIfRepaired(repaired, listField(raw, "prompts", &st.Prompts))

	return repaired, nil
}

func recordField(raw map[string]json.RawMessage, key string, dst interface{}) {
	if r, ok := raw[key]; ok {
		if err := json.Unmarshal(r, dst); err != nil {
			logrus.Warnf("Ignoring malformed %q in persisted state: %v", key, err)
		}
	}
}

// listField replaces *dst with the stored list. Returns the field name when
// the stored value was present but not a list.
func listField[T any](raw map[string]json.RawMessage, key string, dst *[]T) string {
	r, ok := raw[key]
	if !ok {
		return ""
	}
	var loaded []T
	if err := json.Unmarshal(r, &loaded); err != nil {
		return key
	}
	if loaded == nil {
		loaded = []T{}
	}
	*dst = loaded
	return ""
}

func appendIfRepaired(repaired []string, field string) []string {
	if field != "" {
		return append(repaired, field)
	}
	return repaired
}

// Save persists the full state. Failures are surfaced as a warning and
// swallowed; the in-memory state remains authoritative.
func (s *Store) Save() {
	s.mu.RLock()
	data, err := json.Marshal(s.state)
	s.mu.RUnlock()
	if err != nil {
		logrus.Errorf("Failed to serialize state: %v", err)
		s.sink.Notify(notifications.LevelWarning, "Failed to save data locally")
		return
	}
	if err := s.storage.Store(s.key, data); err != nil {
		logrus.Errorf("Failed to persist state: %v", err)
		s.sink.Notify(notifications.LevelWarning, "Failed to save data locally")
	}
}

// Clear removes the persisted blob. The in-memory state is untouched.
func (s *Store) Clear() {
	if err := s.storage.Delete(s.key); err != nil {
		logrus.Errorf("Failed to clear persisted state: %v", err)
		s.sink.Notify(notifications.LevelWarning, "Failed to clear local data")
		return
	}
	s.sink.Notify(notifications.LevelSuccess, "Local data cleared successfully")
}

// apply runs one mutation through the full pipeline. Ordering is the point:
// recompute the derived score before anything can observe the new state,
// persist, then render.
func (s *Store) apply(mutate func(*models.DashboardState), feedChanged bool) {
	s.mu.Lock()
	mutate(&s.state)
	s.state.Signals.AttributionScore = scoring.Calculate(s.state.Signals)
	s.mu.Unlock()

	s.Save()
	s.sink.Render()
	if feedChanged {
		s.sink.RenderFeed()
	}
}

// SetSignal writes one raw signal value. Negative values are rejected with
// no state change.
func (s *Store) SetSignal(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("signal %s must be non-negative, got %v", name, value)
	}
	var set func(*models.SignalSet)
	switch name {
	case "brandedSearchVolume":
		set = func(sig *models.SignalSet) { sig.BrandedSearchVolume = value }
	case "directTraffic":
		set = func(sig *models.SignalSet) { sig.DirectTraffic = value }
	case "inboundMessages":
		set = func(sig *models.SignalSet) { sig.InboundMessages = value }
	case "communityEngagement":
		set = func(sig *models.SignalSet) { sig.CommunityEngagement = value }
	case "firstPartyData":
		set = func(sig *models.SignalSet) { sig.FirstPartyData = value }
	default:
		return fmt.Errorf("unknown signal %q", name)
	}
	s.apply(func(st *models.DashboardState) { set(&st.Signals) }, false)
	return nil
}

// SetBrand updates the brand configuration.
func (s *Store) SetBrand(brand models.BrandConfig) {
	s.apply(func(st *models.DashboardState) { st.Brand = brand }, false)
}

// SetWizard updates setup wizard progress.
func (s *Store) SetWizard(w models.SetupWizard) {
	s.apply(func(st *models.DashboardState) { st.SetupWizard = w }, false)
}

// AddCampaign appends a campaign record.
func (s *Store) AddCampaign(c models.Campaign) error {
	if c.Name == "" {
		return fmt.Errorf("campaign name is required")
	}
	s.apply(func(st *models.DashboardState) {
		st.Campaigns = append(append([]models.Campaign(nil), st.Campaigns...), c)
	}, false)
	return nil
}

// AddEcho prepends an echo, stamping its id and timestamp.
func (s *Store) AddEcho(e models.Echo) error {
	if e.Content == "" {
		return fmt.Errorf("echo content is required")
	}
	e.ID = time.Now().UnixMilli()
	if e.Timestamp == "" {
		e.Timestamp = time.Now().Format("2006-01-02 15:04")
	}
	s.apply(func(st *models.DashboardState) {
		st.Echoes = append([]models.Echo{e}, st.Echoes...)
	}, false)
	return nil
}

// AddPrompt appends a prompt to the library.
func (s *Store) AddPrompt(p models.Prompt) error {
	if p.Title == "" || p.Content == "" {
		return fmt.Errorf("prompt title and content are required")
	}
	s.apply(func(st *models.DashboardState) {
		st.Prompts = append(append([]models.Prompt(nil), st.Prompts...), p)
	}, false)
	return nil
}

// RecordCSVSource remembers an imported CSV file in the settings so the
// dashboard can list where manual data came from.
func (s *Store) RecordCSVSource(name string) {
	if name == "" {
		return
	}
	s.apply(func(st *models.DashboardState) {
		st.Settings.CSVSources = append(append([]string(nil), st.Settings.CSVSources...), name)
	}, false)
}

// SetConnection records a credential and status for an external source.
func (s *Store) SetConnection(name string, key string, status models.ConnectionStatus) {
	s.apply(func(st *models.DashboardState) {
		keys := make(map[string]string, len(st.APIKeys))
		for k, v := range st.APIKeys {
			keys[k] = v
		}
		keys[name] = key
		st.APIKeys = keys
		st.APIStatus = withStatus(st.APIStatus, name, status)
	}, false)
}

// SetConnectionStatus transitions a source's connection state.
func (s *Store) SetConnectionStatus(name string, status models.ConnectionStatus) {
	s.apply(func(st *models.DashboardState) {
		st.APIStatus = withStatus(st.APIStatus, name, status)
	}, false)
}

func withStatus(m map[string]models.ConnectionStatus, name string, status models.ConnectionStatus) map[string]models.ConnectionStatus {
	out := make(map[string]models.ConnectionStatus, len(m))
	for k, v := range m {
		out[k] = v
	}
	out[name] = status
	return out
}

// ConnectionStatus reports the current status for a source.
func (s *Store) ConnectionStatus(name string) models.ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.state.APIStatus[name]; ok {
		return status
	}
	return models.StatusDisconnected
}

// SetFilters updates the live feed filters.
func (s *Store) SetFilters(f models.FeedFilters) {
	s.apply(func(st *models.DashboardState) { st.LiveFeed.Filters = f }, true)
}

// SetFeedActive toggles the live feed activity flag.
func (s *Store) SetFeedActive(active bool) {
	s.apply(func(st *models.DashboardState) { st.LiveFeed.IsActive = active }, true)
}

// FeedActive reports the live feed activity flag.
func (s *Store) FeedActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LiveFeed.IsActive
}

// UpdateFeed applies a feed-collection mutation through the pipeline.
func (s *Store) UpdateFeed(mutate func(*models.LiveFeed)) {
	s.apply(func(st *models.DashboardState) {
		mutate(&st.LiveFeed)
		st.LiveFeed.LastUpdate = time.Now()
	}, true)
}

// Restore replaces the entire state from a backup and persists it. The
// backup's score is kept as-is so a backup/restore cycle is byte-for-byte.
func (s *Store) Restore(st models.DashboardState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.Save()
	s.sink.Render()
	s.sink.RenderFeed()
}
