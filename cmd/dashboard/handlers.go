package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brandsignal/attribution-dashboard/internal/dashboard"
	"github.com/brandsignal/attribution-dashboard/internal/feed"
	"github.com/brandsignal/attribution-dashboard/internal/models"
	"github.com/brandsignal/attribution-dashboard/internal/sources"
	"github.com/brandsignal/attribution-dashboard/internal/state"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// newRouter wires the HTTP surface. appCtx outlives any single request and is
// handed to long-running work the handlers kick off, like the feed poller.
func newRouter(appCtx context.Context, store *state.Store, feedEngine *feed.Engine, svc *dashboard.Service, client *sources.Client) *mux.Router {
	router := mux.NewRouter()
	router.Use(recoveryMiddleware)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/state", stateHandler(store)).Methods("GET")
	api.HandleFunc("/state", clearStateHandler(store)).Methods("DELETE")
	api.HandleFunc("/state/backup", backupHandler(svc)).Methods("GET")
	api.HandleFunc("/state/restore", restoreHandler(svc)).Methods("POST")
	api.HandleFunc("/import/{type}", importHandler(svc)).Methods("POST")

	api.HandleFunc("/brand", brandHandler(svc)).Methods("PUT")
	api.HandleFunc("/wizard", wizardHandler(store)).Methods("PUT")
	api.HandleFunc("/signals/{name}", signalHandler(store)).Methods("PUT")
	api.HandleFunc("/campaigns", campaignHandler(svc)).Methods("POST")
	api.HandleFunc("/echoes", echoHandler(svc)).Methods("POST")
	api.HandleFunc("/prompts", promptHandler(svc)).Methods("POST")

	api.HandleFunc("/connections/{key}/test", testConnectionHandler(svc)).Methods("POST")
	api.HandleFunc("/refresh", refreshAllHandler(appCtx, svc)).Methods("POST")
	api.HandleFunc("/metrics/refresh", loadMetricsHandler(svc)).Methods("POST")

	api.HandleFunc("/feed", feedHandler(feedEngine)).Methods("GET")
	api.HandleFunc("/feed/refresh", feedRefreshHandler(feedEngine)).Methods("POST")
	api.HandleFunc("/feed/filters", feedFiltersHandler(store)).Methods("PUT")
	api.HandleFunc("/feed/active", feedActiveHandler(appCtx, feedEngine)).Methods("POST")
	api.HandleFunc("/feed/export", feedExportHandler(feedEngine)).Methods("GET")

	api.HandleFunc("/export/{type}", exportHandler(svc)).Methods("GET")

	api.HandleFunc("/env-status", envStatusHandler(client)).Methods("GET")
	api.HandleFunc("/test-sentiment", testSentimentHandler(client)).Methods("POST")
	api.HandleFunc("/test-webhook", testWebhookHandler(client)).Methods("POST")

	return router
}

// recoveryMiddleware keeps a panicking handler from taking the server down.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logrus.Errorf("Panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func stateHandler(store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Snapshot())
	}
}

func clearStateHandler(store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.Clear()
		writeJSON(w, http.StatusOK, map[string]string{"message": "State reset to defaults"})
	}
}

func backupHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data, err := svc.Backup()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeFile(w, "application/json", filename, data)
	}
}

func restoreHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := svc.RestoreBackup(data); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Dashboard state restored"})
	}
}

func importHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		filename := r.URL.Query().Get("filename")
		imported, err := svc.ImportCSV(mux.Vars(r)["type"], filename, data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
	}
}

func wizardHandler(store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var wiz models.SetupWizard
		if err := json.NewDecoder(r.Body).Decode(&wiz); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		store.SetWizard(wiz)
		writeJSON(w, http.StatusOK, wiz)
	}
}

func envStatusHandler(client *sources.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := client.FetchEnvStatus(r.Context())
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func testSentimentHandler(client *sources.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		result, err := client.TestSentiment(r.Context(), body.Text)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(result)
	}
}

func testWebhookHandler(client *sources.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			WebhookURL string                 `json:"webhook_url"`
			TestData   map[string]interface{} `json:"test_data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := client.TestWebhook(r.Context(), body.WebhookURL, body.TestData); err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Webhook test delivered"})
	}
}

func brandHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var brand models.BrandConfig
		if err := json.NewDecoder(r.Body).Decode(&brand); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		svc.UpdateBrand(r.Context(), brand)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Brand configuration saved"})
	}
}

func signalHandler(store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Value float64 `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		name := mux.Vars(r)["name"]
		if err := store.SetSignal(name, body.Value); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, store.Signals())
	}
}

func campaignHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c models.Campaign
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := svc.AddCampaign(c); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func echoHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e models.Echo
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := svc.AddEcho(e); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func promptHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p models.Prompt
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := svc.AddPrompt(p); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func testConnectionHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			APIKey string `json:"apiKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		key := mux.Vars(r)["key"]
		if err := svc.TestConnection(r.Context(), key, body.APIKey); err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
	}
}

func refreshAllHandler(appCtx context.Context, svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := svc.RefreshAll(appCtx); err != nil {
				logrus.Errorf("Manual refresh trigger failed: %v", err)
			}
		}()
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "Refresh triggered"})
	}
}

func loadMetricsHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.LoadMetrics(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Dashboard metrics loaded"})
	}
}

func feedHandler(feedEngine *feed.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":   feedEngine.Status(),
			"mentions": feedEngine.Filtered(),
			"stats":    feedEngine.FilteredStats(),
		})
	}
}

func feedRefreshHandler(feedEngine *feed.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feedEngine.Refresh(r.Context())
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": feedEngine.Status(),
			"stats":  feedEngine.FilteredStats(),
		})
	}
}

func feedFiltersHandler(store *state.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f models.FeedFilters
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		store.SetFilters(f)
		writeJSON(w, http.StatusOK, f)
	}
}

func feedActiveHandler(appCtx context.Context, feedEngine *feed.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		feedEngine.SetActive(appCtx, body.Active)
		writeJSON(w, http.StatusOK, map[string]bool{"active": body.Active})
	}
}

func feedExportHandler(feedEngine *feed.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename, data, err := feedEngine.ExportCSV()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if data == nil {
			writeJSON(w, http.StatusOK, map[string]string{"message": "No mentions to export"})
			return
		}
		writeFile(w, "text/csv", filename, data)
	}
}

func exportHandler(svc *dashboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			filename    string
			data        []byte
			err         error
			contentType = "text/csv"
		)

		exportType := mux.Vars(r)["type"]
		switch exportType {
		case "signals":
			filename, data, err = svc.ExportSignalsCSV()
		case "campaigns":
			filename, data, err = svc.ExportCampaignsCSV()
		case "echoes":
			filename, data, err = svc.ExportEchoesCSV()
		case "summary":
			contentType = "application/json"
			filename, data, err = svc.ExportSummary()
		default:
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown export type %q", exportType))
			return
		}

		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if data == nil {
			writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("No %s data to export", exportType)})
			return
		}
		writeFile(w, contentType, filename, data)
	}
}
