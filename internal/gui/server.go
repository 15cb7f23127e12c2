// Package gui serves the local management API: cost-configuration editing,
// holiday refresh, invoice generation from posted rows and ledger updates.
package gui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bills/internal/billing"
	"bills/internal/config"
	"bills/internal/holiday"
	"bills/internal/ledger"
	"bills/internal/logger"
	"bills/internal/render"
	"bills/pkg/models"
)

// App is the GUI server. It owns the router and the shared services the
// handlers need.
type App struct {
	host string
	port string

	cfg      *config.Config
	provider *holiday.Provider
	ledger   *ledger.Ledger
	renderer *render.Renderer

	router chi.Router
	log    zerolog.Logger
}

// New wires the GUI server from the application configuration.
func New(cfg *config.Config) *App {
	app := &App{
		host:     cfg.GUIHost,
		port:     cfg.GUIPort,
		cfg:      cfg,
		provider: holiday.NewProvider(cfg.HolidayAPIURL, cfg.HolidayCountry, cfg.HolidayRegion),
		ledger:   ledger.New(cfg.LedgerPath),
		renderer: render.New(cfg.OutputDir),
		router:   chi.NewRouter(),
		log:      logger.WithComponent("gui"),
	}
	app.registerRoutes()
	return app
}

func (a *App) registerRoutes() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)

	a.router.Get("/api/health", a.handleHealth)
	a.router.Get("/api/data/config", a.handleGetConfig)
	a.router.Post("/api/data/config", a.handleSaveConfig)
	a.router.Get("/api/data/holidays", a.handleRefreshHolidays)
	a.router.Post("/api/invoice/generate", a.handleGenerate)
	a.router.Post("/api/invoice/update", a.handleUpdate)

	a.router.Handle("/data/*", http.StripPrefix("/data/",
		http.FileServer(http.Dir(a.cfg.OutputDir))))
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Serve blocks listening on the configured host and port.
func (a *App) Serve() error {
	addr := fmt.Sprintf("%s:%s", a.host, a.port)
	server := http.Server{
		Addr:    addr,
		Handler: a.router,

		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	a.log.Info().Str("addr", addr).Msg("GUI server listening")

	return server.ListenAndServe()
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := billing.LoadCostConfig(a.cfg.CostConfig)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}
	a.respondJSON(w, http.StatusOK, cfg)
}

func (a *App) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg billing.CostConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid configuration payload: %w", err))
		return
	}
	if err := cfg.Save(a.cfg.CostConfig); err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.log.Info().Str("file", a.cfg.CostConfig).Msg("Cost configuration saved")
	a.respondJSON(w, http.StatusOK, &cfg)
}

// handleRefreshHolidays fetches the current and next year's public holidays,
// persists them and returns the merged date list.
func (a *App) handleRefreshHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	set := a.provider.FetchYears(r.Context(), year, year+1)

	dates := set.Dates()
	if err := holiday.WriteFile(a.cfg.HolidaysFile, dates); err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}

	strs := make([]string, 0, len(dates))
	for _, d := range dates {
		strs = append(strs, d.Format(holiday.DateKey))
	}
	a.respondJSON(w, http.StatusOK, map[string]any{"holidays": strs})
}

type generateRequest struct {
	// Rows holds the raw source ledger including the header row.
	Rows [][]string `json:"rows"`

	MinMonths *int `json:"minMonths"`
	MaxMonths *int `json:"maxMonths"`
}

// handleGenerate accepts raw source rows, snapshots them to a tab-separated
// file and runs the full invoicing pipeline over the snapshot.
func (a *App) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid generate payload: %w", err))
		return
	}
	if len(req.Rows) == 0 {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("no rows submitted"))
		return
	}

	snapshot, err := a.writeSnapshot(req.Rows)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}

	costCfg, err := billing.LoadCostConfig(a.cfg.CostConfig)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}

	holidays, err := holiday.LoadFile(a.cfg.HolidaysFile)
	if err != nil {
		a.log.Warn().Err(err).Msg("Holidays file unavailable, continuing with weekend rule only")
		holidays = holiday.NewSet(nil)
	}

	var monthRange *billing.MonthRange
	if req.MinMonths != nil && req.MaxMonths != nil {
		monthRange = &billing.MonthRange{Min: *req.MinMonths, Max: *req.MaxMonths}
	}

	invoices, err := billing.Run(billing.RunOptions{
		DataPath: snapshot,
		Config:   costCfg,
		Holidays: holidays,
		Range:    monthRange,
		Renderer: a.renderer,
		Ledger:   a.ledger,
	})
	if err != nil {
		a.respondError(w, http.StatusUnprocessableEntity, err)
		return
	}

	a.respondJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

// writeSnapshot persists submitted rows as a uniquely named tab-separated
// file so every generation run is reproducible from its own input.
func (a *App) writeSnapshot(rows [][]string) (string, error) {
	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteString("\n")
	}

	path := filepath.Join(a.cfg.OutputDir, fmt.Sprintf("snapshot-%s.tsv", uuid.NewString()))
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write data snapshot: %w", err)
	}

	a.log.Info().Str("file", path).Int("rows", len(rows)).Msg("Data snapshot written")
	return path, nil
}

// handleUpdate applies one cell update to the ledger, then rebuilds and
// re-renders the affected invoice from the updated sheet.
func (a *App) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload models.UpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid update payload: %w", err))
		return
	}
	if payload.ID == "" || payload.Ref == "" || payload.Key == "" {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("update payload requires id, ref and key"))
		return
	}

	applied, err := a.ledger.ApplyUpdate(payload)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if !applied {
		a.respondJSON(w, http.StatusOK, map[string]any{"applied": false})
		return
	}

	costCfg, err := billing.LoadCostConfig(a.cfg.CostConfig)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}

	inv, err := a.ledger.Rebuild(payload.Ref, costCfg)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if inv != nil {
		if err := a.renderer.Document(*inv); err != nil {
			a.log.Error().Err(err).Str("ref", inv.Ref).Msg("Invoice document re-render failed")
		}
		if err := a.renderer.Workbook(*inv); err != nil {
			a.log.Error().Err(err).Str("ref", inv.Ref).Msg("Invoice workbook re-render failed")
		}
	}

	a.respondJSON(w, http.StatusOK, map[string]any{"applied": true, "invoice": inv})
}

func (a *App) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (a *App) respondError(w http.ResponseWriter, status int, err error) {
	a.log.Error().Err(err).Int("status", status).Msg("Request failed")
	a.respondJSON(w, status, map[string]string{"error": err.Error()})
}
