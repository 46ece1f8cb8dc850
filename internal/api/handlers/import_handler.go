package handlers

import (
	"net/http"
	"time"

	"example.com/metagame/services/importer/internal/services"
	"example.com/metagame/services/importer/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ImportHandler handles import-related HTTP requests
type ImportHandler struct {
	importService *services.ImportService
	tracer        tracing.Tracer
	windowDays    int
	lagDays       int
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *services.ImportService, tracer tracing.Tracer, lagDays, windowDays int) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		tracer:        tracer,
		windowDays:    windowDays,
		lagDays:       lagDays,
	}
}

// RunRequest represents a request to run an import window
type RunRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// RunResponse represents the outcome summary of an import run
type RunResponse struct {
	RunID             uuid.UUID `json:"run_id"`
	WindowStart       time.Time `json:"window_start"`
	WindowEnd         time.Time `json:"window_end"`
	EventsInserted    int       `json:"events_inserted"`
	MatchesInserted   int       `json:"matches_inserted"`
	MatchesSkipped    int       `json:"matches_skipped"`
	StandingsInserted int       `json:"standings_inserted"`
	ErrorText         *string   `json:"error_text,omitempty"`
}

// HandleRunImport triggers an import run for the requested window. With
// no dates the default lagged window is used.
func (h *ImportHandler) HandleRunImport(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-run-import")
	defer h.tracer.EndTransaction(txn)

	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		log.Error().Err(err).Msg("Invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	start, end, err := h.resolveWindow(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		h.tracer.RecordError(txn, err)
		return
	}

	h.tracer.AddAttribute(txn, "window_start", start.Format("2006-01-02"))
	h.tracer.AddAttribute(txn, "window_end", end.Format("2006-01-02"))

	report, runErr := h.importService.Run(c, start, end)
	if report == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": runErr.Error()})
		h.tracer.RecordError(txn, runErr)
		return
	}

	response := RunResponse{
		RunID:             report.ID,
		WindowStart:       report.WindowStart,
		WindowEnd:         report.WindowEnd,
		EventsInserted:    report.EventsInserted,
		MatchesInserted:   report.MatchesInserted,
		MatchesSkipped:    report.MatchesSkipped,
		StandingsInserted: report.StandingsInserted,
		ErrorText:         report.ErrorText,
	}

	status := http.StatusCreated
	if runErr != nil {
		h.tracer.RecordError(txn, runErr)
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, response)
}

// HandleGetLoadReport returns the load report of one run
func (h *ImportHandler) HandleGetLoadReport(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-get-load-report")
	defer h.tracer.EndTransaction(txn)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	report, err := h.importService.GetLoadReport(c, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "load report not found"})
		h.tracer.RecordError(txn, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ImportHandler) resolveWindow(req RunRequest) (time.Time, time.Time, error) {
	today := time.Now().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -h.lagDays)

	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}

	end := start.AddDate(0, 0, h.windowDays)
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}

	return start, end, nil
}

// RegisterRoutes registers the handler's routes
func (h *ImportHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/import_runs", h.HandleRunImport)
	router.GET("/load_reports/:id", h.HandleGetLoadReport)
}
