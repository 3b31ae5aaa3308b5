package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/poweringeg/fichas-backend/internal/analysis"
	"github.com/poweringeg/fichas-backend/internal/db"
	"github.com/poweringeg/fichas-backend/internal/ingest"
	"github.com/poweringeg/fichas-backend/internal/mailer"
	"github.com/poweringeg/fichas-backend/internal/models"
	"github.com/poweringeg/fichas-backend/internal/report"
)

type Handler struct {
	Store     *db.Store
	Engine    *analysis.Engine
	Mailer    mailer.Mailer
	Validator *validator.Validate
	Logger    zerolog.Logger
}

type AnalyzeSummary struct {
	RunID        string              `json:"run_id"`
	SourceFile   string              `json:"source_file"`
	TotalTickets int                 `json:"total_tickets"`
	TotalStores  int                 `json:"total_stores"`
	GlobalTotals models.GlobalTotals `json:"global_totals"`
	StatusCounts map[string]int      `json:"status_counts"`
	Reports      []models.StoreReport `json:"reports"`
	ParseErrors  []string            `json:"parse_errors"`
}

type SendReportRequest struct {
	Recipients []string `json:"recipients" validate:"required,min=1,dive,email"`
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Run a ticket analysis
// @Description Upload the monitoring export (.xlsx or .csv) and run the full analysis
// @Tags analyses
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "monitoring export"
// @Param include_html query bool false "include document fragments in the response"
// @Success 200 {object} AnalyzeSummary
// @Failure 400 {object} map[string]any
// @Router /api/analyses [post]
func (h *Handler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file required", nil)
		return
	}

	tickets, softErrs, err := parseUpload(fileHeader)
	if err != nil {
		h.Logger.Warn().Err(err).Str("file", fileHeader.Filename).Msg("upload parse failed")
		writeError(c, http.StatusBadRequest, "PARSE_ERROR", "could not read upload", err.Error())
		return
	}
	if len(tickets) == 0 {
		writeError(c, http.StatusBadRequest, "EMPTY_FILE", "no tickets found in upload", softErrs)
		return
	}

	ctx := c.Request.Context()
	runID, err := h.Store.CreateRun(ctx, fileHeader.Filename)
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to create run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create run", err.Error())
		return
	}

	result := h.Engine.Analyze(tickets, fileHeader.Filename)
	result.RunID = runID

	if err := h.Store.SaveAnalysis(ctx, result); err != nil {
		if failErr := h.Store.FailRun(ctx, runID); failErr != nil {
			h.Logger.Error().Err(failErr).Str("run_id", runID).Msg("failed to mark run failed")
		}
		h.Logger.Error().Err(err).Str("run_id", runID).Msg("failed to persist analysis")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to persist analysis", err.Error())
		return
	}

	summary := AnalyzeSummary{
		RunID:        result.RunID,
		SourceFile:   result.SourceFileName,
		TotalTickets: result.TotalTickets,
		TotalStores:  result.TotalStores,
		GlobalTotals: result.GlobalTotals,
		StatusCounts: result.GlobalStatusCounts,
		Reports:      result.Reports,
		ParseErrors:  softErrs,
	}
	if !parseBoolQuery(c, "include_html") {
		trimmed := make([]models.StoreReport, len(summary.Reports))
		copy(trimmed, summary.Reports)
		for i := range trimmed {
			trimmed[i].DocumentHTML = ""
		}
		summary.Reports = trimmed
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Latest analysis run
// @Tags analyses
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/analyses/latest [get]
func (h *Handler) AnalysesLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "no finished analysis run", nil)
			return
		}
		h.Logger.Error().Err(err).Msg("failed to load latest run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load latest run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

// @Summary List store reports of a run
// @Tags analyses
// @Produce json
// @Param id path string true "run id"
// @Success 200 {array} map[string]any
// @Router /api/analyses/{id}/reports [get]
func (h *Handler) ReportsList(c *gin.Context) {
	reports, err := h.Store.ListStoreReports(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Logger.Error().Err(err).Str("run_id", c.Param("id")).Msg("failed to list reports")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list reports", err.Error())
		return
	}
	if reports == nil {
		reports = []map[string]any{}
	}
	c.JSON(http.StatusOK, reports)
}

// @Summary Full report of one store
// @Tags analyses
// @Produce json
// @Param id path string true "run id"
// @Param store path string true "canonical store name"
// @Success 200 {object} models.StoreReport
// @Failure 404 {object} map[string]any
// @Router /api/analyses/{id}/reports/{store} [get]
func (h *Handler) ReportDetails(c *gin.Context) {
	rep, err := h.loadReport(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary Printable PDF of one store report
// @Tags analyses
// @Produce application/pdf
// @Param id path string true "run id"
// @Param store path string true "canonical store name"
// @Success 200 {file} binary
// @Router /api/analyses/{id}/reports/{store}/pdf [get]
func (h *Handler) ReportPDF(c *gin.Context) {
	rep, err := h.loadReport(c)
	if err != nil {
		return
	}
	pdfBytes, err := report.RenderPDF(*rep, time.Now())
	if err != nil {
		h.Logger.Error().Err(err).Str("store", rep.StoreName).Msg("failed to render pdf")
		writeError(c, http.StatusInternalServerError, "PDF_ERROR", "Failed to render pdf", err.Error())
		return
	}
	filename := fmt.Sprintf("analise-%s.pdf", slugify(rep.StoreName))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// @Summary Email a store report
// @Description Sends the report email with the printable PDF attached
// @Tags analyses
// @Accept json
// @Produce json
// @Param id path string true "run id"
// @Param store path string true "canonical store name"
// @Param request body SendReportRequest true "recipients"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/analyses/{id}/reports/{store}/send [post]
func (h *Handler) ReportSend(c *gin.Context) {
	var req SendReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid recipients", err.Error())
		return
	}

	rep, err := h.loadReport(c)
	if err != nil {
		return
	}

	now := time.Now()
	pdfBytes, err := report.RenderPDF(*rep, now)
	if err != nil {
		h.Logger.Error().Err(err).Str("store", rep.StoreName).Msg("failed to render pdf")
		writeError(c, http.StatusInternalServerError, "PDF_ERROR", "Failed to render pdf", err.Error())
		return
	}

	msg := mailer.Message{
		To:      req.Recipients,
		Subject: fmt.Sprintf("Análise de Fichas de Serviço - %s", rep.StoreName),
		HTML:    report.BuildEmailHTML(*rep, now),
		Attachments: []mailer.Attachment{{
			Filename:    fmt.Sprintf("analise-%s.pdf", slugify(rep.StoreName)),
			ContentType: "application/pdf",
			Content:     pdfBytes,
		}},
	}
	if err := h.Mailer.Send(c.Request.Context(), msg); err != nil {
		h.Logger.Error().Err(err).Str("store", rep.StoreName).Msg("failed to send report email")
		writeError(c, http.StatusBadGateway, "MAIL_ERROR", "Failed to send report", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true, "recipients": req.Recipients})
}

func (h *Handler) loadReport(c *gin.Context) (*models.StoreReport, error) {
	rep, err := h.Store.GetStoreReport(c.Request.Context(), c.Param("id"), c.Param("store"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "store report not found", nil)
			return nil, err
		}
		h.Logger.Error().Err(err).Str("store", c.Param("store")).Msg("failed to load report")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load report", err.Error())
		return nil, err
	}
	return rep, nil
}

func parseUpload(fileHeader *multipart.FileHeader) ([]models.ServiceTicket, []string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".xlsx":
		return ingest.ParseWorkbook(f)
	case ".csv":
		return ingest.ParseCSV(f)
	default:
		return nil, nil, fmt.Errorf("unsupported file type, expected .xlsx or .csv")
	}
}

func parseBoolQuery(c *gin.Context, name string) bool {
	v := strings.ToLower(c.Query(name))
	return v == "1" || v == "true"
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
