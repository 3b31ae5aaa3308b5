package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/poweringeg/fichas-backend/internal/analysis"
	"github.com/poweringeg/fichas-backend/internal/db"
)

func TestHealthzIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := db.New(context.Background(), url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer store.Close()

	h := &Handler{Store: store, Logger: zerolog.Nop()}

	r := gin.New()
	r.GET("/healthz", h.Healthz)

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAnalyzeRunLifecycleIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := db.New(ctx, url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	h := &Handler{
		Store:     store,
		Engine:    analysis.NewEngine(analysis.DefaultRules(), zerolog.Nop()),
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}

	r := gin.New()
	r.POST("/api/analyses", h.Analyze)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "monitor.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	content := "NMDOS,Lojas,OBRANO,Status,OBS\nFicha Servico 7,Guimarães,4711,AUTORIZADO,ok\n"
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, "/api/analyses", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var summary AnalyzeSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.RunID == "" {
		t.Fatalf("expected a run id in the response")
	}

	run, err := store.GetLatestRun(ctx)
	if err != nil {
		t.Fatalf("latest run: %v", err)
	}
	if run["id"] != summary.RunID {
		t.Fatalf("latest run %v does not match response run id %s", run["id"], summary.RunID)
	}
	if run["status"] != "DONE" {
		t.Fatalf("expected run status DONE, got %v", run["status"])
	}
}

func TestAnalyzeLogsParseFailure(t *testing.T) {
	var logBuf bytes.Buffer
	h := &Handler{Logger: zerolog.New(&logBuf)}

	r := gin.New()
	r.POST("/api/analyses", h.Analyze)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "monitor.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("not a spreadsheet")); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, "/api/analyses", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(logBuf.String(), "upload parse failed") {
		t.Fatalf("expected parse failure to be logged, got %q", logBuf.String())
	}
}

func TestReportSendRejectsInvalidRecipients(t *testing.T) {
	h := &Handler{Validator: validator.New(), Logger: zerolog.Nop()}

	r := gin.New()
	r.POST("/api/analyses/:id/reports/:store/send", h.ReportSend)

	body := `{"recipients": ["not-an-email"]}`
	req, _ := http.NewRequest(http.MethodPost, "/api/analyses/run1/reports/Braga/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReportSendRejectsEmptyRecipients(t *testing.T) {
	h := &Handler{Validator: validator.New(), Logger: zerolog.Nop()}

	r := gin.New()
	r.POST("/api/analyses/:id/reports/:store/send", h.ReportSend)

	body := `{"recipients": []}`
	req, _ := http.NewRequest(http.MethodPost, "/api/analyses/run1/reports/Braga/send", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
