package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/dagbok/internal/journal"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 10
	maxImportBytes      = 5 << 20
	importFormField     = "file"
	exportFileName      = "dagbok-export.json"

	messageImportDone       = "Import klar (merge)."
	messageImportInvalid    = "Import misslyckades. Filen verkar inte vara rätt JSON-format."
	messageImportReadFailed = "Import misslyckades. Filen kunde inte läsas."
)

var (
	errMissingJournal  = errors.New("journal store dependency required")
	errImportTooLarge  = errors.New("import payload exceeds size limit")
	errMissingUploaded = errors.New("multipart import requires a file field")
)

type Dependencies struct {
	Journal      *journal.Store
	HistoryLimit int
	Logger       *zap.Logger
}

// NewHTTPHandler wires the journal store behind a JSON API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Journal == nil {
		return nil, errMissingJournal
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	historyLimit := deps.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(logger))

	handler := &httpHandler{
		journal:      deps.Journal,
		historyLimit: historyLimit,
		logger:       logger,
	}

	router.GET("/healthz", handler.handleHealth)
	router.GET("/today", handler.handleToday)
	router.PUT("/today", handler.handleSaveToday)
	router.DELETE("/today", handler.handleClearToday)
	router.GET("/entries", handler.handleListEntries)
	router.GET("/export", handler.handleExport)
	router.POST("/import", handler.handleImport)
	router.GET("/thought", handler.handleThought)
	router.GET("/mood", handler.handleMood)

	return router, nil
}

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	})
}

type httpHandler struct {
	journal      *journal.Store
	historyLimit int
	logger       *zap.Logger
}

type entryPayload struct {
	Date     string  `json:"date"`
	DateText string  `json:"date_text"`
	Mood     float64 `json:"mood"`
	Label    string  `json:"label"`
	Band     string  `json:"band"`
	Thought  string  `json:"thought"`
	SavedAt  string  `json:"saved_at,omitempty"`
	Version  string  `json:"version,omitempty"`
}

type todayPayload struct {
	entryPayload
	Found bool `json:"found"`
}

type saveTodayRequest struct {
	Mood    *float64 `json:"mood"`
	Thought string   `json:"thought"`
}

type historyPayload struct {
	Entries []entryPayload `json:"entries"`
}

type importResponsePayload struct {
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
	Message  string `json:"message"`
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleToday(c *gin.Context) {
	view := h.journal.Today(c.Request.Context())
	payload := newEntryPayload(view.Date, view.Entry)
	payload.DateText = journal.FormatLongDate(view.Current)
	c.JSON(http.StatusOK, todayPayload{entryPayload: payload, Found: view.Found})
}

func (h *httpHandler) handleSaveToday(c *gin.Context) {
	var request saveTodayRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.Mood == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	key, entry, err := h.journal.SaveToday(c.Request.Context(), *request.Mood, request.Thought)
	if err != nil {
		h.logger.Error("failed to save today", zap.String("date", key.String()), zap.Error(err))
		h.respondServiceError(c, "save_failed", err)
		return
	}

	payload := newEntryPayload(key, entry)
	payload.DateText = h.shortDate(key)
	c.JSON(http.StatusOK, payload)
}

func (h *httpHandler) handleClearToday(c *gin.Context) {
	key, removed, err := h.journal.ClearToday(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to clear today", zap.String("date", key.String()), zap.Error(err))
		h.respondServiceError(c, "clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": key.String(), "deleted": removed})
}

func (h *httpHandler) handleListEntries(c *gin.Context) {
	limit := h.historyLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_limit"})
			return
		}
		limit = parsed
	}

	items := h.journal.History(c.Request.Context(), limit)
	response := historyPayload{Entries: make([]entryPayload, 0, len(items))}
	for _, item := range items {
		payload := newEntryPayload(item.Date, item.Entry)
		payload.DateText = h.shortDate(item.Date)
		response.Entries = append(response.Entries, payload)
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleExport(c *gin.Context) {
	payload, err := h.journal.Export(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to export journal", zap.Error(err))
		h.respondServiceError(c, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *httpHandler) handleImport(c *gin.Context) {
	raw, err := readImportPayload(c)
	if err != nil {
		h.logger.Warn("failed to read import payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "import_read_failed", "message": messageImportReadFailed})
		return
	}

	result, err := h.journal.Import(c.Request.Context(), raw)
	if journal.IsFormatError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_format", "message": messageImportInvalid})
		return
	}
	if err != nil {
		h.logger.Error("failed to import journal", zap.Error(err))
		h.respondServiceError(c, "import_failed", err)
		return
	}

	c.JSON(http.StatusOK, importResponsePayload{
		Imported: result.Imported,
		Total:    result.Total,
		Message:  messageImportDone,
	})
}

func (h *httpHandler) handleThought(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"thought": h.journal.RandomThought()})
}

func (h *httpHandler) handleMood(c *gin.Context) {
	value, err := strconv.ParseFloat(strings.TrimSpace(c.Query("value")), 64)
	if err != nil || !journal.IsFiniteMood(value) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mood"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mood":  value,
		"label": journal.MoodLabel(value),
		"band":  string(journal.MoodBandFor(value)),
	})
}

func (h *httpHandler) shortDate(key journal.DateKey) string {
	text, err := journal.FormatShortDate(key, h.journal.Location())
	if err != nil {
		return key.String()
	}
	return text
}

func (h *httpHandler) respondServiceError(c *gin.Context, errorCode string, err error) {
	body := gin.H{"error": errorCode}
	var serviceErr *journal.ServiceError
	if errors.As(err, &serviceErr) {
		body["code"] = serviceErr.Code()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func newEntryPayload(key journal.DateKey, entry journal.Entry) entryPayload {
	return entryPayload{
		Date:    key.String(),
		Mood:    entry.Mood,
		Label:   journal.MoodLabel(entry.Mood),
		Band:    string(journal.MoodBandFor(entry.Mood)),
		Thought: entry.Thought,
		SavedAt: entry.SavedAt,
		Version: entry.Version,
	}
}

func readImportPayload(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile(importFormField)
		if err != nil {
			return nil, errors.Join(errMissingUploaded, err)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return readLimited(file)
	}
	return readLimited(c.Request.Body)
}

func readLimited(reader io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(reader, maxImportBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxImportBytes {
		return nil, errImportTooLarge
	}
	return raw, nil
}
