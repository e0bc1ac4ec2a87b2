package api

import (
	"bytes"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"dupescan/logger"
	"dupescan/models"
	"dupescan/report"
	"dupescan/storage"
)

// DuplicatesPerPage is the page size of GET /duplicates.
const DuplicatesPerPage = 20

// Handler serves the duplicate-file API. The storage instance is passed in
// explicitly; mu serializes disk deletes and duplicate refreshes so
// concurrent API calls cannot interleave partial updates.
type Handler struct {
	store storage.Storage
	mu    sync.Mutex
}

func NewHandler(store storage.Storage) *Handler {
	return &Handler{store: store}
}

// DeleteFile removes a file from disk and re-validates the duplicate groups.
func (h *Handler) DeleteFile(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "DeleteFile")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	var req DeleteFileRequest
	if err := c.Bind(&req); err != nil || req.FilePath == "" {
		return c.JSON(http.StatusBadRequest, DeleteFileResponse{Success: false, Message: "filePath is required"})
	}
	span.SetAttributes(attribute.String("file_path", req.FilePath))

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := os.Stat(req.FilePath); os.IsNotExist(err) {
		return c.JSON(http.StatusNotFound, DeleteFileResponse{Success: false, Message: "File not found"})
	}

	if err := os.Remove(req.FilePath); err != nil {
		span.RecordError(err)
		logger.Get().Error().Err(err).Str("path", req.FilePath).Msg("failed to delete file")
		return c.JSON(http.StatusInternalServerError, DeleteFileResponse{Success: false, Message: err.Error()})
	}
	logger.Get().Info().Str("path", req.FilePath).Msg("deleted file")

	if err := h.store.RefreshDuplicates(); err != nil {
		span.RecordError(err)
		logger.Get().Error().Err(err).Msg("failed to refresh duplicates after delete")
		return c.JSON(http.StatusInternalServerError, DeleteFileResponse{Success: false, Message: "File deleted but refreshing duplicates failed: " + err.Error()})
	}

	return c.JSON(http.StatusOK, DeleteFileResponse{Success: true, Message: "File deleted successfully"})
}

// GetDuplicates returns one page of duplicate groups.
func (h *Handler) GetDuplicates(c echo.Context) error {
	ctx := c.Request().Context()
	tracer := otel.Tracer("api/handlers")
	ctx, span := tracer.Start(ctx, "GetDuplicates")
	defer span.End()

	c.SetRequest(c.Request().WithContext(ctx))

	page := 1
	if pageStr := c.QueryParam("page"); pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid page number")
		}
		page = p
	}

	total, err := h.store.CountDuplicateGroups()
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count duplicate groups")
	}

	groups, err := h.store.GetDuplicateGroups(page, DuplicatesPerPage)
	if err != nil {
		span.RecordError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get duplicate groups")
	}
	if groups == nil {
		groups = [][]models.FileRecord{}
	}

	totalPages := (total + DuplicatesPerPage - 1) / DuplicatesPerPage
	span.SetAttributes(
		attribute.Int("page", page),
		attribute.Int("total_groups", total),
		attribute.Int("response_groups", len(groups)),
	)

	return c.JSON(http.StatusOK, DuplicatesResponse{
		Data: groups,
		Pagination: Pagination{
			Page:        page,
			PerPage:     DuplicatesPerPage,
			TotalGroups: total,
			TotalPages:  totalPages,
			HasMore:     page < totalPages,
		},
	})
}

// GetStats returns a summary of the persisted duplicate state.
func (h *Handler) GetStats(c echo.Context) error {
	total, err := h.store.CountDuplicateGroups()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count duplicate groups")
	}
	return c.JSON(http.StatusOK, StatsResponse{TotalGroups: total})
}

// GetReport renders the duplicate viewer HTML from live storage data.
func (h *Handler) GetReport(c echo.Context) error {
	groups, err := h.store.GetDuplicateGroups(1, report.MaxGroups)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get duplicate groups")
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, groups, "/delete-file"); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render report")
	}
	return c.HTML(http.StatusOK, buf.String())
}
