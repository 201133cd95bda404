package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/requestarr/requestarr/internal/logger"
)

type healthResponse struct {
	Status        string        `json:"status"`
	Version       string        `json:"version"`
	UptimeSeconds int64         `json:"uptimeSeconds"`
	Collaborators Collaborators `json:"collaborators"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Collaborators: s.collaborators,
	})
}

type historyResponse struct {
	Items      interface{} `json:"items"`
	TotalCount int64       `json:"totalCount"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}

func (s *Server) handleHistory(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	entries, err := s.history.List(c.Request().Context(), limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list history")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list history")
	}

	total, err := s.history.Count(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count history")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to count history")
	}

	return c.JSON(http.StatusOK, historyResponse{
		Items:      entries,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Server) handlePending(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{
		"pendingActions": s.pending.PendingCount(),
	})
}

func (s *Server) handleTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.scheduler.ListTasks())
}

func (s *Server) handleLogs(c echo.Context) error {
	entries := []logger.LogEntry{}
	if s.logs != nil {
		entries = s.logs.Recent()
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit > 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
