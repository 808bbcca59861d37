package handlers

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/skyblock-api/services"
	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	contestService  *services.ContestService
	calendarService *services.CalendarService
	logger          *slog.Logger
}

func NewContestHandler(contestService *services.ContestService, calendarService *services.CalendarService, logger *slog.Logger) *ContestHandler {
	return &ContestHandler{
		contestService:  contestService,
		calendarService: calendarService,
		logger:          logger,
	}
}

// GetContestsAt godoc
// @Summary Contests running at a timestamp
// @Description Returns every crop contest anchored at the given unix timestamp.
// @Tags contests
// @Produce json
// @Param timestamp path int true "Unix timestamp (seconds)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Timestamp predates the calendar epoch"
// @Router /contests/at/{timestamp} [get]
func (h *ContestHandler) GetContestsAt(w http.ResponseWriter, r *http.Request) {
	timestamp, err := strconv.ParseInt(chi.URLParam(r, "timestamp"), 10, 64)
	if err != nil {
		errorResponse(w, r, http.StatusBadRequest, "timestamp must be an integer")
		return
	}

	contests, err := h.contestService.GetContestsAt(r.Context(), timestamp)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"timestamp": timestamp,
		"contests":  contests,
	}, nil)
}

// GetContestByKey godoc
// @Summary One contest with its scoreboard
// @Tags contests
// @Produce json
// @Param key path string true "Contest key, e.g. 147:6_13:CACTUS"
// @Success 200 {object} models.JacobContest
// @Failure 400 {object} map[string]interface{} "Malformed key"
// @Failure 404 {object} map[string]interface{} "No such contest"
// @Router /contests/{key} [get]
func (h *ContestHandler) GetContestByKey(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		errorResponse(w, r, http.StatusBadRequest, "contest key is required")
		return
	}

	contest, err := h.contestService.GetContestByKey(r.Context(), key)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, contest, nil)
}

// GetContestsInMonth godoc
// @Summary Known contests of one calendar month, grouped by day
// @Tags contests
// @Produce json
// @Param year path int true "Display year (1-based)"
// @Param month path int true "Display month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Router /contests/month/{year}/{month} [get]
func (h *ContestHandler) GetContestsInMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		errorResponse(w, r, http.StatusBadRequest, "year must be an integer")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		errorResponse(w, r, http.StatusBadRequest, "month must be an integer")
		return
	}

	byDay, err := h.contestService.GetContestsInMonth(r.Context(), year, month)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"year":     year,
		"month":    month,
		"contests": byDay,
	}, nil)
}

// GetCalendar godoc
// @Summary Upcoming-year contest calendar
// @Description Serves the community-sourced calendar for the requested display year.
// @Tags calendar
// @Produce json
// @Param year path int true "Display year (1-based)"
// @Success 200 {object} services.YearCalendar
// @Router /contests/calendar/{year} [get]
func (h *ContestHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		errorResponse(w, r, http.StatusBadRequest, "year must be an integer")
		return
	}

	calendar, err := h.calendarService.GetCalendar(r.Context(), year)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, calendar, nil)
}

// SubmitCalendar godoc
// @Summary Submit a full upcoming-year calendar
// @Description Accepts a 124-slot calendar proposal; the calendar is finalized once enough independent submitters agree.
// @Tags calendar
// @Accept json
// @Produce json
// @Param body body map[string][]string true "Map of unix timestamp to exactly three distinct crop names"
// @Success 200 {object} services.SubmissionResult
// @Failure 400 {object} map[string]interface{} "Validation failure or repeat submission"
// @Router /contests/calendar [post]
func (h *ContestHandler) SubmitCalendar(w http.ResponseWriter, r *http.Request) {
	var body map[string][]string
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slots := make(map[int64][]string, len(body))
	for rawTs, crops := range body {
		ts, err := strconv.ParseInt(rawTs, 10, 64)
		if err != nil {
			errorResponse(w, r, http.StatusBadRequest, "calendar keys must be unix timestamps")
			return
		}
		slots[ts] = crops
	}

	origin, loopback := requestOrigin(r)

	result, err := h.calendarService.SubmitCalendar(r.Context(), origin, loopback, slots)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("calendar submission accepted",
		slog.String("origin", origin),
		slog.Int64("votes", result.Votes),
		slog.Bool("finalized", result.Finalized))

	writeJSON(w, http.StatusOK, result, nil)
}

// requestOrigin извлекает адрес отправителя запроса. Loopback-адреса
// помечаются отдельно: им нельзя доверять как независимым источникам.
func requestOrigin(r *http.Request) (string, bool) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return host, true
	}
	return ip.String(), ip.IsLoopback()
}
