package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/skyblock-api/services"
	"github.com/go-chi/chi/v5"
)

type ProfileHandler struct {
	refreshService *services.RefreshService
	contestService *services.ContestService
	logger         *slog.Logger
}

func NewProfileHandler(refreshService *services.RefreshService, contestService *services.ContestService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		refreshService: refreshService,
		contestService: contestService,
		logger:         logger,
	}
}

// IngestPlayer godoc
// @Summary Fetch and ingest a player's profiles
// @Description Pulls the player's current profile snapshot from the upstream API and persists it.
// @Tags players
// @Produce json
// @Param playerUuid path string true "Player UUID (with or without hyphens)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Player not found upstream"
// @Failure 502 {object} map[string]interface{} "Upstream API failure"
// @Router /players/{playerUuid}/ingest [post]
func (h *ProfileHandler) IngestPlayer(w http.ResponseWriter, r *http.Request) {
	playerUUID := normalizeUUID(chi.URLParam(r, "playerUuid"))
	if playerUUID == "" {
		errorResponse(w, r, http.StatusBadRequest, "player UUID is required")
		return
	}

	profiles, err := h.refreshService.RefreshPlayer(r.Context(), playerUUID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("player snapshot ingested",
		slog.String("player_uuid", playerUUID), slog.Int("profiles", len(profiles)))

	writeJSON(w, http.StatusOK, jsonResponse{
		"player_uuid": playerUUID,
		"profiles":    profiles,
	}, nil)
}

// PlayerContestHistory godoc
// @Summary Player's farming contest history
// @Tags players
// @Produce json
// @Param playerUuid path string true "Player UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Player unknown"
// @Router /players/{playerUuid}/contests [get]
func (h *ProfileHandler) PlayerContestHistory(w http.ResponseWriter, r *http.Request) {
	playerUUID := normalizeUUID(chi.URLParam(r, "playerUuid"))
	if playerUUID == "" {
		errorResponse(w, r, http.StatusBadRequest, "player UUID is required")
		return
	}

	participations, err := h.contestService.GetPlayerContestHistory(r.Context(), playerUUID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"player_uuid":    playerUUID,
		"participations": participations,
	}, nil)
}

// normalizeUUID приводит UUID к формату без дефисов, как его хранит upstream.
func normalizeUUID(raw string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "-", ""))
}
