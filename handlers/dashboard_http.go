package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"sorabackend/appctx"
	"sorabackend/core"
	"sorabackend/middleware"
	"sorabackend/models/api"
)

const maxRequestBodyBytes = 1 << 16

type DashboardHTTPHandler struct {
	handler *DashboardAPIHandler
}

func NewDashboardHTTPHandler(handler *DashboardAPIHandler) *DashboardHTTPHandler {
	return &DashboardHTTPHandler{
		handler: handler,
	}
}

// SetupEndpoints registers the dashboard API. Only the stats endpoint is public.
func (h *DashboardHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.ClerkAuthMiddleware) {
	apiRouter := router.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/stats", h.HandleGetStats).Methods(http.MethodGet)
	apiRouter.HandleFunc("/guilds", authMiddleware.WithAuth(h.HandleListGuilds)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/guilds/{guildId}/exists", authMiddleware.WithAuth(h.HandleGuildExists)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/guilds/{guildId}/starboard", authMiddleware.WithAuth(h.HandleGetStarboard)).Methods(http.MethodGet)
	apiRouter.HandleFunc("/guilds/{guildId}/starboard", authMiddleware.WithAuth(h.HandleEditStarboard)).Methods(http.MethodPut)
}

func (h *DashboardHTTPHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	slog.Debug("📊 Get stats request received", "remote_addr", r.RemoteAddr)

	stats, err := h.handler.GetStats(r.Context())
	if err != nil {
		h.writeErrorResponse(w, err, "failed to get stats")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, stats)
}

func (h *DashboardHTTPHandler) HandleListGuilds(w http.ResponseWriter, r *http.Request) {
	slog.Debug("📋 List guilds request received", "remote_addr", r.RemoteAddr)

	userID, ok := appctx.GetDiscordUserID(r.Context())
	if !ok {
		slog.Warn("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	guilds, err := h.handler.ListGuilds(r.Context(), userID)
	if err != nil {
		h.writeErrorResponse(w, err, "failed to list guilds")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, guilds)
}

func (h *DashboardHTTPHandler) HandleGuildExists(w http.ResponseWriter, r *http.Request) {
	guildID, ok := h.guildIDFromPath(w, r)
	if !ok {
		return
	}

	response, err := h.handler.GuildExists(r.Context(), guildID)
	if err != nil {
		h.writeErrorResponse(w, err, "failed to check guild")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

func (h *DashboardHTTPHandler) HandleGetStarboard(w http.ResponseWriter, r *http.Request) {
	slog.Debug("📋 Get starboard request received", "remote_addr", r.RemoteAddr)

	userID, ok := appctx.GetDiscordUserID(r.Context())
	if !ok {
		slog.Warn("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	guildID, ok := h.guildIDFromPath(w, r)
	if !ok {
		return
	}

	settings, err := h.handler.GetStarboard(r.Context(), userID, guildID)
	if err != nil {
		h.writeErrorResponse(w, err, "failed to get starboard")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, settings)
}

func (h *DashboardHTTPHandler) HandleEditStarboard(w http.ResponseWriter, r *http.Request) {
	slog.Debug("✏️ Edit starboard request received", "remote_addr", r.RemoteAddr)

	userID, ok := appctx.GetDiscordUserID(r.Context())
	if !ok {
		slog.Warn("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	guildID, ok := h.guildIDFromPath(w, r)
	if !ok {
		return
	}

	var req api.EditStarboardRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&req); err != nil {
		slog.Warn("❌ Failed to parse request body", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Disabled && !core.IsValidSnowflake(req.ChannelID) {
		slog.Warn("❌ Missing or invalid channel_id in request", "channel_id", req.ChannelID)
		http.Error(w, "channel_id must be a valid Discord id", http.StatusBadRequest)
		return
	}

	settings, err := h.handler.EditStarboard(r.Context(), userID, guildID, req)
	if err != nil {
		h.writeErrorResponse(w, err, "failed to edit starboard")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, settings)
}

func (h *DashboardHTTPHandler) guildIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	guildID, ok := mux.Vars(r)["guildId"]
	if !ok || !core.IsValidSnowflake(guildID) {
		slog.Warn("❌ Missing or invalid guild ID in URL path", "guild_id", guildID)
		http.Error(w, "guild ID must be a valid Discord id", http.StatusBadRequest)
		return "", false
	}
	return guildID, true
}

func (h *DashboardHTTPHandler) writeErrorResponse(w http.ResponseWriter, err error, fallback string) {
	switch {
	case core.IsForbiddenError(err):
		http.Error(w, "forbidden", http.StatusForbidden)
	case core.IsInvalidArgumentError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case core.IsNotFoundError(err):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, fallback, http.StatusInternalServerError)
	}
}

func (h *DashboardHTTPHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("❌ Failed to encode JSON response", "error", err)
	}
}
