package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"trading-journal-go/internal/accounting"
	"trading-journal-go/internal/config"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/stats"
	"trading-journal-go/internal/store"
)

// Handler holds dependencies for the API endpoints.
type Handler struct {
	log   *zap.Logger
	store store.Store
	cfg   *config.Config
}

// NewHandler creates a new Handler.
func NewHandler(log *zap.Logger, st store.Store, cfg *config.Config) *Handler {
	return &Handler{log: log, store: st, cfg: cfg}
}

// Register attaches all API routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)

	mux.HandleFunc("GET /api/trades", h.listTrades)
	mux.HandleFunc("POST /api/trades", h.createTrade)
	mux.HandleFunc("GET /api/trades/{id}", h.getTrade)
	mux.HandleFunc("PUT /api/trades/{id}", h.updateTrade)
	mux.HandleFunc("DELETE /api/trades/{id}", h.deleteTrade)
	mux.HandleFunc("POST /api/trades/{id}/close", h.closeTrade)

	mux.HandleFunc("GET /api/trades/stats/account", h.accountStats)
	mux.HandleFunc("GET /api/trades/stats/metrics", h.metrics)
	mux.HandleFunc("GET /api/trades/stats/daily", h.dailyStats)
	mux.HandleFunc("GET /api/trades/stats/monthly", h.monthlyStats)

	mux.HandleFunc("GET /api/videos", h.listVideos)
	mux.HandleFunc("POST /api/videos", h.createVideo)
	mux.HandleFunc("GET /api/videos/{id}", h.getVideo)
	mux.HandleFunc("PUT /api/videos/{id}", h.updateVideo)
	mux.HandleFunc("DELETE /api/videos/{id}", h.deleteVideo)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// pathID parses the {id} path segment. A zero return means the error response
// has already been written.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) uint {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid id")
		return 0
	}
	return uint(id)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Trading Journal API",
		"status":  "running",
		"endpoints": map[string]string{
			"trades":        "/api/trades",
			"account_stats": "/api/trades/stats/account",
			"metrics":       "/api/trades/stats/metrics",
			"daily_stats":   "/api/trades/stats/daily",
			"monthly_stats": "/api/trades/stats/monthly",
			"videos":        "/api/videos",
		},
	})
}

// tradeRequest is the mutable subset of a trade. Pointer fields distinguish
// "absent" from "zero" so PUT can apply partial updates.
type tradeRequest struct {
	Symbol     *string  `json:"symbol"`
	Direction  *string  `json:"direction"`
	EntryPrice *float64 `json:"entry_price"`
	ExitPrice  *float64 `json:"exit_price"`
	LotSize    *float64 `json:"lot_size"`
	WeeklyTF   *int     `json:"weekly_tf"`
	DailyTF    *int     `json:"daily_tf"`
	H4TF       *int     `json:"h4_tf"`
	H1TF       *int     `json:"h1_tf"`
	LowerTF    *int     `json:"lower_tf"`
	RiskReward *float64 `json:"risk_reward"`
	Notes      *string  `json:"notes"`
}

// decodeTradeRequest parses the body into the typed request and also reports
// which keys were present, so an explicit "exit_price": null (a reopen) can
// be told apart from an omitted field.
func decodeTradeRequest(r *http.Request) (tradeRequest, map[string]json.RawMessage, error) {
	var keys map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&keys); err != nil {
		return tradeRequest{}, nil, err
	}

	raw, err := json.Marshal(keys)
	if err != nil {
		return tradeRequest{}, nil, err
	}
	var req tradeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return tradeRequest{}, nil, err
	}
	return req, keys, nil
}

func (h *Handler) listTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.store.ListTrades(r.Context())
	if err != nil {
		h.log.Error("Failed to list trades", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get trades")
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	h.writeJSON(w, http.StatusOK, trades)
}

func (h *Handler) createTrade(w http.ResponseWriter, r *http.Request) {
	req, _, err := decodeTradeRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Symbol == nil || *req.Symbol == "" {
		h.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if req.Direction == nil || (*req.Direction != models.DirectionLong && *req.Direction != models.DirectionShort) {
		h.writeError(w, http.StatusBadRequest, "direction must be LONG or SHORT")
		return
	}
	if req.EntryPrice == nil || *req.EntryPrice <= 0 {
		h.writeError(w, http.StatusBadRequest, "entry_price must be a positive number")
		return
	}
	if req.LotSize == nil || *req.LotSize <= 0 {
		h.writeError(w, http.StatusBadRequest, "lot_size must be a positive number")
		return
	}

	trade := models.Trade{
		Symbol:     *req.Symbol,
		Direction:  *req.Direction,
		EntryPrice: *req.EntryPrice,
		ExitPrice:  req.ExitPrice,
		LotSize:    *req.LotSize,
		RiskReward: req.RiskReward,
	}
	if req.WeeklyTF != nil {
		trade.WeeklyTF = *req.WeeklyTF
	}
	if req.DailyTF != nil {
		trade.DailyTF = *req.DailyTF
	}
	if req.H4TF != nil {
		trade.H4TF = *req.H4TF
	}
	if req.H1TF != nil {
		trade.H1TF = *req.H1TF
	}
	if req.LowerTF != nil {
		trade.LowerTF = *req.LowerTF
	}
	if req.Notes != nil {
		trade.Notes = *req.Notes
	}

	accounting.Recalculate(&trade, time.Now().UTC())

	if err := h.store.CreateTrade(r.Context(), &trade); err != nil {
		h.log.Error("Failed to create trade", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to create trade")
		return
	}

	h.log.Info("Trade created",
		zap.Uint("id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.String("status", trade.Status))
	h.writeJSON(w, http.StatusCreated, trade)
}

func (h *Handler) getTrade(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(w, r)
	if id == 0 {
		return
	}

	trade, err := h.store.GetTrade(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Trade not found")
			return
		}
		h.log.Error("Failed to get trade", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get trade")
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

func (h *Handler) updateTrade(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(w, r)
	if id == 0 {
		return
	}

	trade, err := h.store.GetTrade(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Trade not found")
			return
		}
		h.log.Error("Failed to get trade", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get trade")
		return
	}

	req, keys, err := decodeTradeRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Symbol != nil {
		trade.Symbol = *req.Symbol
	}
	if req.Direction != nil {
		if *req.Direction != models.DirectionLong && *req.Direction != models.DirectionShort {
			h.writeError(w, http.StatusBadRequest, "direction must be LONG or SHORT")
			return
		}
		trade.Direction = *req.Direction
	}
	if req.EntryPrice != nil {
		trade.EntryPrice = *req.EntryPrice
	}
	if req.LotSize != nil {
		trade.LotSize = *req.LotSize
	}
	if req.WeeklyTF != nil {
		trade.WeeklyTF = *req.WeeklyTF
	}
	if req.DailyTF != nil {
		trade.DailyTF = *req.DailyTF
	}
	if req.H4TF != nil {
		trade.H4TF = *req.H4TF
	}
	if req.H1TF != nil {
		trade.H1TF = *req.H1TF
	}
	if req.LowerTF != nil {
		trade.LowerTF = *req.LowerTF
	}
	if req.RiskReward != nil {
		trade.RiskReward = req.RiskReward
	}
	if req.Notes != nil {
		trade.Notes = *req.Notes
	}

	// An exit_price key in the body always wins, including an explicit null,
	// which reopens the trade.
	if _, ok := keys["exit_price"]; ok {
		trade.ExitPrice = req.ExitPrice
	}

	accounting.Recalculate(trade, time.Now().UTC())

	if err := h.store.UpdateTrade(r.Context(), trade); err != nil {
		h.log.Error("Failed to update trade", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to update trade")
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

func (h *Handler) closeTrade(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(w, r)
	if id == 0 {
		return
	}

	trade, err := h.store.GetTrade(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Trade not found")
			return
		}
		h.log.Error("Failed to get trade", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get trade")
		return
	}

	var req struct {
		ExitPrice *float64 `json:"exit_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExitPrice == nil {
		h.writeError(w, http.StatusBadRequest, "exit_price is required")
		return
	}

	accounting.Close(trade, *req.ExitPrice, time.Now().UTC())

	if err := h.store.UpdateTrade(r.Context(), trade); err != nil {
		h.log.Error("Failed to close trade", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to close trade")
		return
	}

	h.log.Info("Trade closed",
		zap.Uint("id", trade.ID),
		zap.Float64("exit_price", *req.ExitPrice),
		zap.Float64("pnl", trade.PnL))
	h.writeJSON(w, http.StatusOK, trade)
}

func (h *Handler) deleteTrade(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(w, r)
	if id == 0 {
		return
	}

	if err := h.store.DeleteTrade(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Trade not found")
			return
		}
		h.log.Error("Failed to delete trade", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to delete trade")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) accountStats(w http.ResponseWriter, r *http.Request) {
	startingBalance := h.cfg.Journal.StartingBalance
	if v := r.URL.Query().Get("starting_balance"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid starting_balance")
			return
		}
		startingBalance = parsed
	}

	trades, err := h.store.ListTrades(r.Context())
	if err != nil {
		h.log.Error("Failed to list trades for account stats", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}
	h.writeJSON(w, http.StatusOK, stats.Account(trades, startingBalance))
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	closed, err := h.store.ListTradesByStatus(r.Context(), models.StatusClosed)
	if err != nil {
		h.log.Error("Failed to list trades for metrics", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}
	h.writeJSON(w, http.StatusOK, stats.ComputeMetrics(closed))
}

func (h *Handler) dailyStats(w http.ResponseWriter, r *http.Request) {
	closed, err := h.store.ListTradesByStatus(r.Context(), models.StatusClosed)
	if err != nil {
		h.log.Error("Failed to list trades for daily stats", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}
	h.writeJSON(w, http.StatusOK, stats.Daily(closed))
}

func (h *Handler) monthlyStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			h.writeError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = parsed
	}

	closed, err := h.store.ListTradesByStatus(r.Context(), models.StatusClosed)
	if err != nil {
		h.log.Error("Failed to list trades for monthly stats", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}
	h.writeJSON(w, http.StatusOK, stats.Monthly(closed, year, month))
}

// videoRequest mirrors tradeRequest for the video resource.
type videoRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	VideoURL     *string `json:"video_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Category     *string `json:"category"`
	Duration     *string `json:"duration"`
	IsFeatured   *bool   `json:"is_featured"`
}

func (h *Handler) listVideos(w http.ResponseWriter, r *http.Request) {
	filter := store.VideoFilter{
		Category: r.URL.Query().Get("category"),
		Featured: r.URL.Query().Get("featured") == "true",
	}

	videos, err := h.store.ListVideos(r.Context(), filter)
	if err != nil {
		h.log.Error("Failed to list videos", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get videos")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	h.writeJSON(w, http.StatusOK, videos)
}

func (h *Handler) createVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == nil || *req.Title == "" {
		h.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.VideoURL == nil || *req.VideoURL == "" {
		h.writeError(w, http.StatusBadRequest, "video_url is required")
		return
	}

	video := models.Video{
		Title:    *req.Title,
		VideoURL: *req.VideoURL,
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.ThumbnailURL != nil {
		video.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Category != nil {
		video.Category = *req.Category
	}
	if req.Duration != nil {
		video.Duration = *req.Duration
	}
	if req.IsFeatured != nil {
		video.IsFeatured = *req.IsFeatured
	}

	if err := h.store.CreateVideo(r.Context(), &video); err != nil {
		h.log.Error("Failed to create video", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to create video")
		return
	}
	h.writeJSON(w, http.StatusCreated, video)
}

func (h *Handler) getVideo(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(w, r)
	if id == 0 {
		return
	}

	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		h.log.Error("Failed to get video", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get video")
		return
	}

	// Viewing a video bumps its counter. A lost update on a racing view is
	// acceptable for a personal library.
	video.ViewCount++
	if err := h.store.UpdateVideo(r.Context(), video); err != nil {
		h.log.Warn("Failed to record video view", zap.Uint("id", id), zap.Error(err))
	}

	h.writeJSON(w, http.StatusOK, video)
}

func (h *Handler) updateVideo(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(w, r)
	if id == 0 {
		return
	}

	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		h.log.Error("Failed to get video", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to get video")
		return
	}

	var req videoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.VideoURL != nil {
		video.VideoURL = *req.VideoURL
	}
	if req.ThumbnailURL != nil {
		video.ThumbnailURL = *req.ThumbnailURL
	}
	if req.Category != nil {
		video.Category = *req.Category
	}
	if req.Duration != nil {
		video.Duration = *req.Duration
	}
	if req.IsFeatured != nil {
		video.IsFeatured = *req.IsFeatured
	}

	if err := h.store.UpdateVideo(r.Context(), video); err != nil {
		h.log.Error("Failed to update video", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to update video")
		return
	}
	h.writeJSON(w, http.StatusOK, video)
}

func (h *Handler) deleteVideo(w http.ResponseWriter, r *http.Request) {
	id := h.pathID(w, r)
	if id == 0 {
		return
	}

	if err := h.store.DeleteVideo(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Video not found")
			return
		}
		h.log.Error("Failed to delete video", zap.Uint("id", id), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to delete video")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}
