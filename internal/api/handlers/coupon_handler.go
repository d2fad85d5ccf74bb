package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Cheertaboi/coupon-board/internal/api/middleware"
	"github.com/Cheertaboi/coupon-board/internal/models"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

// Board is the coupon board as seen by the HTTP layer.
type Board interface {
	SelectFilter(f models.Filter)
	Filter() models.Filter
	ViewFor(f models.Filter) []models.Coupon
	BestDeal() (models.Coupon, bool)
	CopyCoupon(code string) (models.Coupon, error)
	LastCopied() (string, bool)
	Snapshot() service.Snapshot
}

// BoardFor resolves the board owned by the request's session.
type BoardFor func(r *http.Request) (Board, error)

// StaticBoard serves every request from one board.
func StaticBoard(b Board) BoardFor {
	return func(*http.Request) (Board, error) { return b, nil }
}

// --- Request / Response DTOs ---

type SelectFilterRequest struct {
	Filter string `json:"filter" validate:"required,oneof=all code sale app student"`
}

type CopyRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type CouponResponse struct {
	models.Coupon
	Copyable bool `json:"copyable"`
}

type CouponListResponse struct {
	Filter  models.Filter    `json:"filter"`
	Coupons []CouponResponse `json:"coupons"`
}

type StateResponse struct {
	Filter     models.Filter `json:"filter"`
	LastCopied *string       `json:"last_copied"`
}

type CopyResponse struct {
	Copied string `json:"copied"`
}

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

// --- Handler struct & constructor ---

type CouponHandler struct {
	boards   BoardFor
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCouponHandler(boards BoardFor, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{
		boards:   boards,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = middleware.RequestIDFrom(r.Context())
	writeJSON(w, status, e)
}

// boardOr writes a 503 and returns false when the session has no board.
func boardOr(w http.ResponseWriter, r *http.Request, boards BoardFor, logger *zap.Logger) (Board, bool) {
	b, err := boards(r)
	if err != nil {
		logger.Error("resolve board",
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusServiceUnavailable, "board_unavailable", "coupon board unavailable")
		return nil, false
	}
	return b, true
}

func stateOf(b Board) StateResponse {
	resp := StateResponse{Filter: b.Filter()}
	if code, ok := b.LastCopied(); ok {
		resp.LastCopied = &code
	}
	return resp
}

func toResponse(cs []models.Coupon) []CouponResponse {
	out := make([]CouponResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, CouponResponse{Coupon: c, Copyable: c.Copyable()})
	}
	return out
}

// --- Handlers ---

// ListCoupons handles GET /api/coupons
// ?filter= selects a view without changing the page's selected filter.
func (h *CouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	board, ok := boardOr(w, r, h.boards, h.logger)
	if !ok {
		return
	}
	f := board.Filter()
	if raw := r.URL.Query().Get("filter"); raw != "" {
		parsed, err := models.ParseFilter(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unknown_filter", err.Error())
			return
		}
		f = parsed
	}

	writeJSON(w, http.StatusOK, CouponListResponse{
		Filter:  f,
		Coupons: toResponse(board.ViewFor(f)),
	})
}

// BestDeal handles GET /api/best-deal
func (h *CouponHandler) BestDeal(w http.ResponseWriter, r *http.Request) {
	board, ok := boardOr(w, r, h.boards, h.logger)
	if !ok {
		return
	}
	best, ok := board.BestDeal()
	if !ok {
		writeError(w, r, http.StatusNotFound, "no_featured_coupon", "no coupon is featured")
		return
	}
	writeJSON(w, http.StatusOK, CouponResponse{Coupon: best, Copyable: best.Copyable()})
}

// SelectFilter handles PUT /api/filter for the caller's session.
func (h *CouponHandler) SelectFilter(w http.ResponseWriter, r *http.Request) {
	var req SelectFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown_filter", err.Error())
		return
	}

	f, err := models.ParseFilter(req.Filter)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown_filter", err.Error())
		return
	}
	board, ok := boardOr(w, r, h.boards, h.logger)
	if !ok {
		return
	}
	board.SelectFilter(f)
	writeJSON(w, http.StatusOK, stateOf(board))
}

// CopyCode handles POST /api/copy
// The acknowledgment is optimistic: a failed clipboard write is logged by the
// board but the code is still reported as copied.
func (h *CouponHandler) CopyCode(w http.ResponseWriter, r *http.Request) {
	var req CopyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_code", err.Error())
		return
	}

	board, ok := boardOr(w, r, h.boards, h.logger)
	if !ok {
		return
	}
	if _, err := board.CopyCoupon(req.Code); err != nil {
		if errors.Is(err, service.ErrCodeNotFound) {
			writeError(w, r, http.StatusNotFound, "code_not_found", err.Error())
			return
		}
		h.logger.Warn("copy acknowledged despite clipboard error",
			zap.String("request_id", middleware.RequestIDFrom(r.Context())),
			zap.String("code", req.Code),
			zap.Error(err),
		)
	}
	writeJSON(w, http.StatusOK, CopyResponse{Copied: req.Code})
}

// State handles GET /api/state
func (h *CouponHandler) State(w http.ResponseWriter, r *http.Request) {
	board, ok := boardOr(w, r, h.boards, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(board))
}
