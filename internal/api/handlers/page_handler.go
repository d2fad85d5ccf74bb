package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/coupon-board/internal/catalog"
	"github.com/Cheertaboi/coupon-board/internal/models"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type pageData struct {
	Page        catalog.Page
	Storefront  string
	Filters     []models.FilterTab
	Snap        service.Snapshot
	CopyResetMS int64
}

type PageHandler struct {
	boards     BoardFor
	page       catalog.Page
	storefront string
	copyReset  time.Duration
	logger     *zap.Logger
}

func NewPageHandler(boards BoardFor, page catalog.Page, storefront string, copyReset time.Duration, logger *zap.Logger) *PageHandler {
	if copyReset <= 0 {
		copyReset = service.DefaultResetDelay
	}
	return &PageHandler{boards: boards, page: page, storefront: storefront, copyReset: copyReset, logger: logger}
}

// Index handles GET /
// Every load is a fresh page: the filter comes from ?filter= and defaults to
// all, whatever the session selected before.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	f := models.FilterAll
	if raw := r.URL.Query().Get("filter"); raw != "" {
		parsed, err := models.ParseFilter(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f = parsed
	}

	board, err := h.boards(r)
	if err != nil {
		h.logger.Error("resolve board", zap.Error(err))
		http.Error(w, "coupon board unavailable", http.StatusServiceUnavailable)
		return
	}
	board.SelectFilter(f)

	data := pageData{
		Page:        h.page,
		Storefront:  h.storefront,
		Filters:     models.Filters,
		Snap:        board.Snapshot(),
		CopyResetMS: h.copyReset.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		h.logger.Error("render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// Shop handles GET /shop
func (h *PageHandler) Shop(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.storefront, http.StatusFound)
}
