package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Cheertaboi/coupon-board/internal/catalog"
	"github.com/Cheertaboi/coupon-board/internal/clipboard"
	"github.com/Cheertaboi/coupon-board/internal/models"
)

// DefaultResetDelay is how long a copied code stays acknowledged.
const DefaultResetDelay = 2 * time.Second

var ErrCodeNotFound = errors.New("coupon code not found")

type EventType string

const (
	EventFilterSelected EventType = "filter_selected"
	EventCodeCopied     EventType = "code_copied"
	EventCopyCleared    EventType = "copy_cleared"
)

// Event describes a board state transition.
type Event struct {
	Type   EventType     `json:"type"`
	Filter models.Filter `json:"filter,omitempty"`
	Code   string        `json:"code,omitempty"`
}

// Observer is called after every state transition, outside the state lock.
// Copy events are delivered in copy order, so an observer must not copy on
// the same board.
type Observer func(Event)

type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, f func()) stopper

func realAfterFunc(d time.Duration, f func()) stopper {
	return time.AfterFunc(d, f)
}

type Option func(*CouponBoard)

func WithClipboard(w clipboard.Writer) Option {
	return func(b *CouponBoard) { b.clip = w }
}

func WithResetDelay(d time.Duration) Option {
	return func(b *CouponBoard) {
		if d > 0 {
			b.delay = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(b *CouponBoard) { b.observer = o }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *CouponBoard) {
		if l != nil {
			b.logger = l
		}
	}
}

// Snapshot is a consistent view of the board for rendering.
type Snapshot struct {
	Filter     models.Filter
	LastCopied string
	Copied     bool
	Best       *models.Coupon
	View       []models.Coupon
}

// IsCopied reports whether code is the currently acknowledged copy.
func (s Snapshot) IsCopied(code string) bool {
	return s.Copied && code != "" && s.LastCopied == code
}

// CouponBoard holds the ranked coupon list and the page's UI state:
// the selected filter and the last copied code.
type CouponBoard struct {
	coupons  []models.Coupon
	position map[string]int // catalog load order, used for best-deal ties

	clip     clipboard.Writer
	delay    time.Duration
	observer Observer
	logger   *zap.Logger
	after    afterFunc

	// copyMu orders whole copies (clipboard write, state, event) and clears
	// against each other; mu guards the fields below.
	copyMu sync.Mutex

	mu         sync.Mutex
	filter     models.Filter
	lastCopied string
	copied     bool
	generation uint64
	timer      stopper
	closed     bool
}

// NewCouponBoard loads the coupon set from src and ranks it by savings,
// highest first. Equal savings keep their load order.
func NewCouponBoard(ctx context.Context, src catalog.Source, opts ...Option) (*CouponBoard, error) {
	coupons, err := src.ListCoupons(ctx)
	if err != nil {
		return nil, fmt.Errorf("load coupons: %w", err)
	}

	b := &CouponBoard{
		coupons:  coupons,
		position: make(map[string]int, len(coupons)),
		clip:     clipboard.Nop{},
		delay:    DefaultResetDelay,
		logger:   zap.NewNop(),
		after:    realAfterFunc,
		filter:   models.FilterAll,
	}
	for _, opt := range opts {
		opt(b)
	}

	for i, c := range b.coupons {
		if _, dup := b.position[c.ID]; dup {
			return nil, fmt.Errorf("load coupons: duplicate id %q", c.ID)
		}
		b.position[c.ID] = i
	}
	slices.SortStableFunc(b.coupons, func(x, y models.Coupon) int {
		return cmp.Compare(y.SavingsValue, x.SavingsValue)
	})

	b.logger.Debug("coupon board initialized", zap.Int("coupons", len(b.coupons)))
	return b, nil
}

// Coupons returns the full ranked list.
func (b *CouponBoard) Coupons() []models.Coupon {
	return slices.Clone(b.coupons)
}

// Lookup finds a coupon by its code.
func (b *CouponBoard) Lookup(code string) (models.Coupon, bool) {
	for _, c := range b.coupons {
		if c.Code == code {
			return c, true
		}
	}
	return models.Coupon{}, false
}

func (b *CouponBoard) SelectFilter(f models.Filter) {
	b.mu.Lock()
	b.filter = f
	b.mu.Unlock()

	b.emit(Event{Type: EventFilterSelected, Filter: f})
}

func (b *CouponBoard) Filter() models.Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// FilteredView returns the coupons matching the selected filter, in rank order.
func (b *CouponBoard) FilteredView() []models.Coupon {
	return b.ViewFor(b.Filter())
}

// ViewFor computes the view for f without changing the selected filter.
func (b *CouponBoard) ViewFor(f models.Filter) []models.Coupon {
	if f == models.FilterAll {
		return slices.Clone(b.coupons)
	}
	out := make([]models.Coupon, 0, len(b.coupons))
	for _, c := range b.coupons {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}

// BestDeal returns the featured coupon with the highest savings. Ties go to
// the coupon loaded first. ok is false when nothing is featured.
func (b *CouponBoard) BestDeal() (best models.Coupon, ok bool) {
	for _, c := range b.coupons {
		if !c.Featured {
			continue
		}
		if !ok || c.SavingsValue > best.SavingsValue ||
			(c.SavingsValue == best.SavingsValue && b.position[c.ID] < b.position[best.ID]) {
			best, ok = c, true
		}
	}
	return best, ok
}

// CopyCode writes code to the clipboard and acknowledges it until the reset
// delay elapses or a newer copy supersedes it. The acknowledgment is set even
// when the clipboard write fails; the write error is returned.
func (b *CouponBoard) CopyCode(code string) error {
	b.copyMu.Lock()
	defer b.copyMu.Unlock()

	werr := b.clip.WriteText(code)
	if werr != nil {
		b.logger.Warn("clipboard write failed", zap.String("code", code), zap.Error(werr))
	}

	b.mu.Lock()
	b.generation++
	gen := b.generation
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.lastCopied = code
	b.copied = true
	if !b.closed {
		b.timer = b.after(b.delay, func() { b.expire(gen) })
	}
	b.mu.Unlock()

	b.emit(Event{Type: EventCodeCopied, Code: code})

	if werr != nil {
		return fmt.Errorf("copy %q: %w", code, werr)
	}
	return nil
}

// CopyCoupon copies the code of a copyable coupon on the board.
func (b *CouponBoard) CopyCoupon(code string) (models.Coupon, error) {
	c, ok := b.Lookup(code)
	if !ok || !c.Copyable() {
		return models.Coupon{}, fmt.Errorf("%w: %q", ErrCodeNotFound, code)
	}
	return c, b.CopyCode(code)
}

// expire clears the acknowledgment only if no newer copy happened since the
// timer for gen was scheduled.
func (b *CouponBoard) expire(gen uint64) {
	b.copyMu.Lock()
	defer b.copyMu.Unlock()

	b.mu.Lock()
	if gen != b.generation || !b.copied {
		b.mu.Unlock()
		return
	}
	code := b.lastCopied
	b.lastCopied = ""
	b.copied = false
	b.timer = nil
	b.mu.Unlock()

	b.emit(Event{Type: EventCopyCleared, Code: code})
}

// LastCopied returns the code currently acknowledged as copied.
func (b *CouponBoard) LastCopied() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCopied, b.copied
}

func (b *CouponBoard) IsCopied(code string) bool {
	last, ok := b.LastCopied()
	return ok && code != "" && last == code
}

func (b *CouponBoard) Snapshot() Snapshot {
	b.mu.Lock()
	s := Snapshot{
		Filter:     b.filter,
		LastCopied: b.lastCopied,
		Copied:     b.copied,
	}
	b.mu.Unlock()

	if best, ok := b.BestDeal(); ok {
		s.Best = &best
	}
	s.View = b.ViewFor(s.Filter)
	return s
}

// Close stops a pending reset timer. Later copies are still acknowledged
// but never cleared.
func (b *CouponBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *CouponBoard) emit(e Event) {
	if b.observer != nil {
		b.observer(e)
	}
}
