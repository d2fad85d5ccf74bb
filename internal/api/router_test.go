package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Cheertaboi/coupon-board/internal/api/handlers"
	"github.com/Cheertaboi/coupon-board/internal/api/middleware"
	"github.com/Cheertaboi/coupon-board/internal/catalog"
	"github.com/Cheertaboi/coupon-board/internal/events"
	"github.com/Cheertaboi/coupon-board/internal/models"
	"github.com/Cheertaboi/coupon-board/internal/service"
)

const storefront = "https://www.jdsports.ca"

type testEnv struct {
	sessions *service.SessionStore
	hub      *events.Hub
	handler  http.Handler
}

func newEnv(t *testing.T, coupons []models.Coupon) *testEnv {
	return newEnvWithDelay(t, coupons, time.Hour)
}

func newEnvWithDelay(t *testing.T, coupons []models.Coupon, reset time.Duration) *testEnv {
	t.Helper()
	hub := events.NewHub()
	sessions := service.NewSessionStore(func(ctx context.Context, id string) (*service.CouponBoard, error) {
		return service.NewCouponBoard(ctx, catalog.NewStaticSource(coupons),
			service.WithResetDelay(reset),
			service.WithObserver(handlers.BoardEventPublisher(hub, id, nil)),
		)
	}, time.Hour)
	t.Cleanup(sessions.Close)

	return &testEnv{
		sessions: sessions,
		hub:      hub,
		handler: NewRouter(Deps{
			Sessions:   sessions,
			Hub:        hub,
			Page:       catalog.DefaultPage(),
			Storefront: storefront,
			CopyReset:  2 * time.Second,
		}),
	}
}

// visitor is one browser: it keeps the cookies the server hands it.
type visitor struct {
	env     *testEnv
	cookies []*http.Cookie
}

func (e *testEnv) visitor() *visitor {
	return &visitor{env: e}
}

func (v *visitor) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range v.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	v.env.handler.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		v.cookies = cs
	}
	return rec
}

func (v *visitor) page(t *testing.T, target string) *goquery.Document {
	t.Helper()
	rec := v.do(t, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func (v *visitor) session() string {
	for _, c := range v.cookies {
		if c.Name == middleware.SessionCookie {
			return c.Value
		}
	}
	return ""
}

func (v *visitor) board(t *testing.T) *service.CouponBoard {
	t.Helper()
	b, ok := v.env.sessions.Lookup(v.session())
	require.True(t, ok, "visitor has no board")
	return b
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e handlers.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e.Error.Code
}

func copiedLabels(doc *goquery.Document) []string {
	var out []string
	doc.Find("button.copy").Each(func(_ int, s *goquery.Selection) {
		if s.Text() == s.AttrOr("data-copied-label", "") {
			out = append(out, s.AttrOr("data-code", ""))
		}
	})
	return out
}

func TestPageRendersBoard(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	doc := env.visitor().page(t, "/")

	assert.Equal(t, "JD Sports Canada - Best Discount Coupons", doc.Find("title").Text())
	assert.Contains(t, doc.Find("header h1").Text(), "JD Sports Canada")

	best := doc.Find("#best-deal")
	require.Equal(t, 1, best.Length())
	assert.Equal(t, "65% OFF", best.Find(".badge").Text())
	assert.Contains(t, best.Find(".description").Text(), "Jordan Essentials")
	assert.Equal(t, 0, best.Find("button.copy").Length(), "sale coupons have no copy button")
	assert.Contains(t, best.Find(".expiry").Text(), "Expires: While stocks last")

	tabs := doc.Find("nav.tabs a.tab")
	assert.Equal(t, 5, tabs.Length())
	assert.Equal(t, "all", doc.Find("a.tab.active").AttrOr("data-filter", ""))

	cards := doc.Find("article.card")
	require.Equal(t, 10, cards.Length())
	assert.Equal(t, "8", cards.First().AttrOr("data-id", ""), "highest savings first")
	assert.Equal(t, "7", cards.Last().AttrOr("data-id", ""), "free shipping last")
	assert.Equal(t, 5, doc.Find("article.card.featured").Length())
	assert.Equal(t, 10, doc.Find(".tag.verified").Length())

	assert.Equal(t, 5, doc.Find(".tips li").Length())
	assert.Equal(t, "2000", doc.Find("body").AttrOr("data-copy-reset-ms", ""))

	doc.Find("a.shop").Each(func(_ int, s *goquery.Selection) {
		assert.Equal(t, storefront, s.AttrOr("href", ""))
		assert.Equal(t, "_blank", s.AttrOr("target", ""))
		assert.Equal(t, "noopener noreferrer", s.AttrOr("rel", ""))
	})
}

func TestPageFilterSelectsCategory(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	v := env.visitor()
	doc := v.page(t, "/?filter=code")

	assert.Equal(t, "code", doc.Find("a.tab.active").AttrOr("data-filter", ""))
	cards := doc.Find("article.card")
	require.Equal(t, 2, cards.Length())
	cards.Each(func(_ int, s *goquery.Selection) {
		assert.Equal(t, "code", s.AttrOr("data-type", ""))
		assert.Equal(t, 1, s.Find("button.copy").Length())
	})
	assert.Equal(t, models.FilterCode, v.board(t).Filter())

	// a plain load is a fresh page
	doc = v.page(t, "/")
	assert.Equal(t, "all", doc.Find("a.tab.active").AttrOr("data-filter", ""))
	assert.Equal(t, 10, doc.Find("article.card").Length())

	doc = v.page(t, "/?filter=sale")
	assert.Equal(t, 6, doc.Find("article.card").Length())
	assert.Equal(t, 6, doc.Find("article.card a.btn.block.shop").Length())
}

func TestPageUnknownFilter(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	rec := env.visitor().do(t, http.MethodGet, "/?filter=clearance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.sessions.Len(), "rejected before a board is made")
}

func TestPageShowsCopiedLabel(t *testing.T) {
	env := newEnv(t, []models.Coupon{
		{ID: "1", Code: "JDS15", DiscountLabel: "$15 OFF", Type: models.TypeCode, Featured: true, SavingsValue: 15},
		{ID: "2", Code: "JDS10", DiscountLabel: "$10 OFF", Type: models.TypeCode, SavingsValue: 10},
	})
	v := env.visitor()

	doc := v.page(t, "/")
	assert.Equal(t, "COPY CODE: JDS15", doc.Find("#best-deal button.copy").Text())

	rec := v.do(t, http.MethodPost, "/api/copy", `{"code":"JDS15"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	doc = v.page(t, "/")
	assert.Equal(t, "✓ COPIED!", doc.Find("#best-deal button.copy").Text())
	assert.Equal(t, "✓ Copied!", doc.Find(`article[data-id="1"] button.copy`).Text())
	assert.Equal(t, "Copy: JDS10", doc.Find(`article[data-id="2"] button.copy`).Text())
}

func TestVisitorsDoNotShareState(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	a, b := env.visitor(), env.visitor()

	docA := a.page(t, "/?filter=student")
	assert.Equal(t, 1, docA.Find("article.card").Length())
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/copy", `{"code":"JDS15"}`).Code)
	require.NotEqual(t, a.session(), "")

	docB := b.page(t, "/")
	assert.NotEqual(t, a.session(), b.session())
	assert.Equal(t, 10, docB.Find("article.card").Length())
	assert.Equal(t, "all", docB.Find("a.tab.active").AttrOr("data-filter", ""))
	assert.Empty(t, copiedLabels(docB))
	assert.Equal(t, "Copy: JDS15", docB.Find(`button.copy[data-code="JDS15"]`).Text())

	rec := b.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filter":"all","last_copied":null}`, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/state", "")
	assert.JSONEq(t, `{"filter":"student","last_copied":"JDS15"}`, rec.Body.String())
	assert.Equal(t, []string{"JDS15"}, copiedLabels(a.page(t, "/?filter=code")))
}

func TestPageWithoutFeaturedCoupons(t *testing.T) {
	env := newEnv(t, []models.Coupon{{ID: "1", Code: "X", Type: models.TypeSale, SavingsValue: 5}})
	doc := env.visitor().page(t, "/")
	assert.Equal(t, 0, doc.Find("#best-deal").Length())
	assert.Equal(t, 1, doc.Find("article.card").Length())
}

func TestListCouponsAPI(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	v := env.visitor()

	rec := v.do(t, http.MethodGet, "/api/coupons", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all handlers.CouponListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, models.FilterAll, all.Filter)
	require.Len(t, all.Coupons, 10)
	assert.Equal(t, "JORDAN65", all.Coupons[0].Code)
	assert.False(t, all.Coupons[0].Copyable)

	rec = v.do(t, http.MethodGet, "/api/coupons?filter=student", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var student handlers.CouponListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &student))
	require.Len(t, student.Coupons, 1)
	assert.Equal(t, "STUDENT15", student.Coupons[0].Code)
	assert.Equal(t, models.FilterAll, v.board(t).Filter(), "query does not change selection")

	rec = v.do(t, http.MethodGet, "/api/coupons?filter=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_filter", errorCode(t, rec))
}

func TestBestDealAPI(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	rec := env.visitor().do(t, http.MethodGet, "/api/best-deal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var best handlers.CouponResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &best))
	assert.Equal(t, "8", best.ID)
	assert.EqualValues(t, 65, best.SavingsValue)

	empty := newEnv(t, []models.Coupon{{ID: "1", Type: models.TypeSale}})
	rec = empty.visitor().do(t, http.MethodGet, "/api/best-deal", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_featured_coupon", errorCode(t, rec))
}

func TestSelectFilterAPI(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	v := env.visitor()

	rec := v.do(t, http.MethodPut, "/api/filter", `{"filter":"app"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filter":"app","last_copied":null}`, rec.Body.String())
	assert.Equal(t, models.FilterApp, v.board(t).Filter())

	rec = v.do(t, http.MethodPut, "/api/filter", `{"filter":"clearance"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_filter", errorCode(t, rec))

	rec = v.do(t, http.MethodPut, "/api/filter", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = v.do(t, http.MethodPut, "/api/filter", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", errorCode(t, rec))

	assert.Equal(t, models.FilterApp, v.board(t).Filter())
	assert.Equal(t, 1, env.sessions.Len())
}

func TestCopyAPI(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	v := env.visitor()

	rec := v.do(t, http.MethodPost, "/api/copy", `{"code":"JDS10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"copied":"JDS10"}`, rec.Body.String())

	rec = v.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"filter":"all","last_copied":"JDS10"}`, rec.Body.String())

	rec = v.do(t, http.MethodPost, "/api/copy", `{"code":"SALE60"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "code_not_found", errorCode(t, rec))

	rec = v.do(t, http.MethodPost, "/api/copy", `{"code":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_code", errorCode(t, rec))

	last, ok := v.board(t).LastCopied()
	require.True(t, ok)
	assert.Equal(t, "JDS10", last)
}

func TestShopRedirectAndHealth(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	v := env.visitor()

	rec := v.do(t, http.MethodGet, "/shop", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, storefront, rec.Header().Get("Location"))

	rec = v.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Empty(t, rec.Result().Cookies(), "no session outside the board routes")
}

func TestPanicStillLogsAccessLine(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := newEnv(t, catalog.Coupons())
	mux := newMux(Deps{Sessions: env.sessions, Hub: env.hub, Logger: zap.New(core)})
	mux.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")

	access := logs.FilterMessage("http").All()
	require.Len(t, access, 1)
	fields := access[0].ContextMap()
	assert.Equal(t, "/boom", fields["path"])
	assert.EqualValues(t, http.StatusInternalServerError, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

// --- streaming ---

type sseReader struct {
	r *bufio.Reader
}

// next returns the next event, skipping frame framing lines.
func (s sseReader) next(t *testing.T) (string, events.Event) {
	t.Helper()
	var name string
	for {
		line, err := s.r.ReadString('\n')
		require.NoError(t, err, "stream ended")
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "event: "); ok {
			name = v
			continue
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var e events.Event
			require.NoError(t, json.Unmarshal([]byte(data), &e))
			return name, e
		}
	}
}

type browser struct {
	srv    *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{srv: srv, client: &http.Client{Jar: jar}}
}

func (b *browser) send(t *testing.T, method, path, body string) string {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, b.srv.URL+path, r)
	require.NoError(t, err)
	resp, err := b.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(out)
}

func (b *browser) sessionID() string {
	u, err := url.Parse(b.srv.URL)
	if err != nil {
		return ""
	}
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == middleware.SessionCookie {
			return c.Value
		}
	}
	return ""
}

func (b *browser) stream(t *testing.T, ctx context.Context) sseReader {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := b.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	return sseReader{r: bufio.NewReader(resp.Body)}
}

func TestEventsStream(t *testing.T) {
	env := newEnv(t, catalog.Coupons())
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a := newBrowser(t, srv)
	a.send(t, http.MethodPost, "/api/copy", `{"code":"JDS10"}`)
	stream := a.stream(t, ctx)

	name, e := stream.next(t)
	assert.Equal(t, handlers.EventState, name)
	assert.JSONEq(t, `{"filter":"all","last_copied":"JDS10"}`, string(e.Data), "stream opens with current state")
	require.Eventually(t, func() bool { return env.hub.Subscribers(a.sessionID()) == 1 }, time.Second, 10*time.Millisecond)

	// another visitor's copy stays on their own stream
	other := newBrowser(t, srv)
	other.send(t, http.MethodPost, "/api/copy", `{"code":"APP20"}`)

	a.send(t, http.MethodPost, "/api/copy", `{"code":"JDS15"}`)
	name, e = stream.next(t)
	assert.Equal(t, string(service.EventCodeCopied), name)
	assert.JSONEq(t, `{"type":"code_copied","code":"JDS15"}`, string(e.Data))
}

func TestEventsStreamOutlivesWriteTimeout(t *testing.T) {
	env := newEnvWithDelay(t, catalog.Coupons(), 100*time.Millisecond)
	srv := httptest.NewUnstartedServer(env.handler)
	srv.Config.WriteTimeout = 300 * time.Millisecond
	srv.Start()
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b := newBrowser(t, srv)
	b.send(t, http.MethodGet, "/api/state", "")
	stream := b.stream(t, ctx)
	name, _ := stream.next(t)
	require.Equal(t, handlers.EventState, name)

	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 1, env.hub.Subscribers(b.sessionID()), "stream still open past the write timeout")

	b.send(t, http.MethodPost, "/api/copy", `{"code":"JDS15"}`)

	name, e := stream.next(t)
	assert.Equal(t, string(service.EventCodeCopied), name)
	assert.JSONEq(t, `{"type":"code_copied","code":"JDS15"}`, string(e.Data))

	name, e = stream.next(t)
	assert.Equal(t, string(service.EventCopyCleared), name)
	assert.JSONEq(t, `{"type":"copy_cleared","code":"JDS15"}`, string(e.Data))
}
