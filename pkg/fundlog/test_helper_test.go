package fundlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fixedClock reports a settable instant.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(t time.Time) *fixedClock {
	return &fixedClock{now: t}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// istanbul is a fixed UTC+3 zone so tests do not depend on tzdata.
var istanbul = time.FixedZone("TRT", 3*60*60)

// quotePage renders a fund analysis page with the info panel layout.
func quotePage(price, dailyReturn, category string) string {
	return fmt.Sprintf(`<html><body>
<div id="MainContent_PanelInfo">
  <div>
    <ul>
      <li>Son Fiyat (TL)<span>%s</span></li>
      <li>Günlük Getiri (%%)<span>%s</span></li>
      <li>Pay (Adet)<span>1.000</span></li>
      <li>Fon Toplam Değer (TL)<span>5.000.000</span></li>
      <li>Kategorisi<span>%s</span></li>
    </ul>
  </div>
</div>
</body></html>`, price, dailyReturn, category)
}

// fakeSource serves canned pages keyed by the FonKod query parameter.
// Codes without a page get a 500.
type fakeSource struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
	total atomic.Int64
}

func newFakeSource(pages map[string]string) *fakeSource {
	return &fakeSource{pages: pages, calls: map[string]int{}}
}

func (s *fakeSource) Do(req *http.Request) (*http.Response, error) {
	code := req.URL.Query().Get(fundCodeParam)
	s.total.Add(1)
	s.mu.Lock()
	s.calls[code]++
	body, ok := s.pages[code]
	s.mu.Unlock()

	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
		body = "error"
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func (s *fakeSource) Calls(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[code]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestCore opens a Core on a temporary database, serving quotes from
// source and dating history with clock.
func setupTestCore(t *testing.T, source HTTPDoer, clock Clock) *Core {
	t.Helper()

	if clock == nil {
		clock = newFixedClock(time.Date(2024, 3, 15, 18, 0, 0, 0, istanbul))
	}
	if source == nil {
		source = newFakeSource(nil)
	}
	core, err := OpenWithOptions(Options{
		DBPath:     filepath.Join(t.TempDir(), "test.db"),
		Logger:     testLogger(),
		HTTPClient: source,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { core.Close() })
	return core
}

func seedHoldings(t *testing.T, core *Core, holdings ...HoldingInput) {
	t.Helper()
	if _, err := core.ReplaceAllHoldings(context.Background(), holdings); err != nil {
		t.Fatalf("seed holdings: %v", err)
	}
}
