package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundlog/pkg/fundlog"
)

type pageSource map[string]string

func (s pageSource) Do(req *http.Request) (*http.Response, error) {
	body, ok := s[req.URL.Query().Get("FonKod")]
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func fundPage(price, dailyReturn, category string) string {
	return `<div id="MainContent_PanelInfo"><div><ul>` +
		`<li><span>` + price + `</span></li>` +
		`<li><span>` + dailyReturn + `</span></li>` +
		`<li></li><li></li>` +
		`<li><span>` + category + `</span></li>` +
		`</ul></div></div>`
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

type harness struct {
	env    *cliEnv
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newHarness(t *testing.T, source pageSource) *harness {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	h := &harness{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.env = &cliEnv{
		out:    h.out,
		errOut: h.errOut,
		open: func() (*fundlog.Core, error) {
			return fundlog.OpenWithOptions(fundlog.Options{
				DBPath:     dbPath,
				Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
				HTTPClient: source,
				Clock:      fixedClock(time.Date(2024, 3, 15, 18, 0, 0, 0, time.FixedZone("TRT", 3*60*60))),
			})
		},
	}
	return h
}

func (h *harness) run(args ...string) subcommands.ExitStatus {
	h.out.Reset()
	h.errOut.Reset()
	return execute(context.Background(), args, h.env)
}

func TestHoldingsLifecycle(t *testing.T) {
	h := newHarness(t, nil)

	require.Equal(t, subcommands.ExitSuccess, h.run("holdings"))
	assert.Contains(t, h.out.String(), "no holdings")

	require.Equal(t, subcommands.ExitSuccess, h.run("set", "aak", "12.5"))
	require.Equal(t, subcommands.ExitSuccess, h.run("set", "TTE", "3"))

	require.Equal(t, subcommands.ExitSuccess, h.run("holdings"))
	out := h.out.String()
	assert.Contains(t, out, "AAK")
	assert.Contains(t, out, "12.5")
	assert.Less(t, strings.Index(out, "AAK"), strings.Index(out, "TTE"))

	require.Equal(t, subcommands.ExitSuccess, h.run("remove", "aak"))
	require.Equal(t, subcommands.ExitSuccess, h.run("holdings"))
	assert.NotContains(t, h.out.String(), "AAK")

	assert.Equal(t, subcommands.ExitFailure, h.run("remove", "AAK"))
	assert.Contains(t, h.errOut.String(), "not found")
}

func TestSetRejectsBadArguments(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, subcommands.ExitUsageError, h.run("set", "AAK"))
	assert.Equal(t, subcommands.ExitUsageError, h.run("set", "AAK", "many"))
	assert.Equal(t, subcommands.ExitUsageError, h.run("set", "AAK", "0"))
	assert.Contains(t, h.errOut.String(), "Invalid holding")
}

func TestRefreshPrintsValuationAndRecordsHistory(t *testing.T) {
	h := newHarness(t, pageSource{
		"AAK": fundPage("2,2", "%10", "Hisse"),
		"TTE": fundPage("4", "%0", "Borçlanma"),
	})
	require.Equal(t, subcommands.ExitSuccess, h.run("set", "AAK", "100"))
	require.Equal(t, subcommands.ExitSuccess, h.run("set", "TTE", "50"))

	require.Equal(t, subcommands.ExitSuccess, h.run("refresh"))
	out := h.out.String()
	assert.Contains(t, out, "Hisse")
	assert.Contains(t, out, "Borçlanma")
	assert.Contains(t, out, lira(fundlog.NewAmount(420)))
	assert.Contains(t, out, lira(fundlog.NewAmount(20)))

	require.Equal(t, subcommands.ExitSuccess, h.run("refresh", "-category", "Hisse"))
	out = h.out.String()
	assert.Contains(t, out, "AAK")
	assert.NotContains(t, out, "TTE")
	assert.Contains(t, out, lira(fundlog.NewAmount(220)))

	require.Equal(t, subcommands.ExitSuccess, h.run("history"))
	out = h.out.String()
	assert.Contains(t, out, "2024-03-15")
	rows := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "2024-03-15") {
			rows++
		}
	}
	assert.Equal(t, 1, rows)
}

func TestRefreshReportsUnavailableSource(t *testing.T) {
	h := newHarness(t, pageSource{})
	require.Equal(t, subcommands.ExitSuccess, h.run("set", "AAK", "1"))

	assert.Equal(t, subcommands.ExitFailure, h.run("refresh"))
	assert.Contains(t, h.errOut.String(), "unavailable")
}

func TestRefreshWithoutHoldings(t *testing.T) {
	h := newHarness(t, pageSource{})
	require.Equal(t, subcommands.ExitSuccess, h.run("refresh"))
	assert.Contains(t, h.out.String(), "no holdings")
}

func TestImportLegacyFiles(t *testing.T) {
	dir := t.TempDir()
	funds := filepath.Join(dir, "funds.json")
	history := filepath.Join(dir, "portfolio_history.csv")
	require.NoError(t, os.WriteFile(funds, []byte(`[{"kod":"aak","adet":"10"},{"kod":"TTE","adet":5}]`), 0o644))
	require.NoError(t, os.WriteFile(history, []byte("Date,TotalValue\n2024-03-01,100.5\n2024-03-02,oops\n"), 0o644))

	h := newHarness(t, nil)
	require.Equal(t, subcommands.ExitSuccess, h.run("import", "-funds", funds, "-history", history))
	assert.Contains(t, h.out.String(), "imported 2 holdings, 1 history rows (1 skipped)")

	require.Equal(t, subcommands.ExitSuccess, h.run("history"))
	assert.Contains(t, h.out.String(), "2024-03-01")

	assert.Equal(t, subcommands.ExitUsageError, h.run("import"))
	assert.Equal(t, subcommands.ExitFailure, h.run("import", "-funds", filepath.Join(dir, "missing.json")))
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, subcommands.ExitUsageError, h.run("bogus"))
}
