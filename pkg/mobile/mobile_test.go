package mobile

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fundlog/pkg/fundlog"
)

type pageClient struct {
	pages map[string]string
}

func (p pageClient) Do(req *http.Request) (*http.Response, error) {
	body, ok := p.pages[req.URL.Query().Get("FonKod")]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func page(price, category string) string {
	return `<div id="MainContent_PanelInfo"><div><ul>` +
		`<li><span>` + price + `</span></li><li><span>%0</span></li><li></li><li></li>` +
		`<li><span>` + category + `</span></li></ul></div></div>`
}

func setupMobileCore(t *testing.T) *Core {
	t.Helper()
	core, err := openWithOptions(fundlog.Options{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		HTTPClient: pageClient{pages: map[string]string{
			"AAK": page("2,5", "Hisse"),
			"TTE": page("4", "Borçlanma"),
		}},
		HTTPTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = core.Close() })
	return core
}

func TestMobileCoreJSONFlows(t *testing.T) {
	core := setupMobileCore(t)

	resp, err := core.SetHoldingsJSON(`[{"code":["aak"],"quantity":[10]},{"code":"TTE","quantity":"5"},{"code":"","quantity":1}]`)
	if err != nil {
		t.Fatalf("SetHoldingsJSON: %v", err)
	}
	if resp != `{"stored":2}` {
		t.Fatalf("unexpected set response: %s", resp)
	}

	holdingsJSON, err := core.GetHoldingsJSON()
	if err != nil {
		t.Fatalf("GetHoldingsJSON: %v", err)
	}
	var holdings []fundlog.Holding
	if err := json.Unmarshal([]byte(holdingsJSON), &holdings); err != nil {
		t.Fatalf("unmarshal holdings: %v", err)
	}
	if len(holdings) != 2 || holdings[0].Code != "AAK" {
		t.Fatalf("unexpected holdings: %+v", holdings)
	}

	snapJSON, err := core.RefreshJSON("")
	if err != nil {
		t.Fatalf("RefreshJSON: %v", err)
	}
	var snap map[string]any
	if err := json.Unmarshal([]byte(snapJSON), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if snap["status"] != "ok" {
		t.Fatalf("expected ok status, got %v", snap["status"])
	}
	summary := snap["summary"].(map[string]any)
	if summary["total_value"].(float64) != 45 {
		t.Fatalf("unexpected total: %v", summary["total_value"])
	}

	filteredJSON, err := core.RefreshJSON("hisse")
	if err != nil {
		t.Fatalf("RefreshJSON filtered: %v", err)
	}
	var filtered fundlog.Snapshot
	if err := json.Unmarshal([]byte(filteredJSON), &filtered); err != nil {
		t.Fatalf("unmarshal filtered: %v", err)
	}
	if len(filtered.Records) != 1 || filtered.Summary.TotalValue.Float() != 25 {
		t.Fatalf("unexpected filtered snapshot: %+v", filtered)
	}

	historyJSON, err := core.GetHistoryJSON()
	if err != nil {
		t.Fatalf("GetHistoryJSON: %v", err)
	}
	var history historyPayload
	if err := json.Unmarshal([]byte(historyJSON), &history); err != nil {
		t.Fatalf("unmarshal history: %v", err)
	}
	if len(history.Entries) != 1 || history.Summary.Entries != 1 {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestMobileCoreInvalidPayload(t *testing.T) {
	core := setupMobileCore(t)
	if _, err := core.SetHoldingsJSON("{bad"); err == nil {
		t.Fatalf("expected error for invalid json")
	}
}

func TestMobileCloseNil(t *testing.T) {
	var c *Core
	if err := c.Close(); err != nil {
		t.Fatalf("Close nil: %v", err)
	}
}
