package mobile

import (
	"context"
	"encoding/json"
	"strings"

	"fundlog/pkg/fundlog"
)

// Core wraps the fundlog core for gomobile bindings. Every method takes and
// returns JSON strings.
type Core struct {
	core *fundlog.Core
}

// Open initializes the core with a database path.
func Open(dbPath string) (*Core, error) {
	return openWithOptions(fundlog.Options{DBPath: dbPath})
}

func openWithOptions(opts fundlog.Options) (*Core, error) {
	core, err := fundlog.OpenWithOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Core{core: core}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.core == nil {
		return nil
	}
	return c.core.Close()
}

// GetHoldingsJSON returns the configured holdings as JSON.
func (c *Core) GetHoldingsJSON() (string, error) {
	data, err := c.core.ListHoldings(context.Background())
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// SetHoldingsJSON replaces all holdings with a JSON array of
// {"code", "quantity"} objects and returns {"stored": n}.
func (c *Core) SetHoldingsJSON(payloadJSON string) (string, error) {
	var inputs []fundlog.HoldingInput
	if err := json.Unmarshal([]byte(payloadJSON), &inputs); err != nil {
		return "", fundlog.WrapError(fundlog.ErrCodeInvalidInput, "decode holdings", err)
	}
	n, err := c.core.ReplaceAllHoldings(context.Background(), inputs)
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]any{"stored": n})
}

// RefreshJSON runs one refresh and returns the snapshot as JSON. A non-empty
// category narrows the records and summary to that category.
func (c *Core) RefreshJSON(category string) (string, error) {
	snap, err := c.core.Refresh(context.Background())
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(category) != "" {
		snap.Records = fundlog.FilterByCategory(snap.Records, category)
		snap.Summary = fundlog.Summarize(snap.Records)
	}
	return marshalJSON(snap)
}

// GetHistoryJSON returns the history series and its summary as JSON.
func (c *Core) GetHistoryJSON() (string, error) {
	entries, err := c.core.Ledger().History(context.Background())
	if err != nil {
		return "", err
	}
	return marshalJSON(historyPayload{
		Entries: entries,
		Summary: fundlog.SummarizeHistory(entries),
	})
}

type historyPayload struct {
	Entries []fundlog.HistoryEntry `json:"entries"`
	Summary fundlog.HistorySummary `json:"summary"`
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
