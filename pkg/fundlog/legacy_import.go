package fundlog

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// legacyFund is one entry of the old funds.json file.
type legacyFund struct {
	Code     FlexString `json:"kod"`
	Quantity FlexFloat  `json:"adet"`
}

// ImportResult reports what ImportLegacy stored.
type ImportResult struct {
	Holdings       int `json:"holdings"`
	HistoryRows    int `json:"history_rows"`
	SkippedHistory int `json:"skipped_history"`
}

// ImportLegacy loads the file-based data of earlier versions: funds.json
// (a list of {"kod", "adet"}) replaces all holdings, and
// portfolio_history.csv (Date,TotalValue) is upserted by date. Either reader
// may be nil.
func (c *Core) ImportLegacy(ctx context.Context, funds io.Reader, history io.Reader) (ImportResult, error) {
	var result ImportResult
	if funds != nil {
		var entries []legacyFund
		if err := json.NewDecoder(funds).Decode(&entries); err != nil {
			return result, WrapError(ErrCodeInvalidInput, "decode funds file", err)
		}
		inputs := make([]HoldingInput, 0, len(entries))
		for _, e := range entries {
			inputs = append(inputs, HoldingInput{Code: e.Code, Quantity: e.Quantity})
		}
		n, err := c.ReplaceAllHoldings(ctx, inputs)
		if err != nil {
			return result, err
		}
		result.Holdings = n
	}

	if history != nil {
		rows, skipped, err := readLegacyHistory(history)
		if err != nil {
			return result, err
		}
		now := c.timestamp()
		err = c.WithTx(ctx, func(tx *sql.Tx) error {
			for _, e := range rows {
				if err := upsertHistory(ctx, tx, e.Date, e.TotalValue, now); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return result, err
		}
		result.HistoryRows = len(rows)
		result.SkippedHistory = skipped
	}

	c.logger.Info("legacy data imported",
		"holdings", result.Holdings,
		"history_rows", result.HistoryRows,
		"skipped_history", result.SkippedHistory,
	)
	return result, nil
}

// readLegacyHistory parses a Date,TotalValue CSV. Rows with an unparsable
// date or value are skipped and counted.
func readLegacyHistory(r io.Reader) ([]HistoryEntry, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, WrapError(ErrCodeInvalidInput, "read history header", err)
	}
	dateCol, valueCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF"))) {
		case "date":
			dateCol = i
		case "totalvalue", "total_value":
			valueCol = i
		}
	}
	if dateCol < 0 || valueCol < 0 {
		return nil, 0, NewError(ErrCodeInvalidInput, fmt.Sprintf("history header must contain Date and TotalValue, got %v", header))
	}

	var entries []HistoryEntry
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, WrapError(ErrCodeInvalidInput, "read history row", err)
		}
		if dateCol >= len(record) || valueCol >= len(record) {
			skipped++
			continue
		}
		date, err := time.Parse(dateLayout, strings.TrimSpace(record[dateCol]))
		if err != nil {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[valueCol]), 64)
		if err != nil {
			skipped++
			continue
		}
		entries = append(entries, HistoryEntry{Date: date.Format(dateLayout), TotalValue: NewAmount(value)})
	}
	return entries, skipped, nil
}
