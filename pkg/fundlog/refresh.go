package fundlog

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Refresh runs the pipeline once: read holdings, fetch quotes, value the
// holdings, record today's total and return the snapshot.
//
// Storage and source failures degrade the snapshot instead of failing it;
// the only error returned is ctx's, when it ends before quotes arrive.
// Today's history entry is written only when at least one holding was
// valued, so a source outage never records a zero total.
func (c *Core) Refresh(ctx context.Context) (Snapshot, error) {
	started := c.clock.Now()
	snap := Snapshot{
		RunID:   uuid.NewString(),
		Date:    started.Format(dateLayout),
		TakenAt: started,
		Records: []ValuationRecord{},
		History: []HistoryEntry{},
	}
	if err := ctx.Err(); err != nil {
		return snap, err
	}
	logger := c.logger.With("run_id", snap.RunID)

	holdings, err := c.ListHoldings(ctx)
	if err != nil {
		logger.Warn("holdings unavailable, continuing with none", "err", err)
		holdings = nil
	}

	var batch QuoteBatch
	if len(holdings) > 0 {
		codes := make([]string, 0, len(holdings))
		for _, h := range holdings {
			codes = append(codes, h.Code)
		}
		batch = c.FetchQuotes(ctx, codes)
		if err := ctx.Err(); err != nil {
			return snap, err
		}
	}

	snap.Records = Valuate(holdings, batch.Quotes)
	snap.Summary = Summarize(snap.Records)
	snap.Missing = missingCodes(holdings, batch.Quotes)
	snap.Status = snapshotStatus(len(holdings), len(snap.Records), len(snap.Missing))

	if len(snap.Records) > 0 {
		history, err := c.ledger.UpsertToday(ctx, snap.Summary.TotalValue)
		if err != nil {
			logger.Error("history update failed", "err", err)
			snap.HistoryError = err.Error()
			history, _ = c.ledger.History(ctx)
		}
		snap.History = history
	} else {
		history, err := c.ledger.History(ctx)
		if err != nil {
			logger.Warn("history unavailable", "err", err)
		}
		snap.History = history
	}

	if _, err := c.AddRefreshLog(ctx, RefreshLog{
		RunID:      snap.RunID,
		StartedAt:  started.Format(time.RFC3339),
		Requested:  len(batch.Requested),
		Fetched:    len(batch.Quotes),
		Failed:     batch.FailedCodes(),
		TotalValue: snap.Summary.TotalValue,
		Status:     snap.Status,
	}); err != nil {
		logger.Warn("refresh log not written", "err", err)
	}

	logger.Info("portfolio refreshed",
		"status", snap.Status,
		"holdings", len(holdings),
		"valued", len(snap.Records),
		"total_value", snap.Summary.TotalValue.StringFixed(2),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return snap, nil
}

// Err reports an unavailable snapshot as an ErrCodeSourceUnavailable error.
// Every other status yields nil.
func (s Snapshot) Err() error {
	if s.Status != StatusUnavailable {
		return nil
	}
	return NewError(ErrCodeSourceUnavailable, "no quote for "+strings.Join(s.Missing, ", "))
}

func snapshotStatus(holdings, valued, missing int) SnapshotStatus {
	switch {
	case holdings == 0:
		return StatusEmpty
	case valued == 0:
		return StatusUnavailable
	case missing > 0:
		return StatusPartial
	default:
		return StatusOK
	}
}

func missingCodes(holdings []Holding, quotes map[string]Quote) []string {
	seen := map[string]struct{}{}
	var missing []string
	for _, h := range holdings {
		code := normalizeCode(h.Code)
		if code == "" {
			continue
		}
		if _, ok := quotes[code]; ok {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		missing = append(missing, code)
	}
	sort.Strings(missing)
	return missing
}
