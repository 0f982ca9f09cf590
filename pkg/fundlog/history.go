package fundlog

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// HistoryStore persists one total value per calendar day.
type HistoryStore interface {
	UpsertHistoryEntry(ctx context.Context, date string, value Amount) error
	ListHistory(ctx context.Context) ([]HistoryEntry, error)
}

// Ledger maintains the daily portfolio value series.
type Ledger struct {
	store HistoryStore
	clock Clock
}

// NewLedger returns a ledger writing through store and dating entries with
// clock.
func NewLedger(store HistoryStore, clock Clock) *Ledger {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Ledger{store: store, clock: clock}
}

// Today returns the current calendar day key.
func (l *Ledger) Today() string {
	return l.clock.Now().Format(dateLayout)
}

// UpsertToday records total for today, replacing any earlier value for the
// same day, and returns the full series in ascending date order.
func (l *Ledger) UpsertToday(ctx context.Context, total Amount) ([]HistoryEntry, error) {
	if err := l.store.UpsertHistoryEntry(ctx, l.Today(), total); err != nil {
		return nil, err
	}
	return l.History(ctx)
}

// History returns the series in ascending date order. It never returns nil.
func (l *Ledger) History(ctx context.Context) ([]HistoryEntry, error) {
	entries, err := l.store.ListHistory(ctx)
	if err != nil {
		return []HistoryEntry{}, err
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
	return entries, nil
}

// SummarizeHistory reports the latest value, the change against the
// previous entry and the mean and standard deviation of day-over-day
// percent changes. entries must be in ascending order.
func SummarizeHistory(entries []HistoryEntry) HistorySummary {
	summary := HistorySummary{Entries: len(entries)}
	if len(entries) == 0 {
		return summary
	}
	latest := entries[len(entries)-1]
	summary.First = entries[0].Date
	summary.Latest = latest.Date
	summary.LatestValue = latest.TotalValue
	if len(entries) >= 2 {
		prev := entries[len(entries)-2].TotalValue
		summary.Change = Amount{latest.TotalValue.Sub(prev.Decimal)}
		summary.ChangePercent = percentChange(prev, latest.TotalValue)
	}

	changes := make([]float64, 0, len(entries))
	for i := 1; i < len(entries); i++ {
		if !entries[i-1].TotalValue.IsPositive() {
			continue
		}
		changes = append(changes, percentChange(entries[i-1].TotalValue, entries[i].TotalValue))
	}
	if len(changes) > 0 {
		summary.MeanDailyChangePercent = round2(stat.Mean(changes, nil))
	}
	if len(changes) > 1 {
		summary.StdDevDailyChangePercent = round2(stat.StdDev(changes, nil))
	}
	return summary
}

func percentChange(from, to Amount) float64 {
	if !from.IsPositive() {
		return 0
	}
	return round2(to.Sub(from.Decimal).Div(from.Decimal).Mul(hundred).InexactFloat64())
}
