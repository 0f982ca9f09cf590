package fundlog

import "time"

// DefaultCategory is used when the source page has no category label.
const DefaultCategory = "Diğer"

// dateLayout is the calendar-day key used by the history ledger.
const dateLayout = "2006-01-02"

// Holding is one fund code and the number of units owned.
type Holding struct {
	Code      string    `json:"code"`
	Quantity  float64   `json:"quantity"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Quote is a market snapshot for one fund.
type Quote struct {
	Code        string `json:"code"`
	Price       Amount `json:"price"`
	DailyReturn Amount `json:"daily_return"`
	Category    string `json:"category"`
}

// ValuationRecord is a holding enriched with its quote and derived figures.
// GainAttributable is false when the daily return makes the prior price
// undefined (-100% or below); PriorPrice and DailyGain are zero then.
type ValuationRecord struct {
	Code             string  `json:"code"`
	Quantity         float64 `json:"quantity"`
	Price            Amount  `json:"price"`
	TotalValue       Amount  `json:"total_value"`
	DailyReturn      Amount  `json:"daily_return"`
	PriorPrice       Amount  `json:"prior_price"`
	DailyGain        Amount  `json:"daily_gain"`
	GainAttributable bool    `json:"gain_attributable"`
	Category         string  `json:"category"`
}

// FundTotal aggregates records sharing a fund code.
type FundTotal struct {
	Code       string  `json:"code"`
	Quantity   float64 `json:"quantity"`
	TotalValue Amount  `json:"total_value"`
	DailyGain  Amount  `json:"daily_gain"`
	Percent    float64 `json:"percent"`
}

// CategoryTotal aggregates records sharing a category label.
type CategoryTotal struct {
	Category   string  `json:"category"`
	TotalValue Amount  `json:"total_value"`
	Percent    float64 `json:"percent"`
	Funds      int     `json:"funds"`
}

// PortfolioSummary holds portfolio-level figures derived from records.
type PortfolioSummary struct {
	TotalValue     Amount          `json:"total_value"`
	DailyGain      Amount          `json:"daily_gain"`
	DailyReturn    float64         `json:"daily_return"`
	FundCount      int             `json:"fund_count"`
	ByFund         []FundTotal     `json:"by_fund"`
	ByCategory     []CategoryTotal `json:"by_category"`
	Unattributable []string        `json:"unattributable,omitempty"`
}

// HistoryEntry is the total portfolio value recorded for one day.
type HistoryEntry struct {
	Date       string `json:"date"`
	TotalValue Amount `json:"total_value"`
}

// HistorySummary describes the trend of the history series.
type HistorySummary struct {
	Entries                  int     `json:"entries"`
	First                    string  `json:"first,omitempty"`
	Latest                   string  `json:"latest,omitempty"`
	LatestValue              Amount  `json:"latest_value"`
	Change                   Amount  `json:"change"`
	ChangePercent            float64 `json:"change_percent"`
	MeanDailyChangePercent   float64 `json:"mean_daily_change_percent"`
	StdDevDailyChangePercent float64 `json:"stddev_daily_change_percent"`
}

// SnapshotStatus tells apart the ways a refresh can end.
type SnapshotStatus string

const (
	// StatusOK means every holding was valued.
	StatusOK SnapshotStatus = "ok"
	// StatusPartial means some holdings had no quote.
	StatusPartial SnapshotStatus = "partial"
	// StatusUnavailable means holdings exist but no quote could be fetched.
	StatusUnavailable SnapshotStatus = "unavailable"
	// StatusEmpty means no holdings are configured.
	StatusEmpty SnapshotStatus = "empty"
)

// Snapshot is the result of one refresh of the pipeline.
type Snapshot struct {
	RunID        string            `json:"run_id"`
	Date         string            `json:"date"`
	TakenAt      time.Time         `json:"taken_at"`
	Status       SnapshotStatus    `json:"status"`
	Records      []ValuationRecord `json:"records"`
	Summary      PortfolioSummary  `json:"summary"`
	Missing      []string          `json:"missing,omitempty"`
	History      []HistoryEntry    `json:"history"`
	HistoryError string            `json:"history_error,omitempty"`
}

// RefreshLog is the audit row written for each refresh.
type RefreshLog struct {
	ID         int64          `json:"id"`
	RunID      string         `json:"run_id"`
	StartedAt  string         `json:"started_at"`
	Requested  int            `json:"requested"`
	Fetched    int            `json:"fetched"`
	Failed     []string       `json:"failed"`
	TotalValue Amount         `json:"total_value"`
	Status     SnapshotStatus `json:"status"`
	CreatedAt  *string        `json:"created_at"`
}
