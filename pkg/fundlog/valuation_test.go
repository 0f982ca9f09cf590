package fundlog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) Amount {
	return Amount{decimal.RequireFromString(s)}
}

func TestValuateComputesRecords(t *testing.T) {
	holdings := []Holding{
		{Code: "AAK", Quantity: 100},
		{Code: "TTE", Quantity: 50},
	}
	quotes := map[string]Quote{
		"AAK": {Code: "AAK", Price: amt("2.2"), DailyReturn: amt("10"), Category: "Hisse"},
		"TTE": {Code: "TTE", Price: amt("4"), DailyReturn: amt("0"), Category: "Borçlanma"},
	}

	records := Valuate(holdings, quotes)
	require.Len(t, records, 2)

	aak := records[0]
	assert.Equal(t, "AAK", aak.Code)
	assert.Equal(t, "220", aak.TotalValue.String())
	assert.Equal(t, "2", aak.PriorPrice.String())
	assert.Equal(t, "20", aak.DailyGain.String())
	assert.True(t, aak.GainAttributable)
	assert.Equal(t, "Hisse", aak.Category)

	tte := records[1]
	assert.Equal(t, "200", tte.TotalValue.String())
	assert.True(t, tte.DailyGain.IsZero())
	assert.Equal(t, "4", tte.PriorPrice.String())
}

func TestValuateSkipsInvalidHoldings(t *testing.T) {
	holdings := []Holding{
		{Code: "", Quantity: 10},
		{Code: "AAK", Quantity: 0},
		{Code: "AAK", Quantity: -1},
		{Code: "NOQUOTE", Quantity: 5},
		{Code: "aak", Quantity: 3},
	}
	quotes := map[string]Quote{"AAK": {Code: "AAK", Price: amt("1.5"), Category: "X"}}

	records := Valuate(holdings, quotes)
	require.Len(t, records, 1)
	assert.Equal(t, "AAK", records[0].Code)
	assert.Equal(t, "4.5", records[0].TotalValue.String())
}

func TestValuateTotalReturn100Percent(t *testing.T) {
	quotes := map[string]Quote{
		"DROP": {Code: "DROP", Price: amt("1"), DailyReturn: amt("-100"), Category: "X"},
		"DEEP": {Code: "DEEP", Price: amt("1"), DailyReturn: amt("-150"), Category: "X"},
	}
	records := Valuate([]Holding{{Code: "DROP", Quantity: 10}, {Code: "DEEP", Quantity: 5}}, quotes)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.False(t, r.GainAttributable, r.Code)
		assert.True(t, r.PriorPrice.IsZero(), r.Code)
		assert.True(t, r.DailyGain.IsZero(), r.Code)
		assert.True(t, r.TotalValue.IsPositive(), r.Code)
	}

	summary := Summarize(records)
	assert.Equal(t, []string{"DROP", "DEEP"}, summary.Unattributable)
	assert.Equal(t, "15", summary.TotalValue.String())
}

func TestValuateEmptyCategoryDefaults(t *testing.T) {
	records := Valuate([]Holding{{Code: "AAK", Quantity: 1}}, map[string]Quote{"AAK": {Price: amt("1")}})
	require.Len(t, records, 1)
	assert.Equal(t, DefaultCategory, records[0].Category)
}

func TestSummarize(t *testing.T) {
	records := []ValuationRecord{
		{Code: "AAK", Quantity: 10, TotalValue: amt("300"), DailyGain: amt("30"), GainAttributable: true, Category: "Hisse"},
		{Code: "TTE", Quantity: 5, TotalValue: amt("400"), DailyGain: amt("-10"), GainAttributable: true, Category: "Borçlanma"},
		{Code: "AAK", Quantity: 2, TotalValue: amt("200"), DailyGain: amt("0"), GainAttributable: true, Category: "Hisse"},
	}

	s := Summarize(records)
	assert.Equal(t, "900", s.TotalValue.String())
	assert.Equal(t, "20", s.DailyGain.String())
	assert.Equal(t, 2, s.FundCount)
	// 20 / 880
	assert.Equal(t, 2.27, s.DailyReturn)

	require.Len(t, s.ByFund, 2)
	assert.Equal(t, "AAK", s.ByFund[0].Code)
	assert.Equal(t, "500", s.ByFund[0].TotalValue.String())
	assert.Equal(t, float64(12), s.ByFund[0].Quantity)
	assert.Equal(t, 55.56, s.ByFund[0].Percent)
	assert.Equal(t, "TTE", s.ByFund[1].Code)

	require.Len(t, s.ByCategory, 2)
	assert.Equal(t, "Hisse", s.ByCategory[0].Category)
	assert.Equal(t, 1, s.ByCategory[0].Funds)
	assert.Equal(t, "Borçlanma", s.ByCategory[1].Category)
	assert.Equal(t, 44.44, s.ByCategory[1].Percent)
	assert.Empty(t, s.Unattributable)
}

func TestSummarizeReturnIgnoresUnattributableValue(t *testing.T) {
	holdings := []Holding{
		{Code: "UP", Quantity: 10},
		{Code: "WIPED", Quantity: 10},
	}
	quotes := map[string]Quote{
		"UP":    {Code: "UP", Price: amt("100"), DailyReturn: amt("5"), Category: "Hisse"},
		"WIPED": {Code: "WIPED", Price: amt("50"), DailyReturn: amt("-100"), Category: "Hisse"},
	}

	s := Summarize(Valuate(holdings, quotes))
	assert.Equal(t, "1500", s.TotalValue.String())
	assert.Equal(t, 5.0, s.DailyReturn)
	assert.Equal(t, []string{"WIPED"}, s.Unattributable)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.TotalValue.IsZero())
	assert.Zero(t, s.DailyReturn)
	assert.NotNil(t, s.ByFund)
	assert.NotNil(t, s.ByCategory)
}

func TestFilterByCategory(t *testing.T) {
	records := []ValuationRecord{
		{Code: "A", Category: "Hisse"},
		{Code: "B", Category: "Borçlanma"},
		{Code: "C", Category: "hisse"},
	}

	assert.Len(t, FilterByCategory(records, ""), 3)
	assert.Len(t, FilterByCategory(records, "Tümü"), 3)
	assert.Len(t, FilterByCategory(records, "ALL"), 3)

	hisse := FilterByCategory(records, " HISSE ")
	require.Len(t, hisse, 2)
	assert.Equal(t, "A", hisse[0].Code)
	assert.Equal(t, "C", hisse[1].Code)

	assert.Empty(t, FilterByCategory(records, "Altın"))
	assert.Equal(t, []string{"Borçlanma", "Hisse", "hisse"}, Categories(records))
}
