package fundlog

import (
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// priorPricePrecision is the number of decimals kept when deriving the
// previous day's price.
const priorPricePrecision = 10

// Valuate combines holdings with quotes. Holdings with a blank code, a
// non-positive quantity or no quote are skipped. Output follows input order.
func Valuate(holdings []Holding, quotes map[string]Quote) []ValuationRecord {
	records := make([]ValuationRecord, 0, len(holdings))
	for _, h := range holdings {
		code := normalizeCode(h.Code)
		if code == "" || !(h.Quantity > 0) || math.IsInf(h.Quantity, 0) {
			continue
		}
		quote, ok := quotes[code]
		if !ok {
			continue
		}
		records = append(records, valuateHolding(code, h.Quantity, quote))
	}
	return records
}

func valuateHolding(code string, quantity float64, quote Quote) ValuationRecord {
	qty := decimal.NewFromFloat(quantity)
	price := quote.Price.Decimal
	category := quote.Category
	if category == "" {
		category = DefaultCategory
	}
	record := ValuationRecord{
		Code:        code,
		Quantity:    quantity,
		Price:       quote.Price,
		TotalValue:  Amount{qty.Mul(price)},
		DailyReturn: quote.DailyReturn,
		Category:    category,
	}

	// prior = price / (1 + r/100); undefined at r = -100 and meaningless below.
	factor := decimal.NewFromInt(1).Add(quote.DailyReturn.Div(hundred))
	if !factor.IsPositive() {
		return record
	}
	prior := price.DivRound(factor, priorPricePrecision)
	record.PriorPrice = Amount{prior}
	record.DailyGain = Amount{price.Sub(prior).Mul(qty)}
	record.GainAttributable = true
	return record
}

// Summarize derives portfolio totals and the fund and category breakdowns.
// Groups are sorted by value, largest first.
func Summarize(records []ValuationRecord) PortfolioSummary {
	total := decimal.Zero
	gain := decimal.Zero
	prior := decimal.Zero
	byFund := map[string]*FundTotal{}
	byCategory := map[string]*CategoryTotal{}
	categoryFunds := map[string]map[string]struct{}{}
	var unattributable []string

	for _, r := range records {
		total = total.Add(r.TotalValue.Decimal)
		if r.GainAttributable {
			gain = gain.Add(r.DailyGain.Decimal)
			prior = prior.Add(r.TotalValue.Sub(r.DailyGain.Decimal))
		} else {
			unattributable = append(unattributable, r.Code)
		}

		f, ok := byFund[r.Code]
		if !ok {
			f = &FundTotal{Code: r.Code}
			byFund[r.Code] = f
		}
		f.Quantity += r.Quantity
		f.TotalValue = Amount{f.TotalValue.Add(r.TotalValue.Decimal)}
		f.DailyGain = Amount{f.DailyGain.Add(r.DailyGain.Decimal)}

		c, ok := byCategory[r.Category]
		if !ok {
			c = &CategoryTotal{Category: r.Category}
			byCategory[r.Category] = c
			categoryFunds[r.Category] = map[string]struct{}{}
		}
		c.TotalValue = Amount{c.TotalValue.Add(r.TotalValue.Decimal)}
		categoryFunds[r.Category][r.Code] = struct{}{}
	}

	summary := PortfolioSummary{
		TotalValue:     Amount{total},
		DailyGain:      Amount{gain},
		FundCount:      len(byFund),
		ByFund:         make([]FundTotal, 0, len(byFund)),
		ByCategory:     make([]CategoryTotal, 0, len(byCategory)),
		Unattributable: unattributable,
	}
	// The return base covers attributable records only.
	if prior.IsPositive() {
		summary.DailyReturn = round2(gain.Div(prior).Mul(hundred).InexactFloat64())
	}
	for _, f := range byFund {
		f.Percent = percentOf(f.TotalValue.Decimal, total)
		summary.ByFund = append(summary.ByFund, *f)
	}
	for name, c := range byCategory {
		c.Percent = percentOf(c.TotalValue.Decimal, total)
		c.Funds = len(categoryFunds[name])
		summary.ByCategory = append(summary.ByCategory, *c)
	}
	sort.Slice(summary.ByFund, func(i, j int) bool {
		if cmp := summary.ByFund[i].TotalValue.Cmp(summary.ByFund[j].TotalValue.Decimal); cmp != 0 {
			return cmp > 0
		}
		return summary.ByFund[i].Code < summary.ByFund[j].Code
	})
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		if cmp := summary.ByCategory[i].TotalValue.Cmp(summary.ByCategory[j].TotalValue.Decimal); cmp != 0 {
			return cmp > 0
		}
		return summary.ByCategory[i].Category < summary.ByCategory[j].Category
	})
	return summary
}

// FilterByCategory keeps records whose category matches, ignoring case.
// An empty category, "all" or "Tümü" keeps everything.
func FilterByCategory(records []ValuationRecord, category string) []ValuationRecord {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, "all") || category == "Tümü" {
		return records
	}
	filtered := make([]ValuationRecord, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.Category, category) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Categories returns the distinct category labels in sorted order.
func Categories(records []ValuationRecord) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range records {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	sort.Strings(out)
	return out
}

func percentOf(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return round2(part.Div(total).Mul(hundred).InexactFloat64())
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
