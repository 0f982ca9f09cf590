package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"

	"fundlog/pkg/fundlog"
)

// lira renders an amount in Turkish lira.
func lira(a fundlog.Amount) string {
	return money.NewFromFloat(a.Float(), money.TRY).Display()
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// holdingsCmd lists the stored holdings.
type holdingsCmd struct {
	env *cliEnv
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "list fund codes and quantities" }
func (*holdingsCmd) Usage() string {
	return `fundlog holdings

  Lists the configured holdings in insertion order.
`
}
func (*holdingsCmd) SetFlags(*flag.FlagSet) {}

func (c *holdingsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	core, err := c.env.open()
	if err != nil {
		return c.env.fail("Error opening database: %v", err)
	}
	defer core.Close()

	holdings, err := core.ListHoldings(ctx)
	if err != nil {
		return c.env.fail("Error listing holdings: %v", err)
	}
	if len(holdings) == 0 {
		fmt.Fprintln(c.env.out, "no holdings")
		return subcommands.ExitSuccess
	}
	tw := table(c.env.out)
	fmt.Fprintln(tw, "CODE\tQUANTITY")
	for _, h := range holdings {
		fmt.Fprintf(tw, "%s\t%s\n", h.Code, strconv.FormatFloat(h.Quantity, 'f', -1, 64))
	}
	tw.Flush()
	return subcommands.ExitSuccess
}

// setCmd inserts or updates one holding.
type setCmd struct {
	env *cliEnv
}

func (*setCmd) Name() string     { return "set" }
func (*setCmd) Synopsis() string { return "add a holding or change its quantity" }
func (*setCmd) Usage() string {
	return `fundlog set <code> <quantity>

  Stores the quantity held for a fund code. Quantities use a dot as the
  decimal separator.
`
}
func (*setCmd) SetFlags(*flag.FlagSet) {}

func (c *setCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprint(c.env.errOut, c.Usage())
		return subcommands.ExitUsageError
	}
	quantity, err := strconv.ParseFloat(f.Arg(1), 64)
	if err != nil {
		fmt.Fprintf(c.env.errOut, "Error parsing quantity %q: %v\n", f.Arg(1), err)
		return subcommands.ExitUsageError
	}

	core, err := c.env.open()
	if err != nil {
		return c.env.fail("Error opening database: %v", err)
	}
	defer core.Close()

	if err := core.UpsertHolding(ctx, f.Arg(0), quantity); err != nil {
		if fundlog.IsErrorCode(err, fundlog.ErrCodeInvalidInput) {
			fmt.Fprintf(c.env.errOut, "Invalid holding: %v\n", err)
			return subcommands.ExitUsageError
		}
		return c.env.fail("Error saving holding: %v", err)
	}
	fmt.Fprintf(c.env.out, "saved %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

// removeCmd deletes one holding.
type removeCmd struct {
	env *cliEnv
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "delete a holding" }
func (*removeCmd) Usage() string {
	return `fundlog remove <code>

  Removes the holding for a fund code.
`
}
func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprint(c.env.errOut, c.Usage())
		return subcommands.ExitUsageError
	}
	core, err := c.env.open()
	if err != nil {
		return c.env.fail("Error opening database: %v", err)
	}
	defer core.Close()

	removed, err := core.DeleteHolding(ctx, f.Arg(0))
	if err != nil {
		return c.env.fail("Error removing holding: %v", err)
	}
	if !removed {
		return c.env.fail("holding %s not found", f.Arg(0))
	}
	fmt.Fprintf(c.env.out, "removed %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

// refreshCmd fetches quotes, values the portfolio and records today's total.
type refreshCmd struct {
	env      *cliEnv
	category string
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch prices and value the portfolio" }
func (*refreshCmd) Usage() string {
	return `fundlog refresh [-category <label>]

  Fetches the current price of every holding, prints the valuation and
  stores today's total in the history.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "Only print funds in this category")
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	core, err := c.env.open()
	if err != nil {
		return c.env.fail("Error opening database: %v", err)
	}
	defer core.Close()

	snap, err := core.Refresh(ctx)
	if err != nil {
		return c.env.fail("Error refreshing portfolio: %v", err)
	}
	if snap.Status == fundlog.StatusEmpty {
		fmt.Fprintln(c.env.out, "no holdings")
		return subcommands.ExitSuccess
	}
	if err := snap.Err(); err != nil {
		return c.env.fail("price source unavailable: %v", err)
	}

	records := snap.Records
	summary := snap.Summary
	if c.category != "" {
		records = fundlog.FilterByCategory(records, c.category)
		summary = fundlog.Summarize(records)
	}
	printValuation(c.env.out, records, summary)
	if len(snap.Missing) > 0 {
		fmt.Fprintf(c.env.errOut, "no price for: %v\n", snap.Missing)
	}
	if snap.HistoryError != "" {
		fmt.Fprintf(c.env.errOut, "history not updated: %s\n", snap.HistoryError)
	}
	return subcommands.ExitSuccess
}

func printValuation(w io.Writer, records []fundlog.ValuationRecord, summary fundlog.PortfolioSummary) {
	tw := table(w)
	fmt.Fprintln(tw, "CODE\tQUANTITY\tPRICE\tVALUE\tDAILY %\tDAILY GAIN\tCATEGORY")
	for _, r := range records {
		gain := lira(r.DailyGain)
		if !r.GainAttributable {
			gain = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Code,
			strconv.FormatFloat(r.Quantity, 'f', -1, 64),
			r.Price.StringFixed(6),
			lira(r.TotalValue),
			r.DailyReturn.StringFixed(2),
			gain,
			r.Category)
	}
	tw.Flush()
	fmt.Fprintf(w, "\nTotal: %s  Daily: %s (%.2f%%)\n", lira(summary.TotalValue), lira(summary.DailyGain), summary.DailyReturn)
}

// historyCmd prints the daily total series and its trend.
type historyCmd struct {
	env *cliEnv
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show the daily portfolio value series" }
func (*historyCmd) Usage() string {
	return `fundlog history

  Prints one total per recorded day, oldest first, followed by the change
  across the series.
`
}
func (*historyCmd) SetFlags(*flag.FlagSet) {}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	core, err := c.env.open()
	if err != nil {
		return c.env.fail("Error opening database: %v", err)
	}
	defer core.Close()

	entries, err := core.Ledger().History(ctx)
	if err != nil {
		return c.env.fail("Error reading history: %v", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.env.out, "no history")
		return subcommands.ExitSuccess
	}
	tw := table(c.env.out)
	fmt.Fprintln(tw, "DATE\tTOTAL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\n", e.Date, lira(e.TotalValue))
	}
	tw.Flush()
	s := fundlog.SummarizeHistory(entries)
	fmt.Fprintf(c.env.out, "\nChange since %s: %s (%.2f%%)\n", s.First, lira(s.Change), s.ChangePercent)
	return subcommands.ExitSuccess
}

// importCmd loads the file-based data of earlier versions.
type importCmd struct {
	env     *cliEnv
	funds   string
	history string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import funds.json and portfolio_history.csv" }
func (*importCmd) Usage() string {
	return `fundlog import [-funds <funds.json>] [-history <portfolio_history.csv>]

  Replaces all holdings with the funds file and merges the history file
  into the daily series.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.funds, "funds", "", "Path to a funds.json file")
	f.StringVar(&c.history, "history", "", "Path to a portfolio_history.csv file")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.funds == "" && c.history == "" {
		fmt.Fprint(c.env.errOut, c.Usage())
		return subcommands.ExitUsageError
	}

	var funds, history io.Reader
	if c.funds != "" {
		f, err := os.Open(c.funds)
		if err != nil {
			return c.env.fail("Error opening funds file: %v", err)
		}
		defer f.Close()
		funds = f
	}
	if c.history != "" {
		f, err := os.Open(c.history)
		if err != nil {
			return c.env.fail("Error opening history file: %v", err)
		}
		defer f.Close()
		history = f
	}

	core, err := c.env.open()
	if err != nil {
		return c.env.fail("Error opening database: %v", err)
	}
	defer core.Close()

	result, err := core.ImportLegacy(ctx, funds, history)
	if err != nil {
		return c.env.fail("Error importing: %v", err)
	}
	fmt.Fprintf(c.env.out, "imported %d holdings, %d history rows (%d skipped)\n",
		result.Holdings, result.HistoryRows, result.SkippedHistory)
	return subcommands.ExitSuccess
}
