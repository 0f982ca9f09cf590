package fundlog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// DefaultFetchWorkers caps simultaneous requests to the price source.
const DefaultFetchWorkers = 10

// QuoteBatch is the outcome of one orchestration pass. Codes that failed are
// absent from Quotes and present in Failures.
type QuoteBatch struct {
	Requested []string
	Quotes    map[string]Quote
	Failures  map[string]error
}

// AllFailed reports whether codes were requested and none produced a quote.
func (b QuoteBatch) AllFailed() bool {
	return len(b.Requested) > 0 && len(b.Quotes) == 0
}

// FailedCodes returns the failed codes in sorted order.
func (b QuoteBatch) FailedCodes() []string {
	codes := make([]string, 0, len(b.Failures))
	for code := range b.Failures {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// FetchQuotes fetches one quote per distinct normalized code using the
// configured worker pool. It never fails as a whole.
func (c *Core) FetchQuotes(ctx context.Context, codes []string) QuoteBatch {
	return fetchQuotes(ctx, c.fetcher, codes, c.workers, c.logger)
}

func fetchQuotes(ctx context.Context, fetcher QuoteFetcher, codes []string, workers int, logger *slog.Logger) QuoteBatch {
	if workers <= 0 {
		workers = DefaultFetchWorkers
	}
	unique := uniqueCodes(codes)

	type result struct {
		quote Quote
		err   error
	}
	// Each worker owns one slot; slots are read only after Wait.
	results := make([]result, len(unique))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, code := range unique {
		i, code := i, code
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					results[i] = result{err: &FetchError{Code: code, Kind: FetchUnavailable, Err: fmt.Errorf("panic: %v", p)}}
				}
			}()
			q, err := fetcher.Fetch(ctx, code)
			results[i] = result{quote: q, err: err}
			return nil
		})
	}
	_ = g.Wait()

	batch := QuoteBatch{
		Requested: unique,
		Quotes:    make(map[string]Quote, len(unique)),
		Failures:  map[string]error{},
	}
	for i, code := range unique {
		r := results[i]
		if r.err != nil {
			batch.Failures[code] = r.err
			continue
		}
		r.quote.Code = code
		if r.quote.Category == "" {
			r.quote.Category = DefaultCategory
		}
		batch.Quotes[code] = r.quote
	}
	if len(batch.Failures) > 0 {
		logger.Warn("some quotes could not be fetched",
			"requested", len(unique),
			"fetched", len(batch.Quotes),
			"failed", batch.FailedCodes(),
		)
	}
	return batch
}

// uniqueCodes normalizes codes, drops blanks and removes duplicates while
// keeping first-seen order.
func uniqueCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	unique := make([]string, 0, len(codes))
	for _, raw := range codes {
		code := normalizeCode(raw)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		unique = append(unique, code)
	}
	return unique
}
