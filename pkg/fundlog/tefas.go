package fundlog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// DefaultSourceURL is the TEFAS fund analysis page.
const DefaultSourceURL = "https://www.tefas.gov.tr/FonAnaliz.aspx"

// fundCodeParam is the query parameter carrying the fund code.
const fundCodeParam = "FonKod"

// maxResponseSize limits source pages to 1MB.
const maxResponseSize = 1 << 20

// Field locations on the fund analysis page. The info panel lists price,
// daily return and category as the 1st, 2nd and 5th list items.
var (
	exprPrice       = xpath.MustCompile(`//*[@id="MainContent_PanelInfo"]/div[1]/ul[1]/li[1]/span`)
	exprDailyReturn = xpath.MustCompile(`//*[@id="MainContent_PanelInfo"]/div[1]/ul[1]/li[2]/span`)
	exprCategory    = xpath.MustCompile(`//*[@id="MainContent_PanelInfo"]/div[1]/ul[1]/li[5]/span`)
)

// HTTPDoer is an interface for making HTTP requests. It enables dependency
// injection for testing without network calls.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// QuoteFetcher retrieves the current quote for one fund code. Failures are
// reported as *FetchError.
type QuoteFetcher interface {
	Fetch(ctx context.Context, code string) (Quote, error)
}

type tefasOptions struct {
	Logger     *slog.Logger
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

type tefasFetcher struct {
	logger  *slog.Logger
	baseURL string
	timeout time.Duration
	client  HTTPDoer
}

func newTefasFetcher(opts tefasOptions) *tefasFetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultSourceURL
	}
	return &tefasFetcher{
		logger:  logger,
		baseURL: baseURL,
		timeout: opts.Timeout,
		client:  client,
	}
}

// Fetch issues a single request for code and scrapes the quote fields.
func (f *tefasFetcher) Fetch(ctx context.Context, code string) (Quote, error) {
	code = normalizeCode(code)
	body, err := f.httpGet(ctx, code)
	if err != nil {
		f.logger.Warn("quote fetch failed", "code", code, "err", err)
		return Quote{}, &FetchError{Code: code, Kind: FetchUnavailable, Err: err}
	}
	quote, err := parseQuotePage(code, body)
	if err != nil {
		f.logger.Warn("quote parse failed", "code", code, "err", err)
		return Quote{}, err
	}
	f.logger.Debug("quote fetched", "code", code, "price", quote.Price.String(), "daily_return", quote.DailyReturn.String())
	return quote, nil
}

func (f *tefasFetcher) httpGet(ctx context.Context, code string) ([]byte, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set(fundCodeParam, code)
	u.RawQuery = q.Encode()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}

// parseQuotePage extracts the three quote fields. Only the price is required.
func parseQuotePage(code string, body []byte) (Quote, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return Quote{}, &FetchError{Code: code, Kind: FetchUnavailable, Err: err}
	}

	quote := Quote{Code: code, Category: DefaultCategory}

	text, ok := fieldText(doc, exprPrice)
	if !ok {
		return Quote{}, &FetchError{Code: code, Kind: FetchNotFound, Err: errors.New("price field missing")}
	}
	price, err := ParseDecimal(text)
	if err != nil {
		return Quote{}, &FetchError{Code: code, Kind: FetchNotFound, Err: err}
	}
	if !price.IsPositive() {
		return Quote{}, &FetchError{Code: code, Kind: FetchNotFound, Err: fmt.Errorf("non-positive price %s", price)}
	}
	quote.Price = Amount{price}

	if text, ok := fieldText(doc, exprDailyReturn); ok {
		if r, err := ParsePercent(text); err == nil {
			quote.DailyReturn = Amount{r}
		}
	}
	if text, ok := fieldText(doc, exprCategory); ok {
		quote.Category = text
	}
	return quote, nil
}

func fieldText(doc *html.Node, expr *xpath.Expr) (string, bool) {
	node := htmlquery.QuerySelector(doc, expr)
	if node == nil {
		return "", false
	}
	text := strings.TrimSpace(htmlquery.InnerText(node))
	if text == "" {
		return "", false
	}
	return text, true
}
