package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

const defaultQuoteAPIBase = "https://query1.finance.yahoo.com"

// StockQuote provides stock lookups: current price or company profile by symbol.
type StockQuote struct {
	baseURL    string
	httpClient Doer
}

func NewStockQuote(httpClient Doer) *StockQuote {
	return &StockQuote{baseURL: defaultQuoteAPIBase, httpClient: httpClient}
}

// NewStockQuoteWithBase overrides the API base URL, for tests.
func NewStockQuoteWithBase(httpClient Doer, baseURL string) *StockQuote {
	return &StockQuote{baseURL: baseURL, httpClient: httpClient}
}

func (t *StockQuote) Name() string  { return "getStockQuote" }
func (t *StockQuote) Title() string { return "Get Stock Quote" }
func (t *StockQuote) Description() string {
	return "Fetches stock data for a ticker symbol: the current market price or the company profile."
}

func (t *StockQuote) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"symbol": {
				Type:        "string",
				Description: "The stock symbol to fetch data for.",
			},
			"action": {
				Type:        "string",
				Description: "Action to perform: 'getCurrentPrice' or 'getCompanyProfile'.",
				Enum:        []any{"getCurrentPrice", "getCompanyProfile"},
			},
		},
		Required: []string{"symbol", "action"},
	}
}

func (t *StockQuote) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	symbol, _ := args["symbol"].(string)
	action, _ := args["action"].(string)
	if symbol == "" || action == "" {
		return nil, fmt.Errorf("both 'symbol' and 'action' arguments are required")
	}

	switch action {
	case "getCurrentPrice":
		return t.currentPrice(ctx, symbol)
	case "getCompanyProfile":
		return t.companyProfile(ctx, symbol)
	default:
		return nil, fmt.Errorf("invalid action %q", action)
	}
}

func (t *StockQuote) currentPrice(ctx context.Context, symbol string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", t.baseURL, url.PathEscape(symbol))

	var out struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					Currency           string  `json:"currency"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	if err := t.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("no quote data for symbol %q", symbol)
	}

	meta := out.Chart.Result[0].Meta
	return map[string]any{
		"symbol":   symbol,
		"price":    meta.RegularMarketPrice,
		"currency": meta.Currency,
	}, nil
}

func (t *StockQuote) companyProfile(ctx context.Context, symbol string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile", t.baseURL, url.PathEscape(symbol))

	var out struct {
		QuoteSummary struct {
			Result []struct {
				AssetProfile struct {
					Sector   string `json:"sector"`
					Industry string `json:"industry"`
					Summary  string `json:"longBusinessSummary"`
					Website  string `json:"website"`
				} `json:"assetProfile"`
			} `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := t.getJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	if len(out.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no profile data for symbol %q", symbol)
	}

	profile := out.QuoteSummary.Result[0].AssetProfile
	return map[string]any{
		"symbol":      symbol,
		"sector":      profile.Sector,
		"industry":    profile.Industry,
		"description": profile.Summary,
		"website":     profile.Website,
	}, nil
}

func (t *StockQuote) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quote request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, v)
}
