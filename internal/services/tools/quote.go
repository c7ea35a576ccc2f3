package tools

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/eodhd"
	"github.com/ternarybob/analyst/internal/interfaces"
	"github.com/ternarybob/analyst/internal/models"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"
)

const (
	// QuoteToolName is the tool name the agent calls for market data
	QuoteToolName = "get_stock_data"

	// QuoteErrorPrefix starts every failure text returned by the quote tool
	QuoteErrorPrefix = "Financial Data Error:"

	newsHeadlines = 3
)

// QuoteTool reports price, fundamentals, analyst ratings and headlines for a ticker
type QuoteTool struct {
	client interfaces.MarketDataClient
	logger arbor.ILogger
}

// NewQuoteTool creates the financial data tool
func NewQuoteTool(client interfaces.MarketDataClient, logger arbor.ILogger) *QuoteTool {
	return &QuoteTool{
		client: client,
		logger: logger,
	}
}

// Tool returns the agent-facing descriptor
func (q *QuoteTool) Tool() models.Tool {
	return models.Tool{
		Name: QuoteToolName,
		Description: "Get the current stock price, key fundamentals (valuation, P/E, margins, growth), " +
			"analyst recommendations and recent company news for a ticker. " +
			"Use exchange suffixes for non-US listings, e.g. RELIANCE.NS, VOD.L, BHP.AX.",
		Parameters: []models.ToolParameter{
			{Name: "ticker", Type: "string", Description: "Stock ticker symbol, e.g. AAPL or RELIANCE.NS", Required: true},
		},
		Invoke: func(ctx context.Context, args map[string]any) string {
			ticker, _ := stringArg(args, "ticker")
			return q.Lookup(ctx, ticker)
		},
	}
}

// Lookup fetches whatever data is available for ticker and renders it as text.
// It never fails; problems are reported in the returned text.
func (q *QuoteTool) Lookup(ctx context.Context, raw string) string {
	ticker, err := common.ValidateTicker(raw)
	if err != nil {
		return fmt.Sprintf("%s %v", QuoteErrorPrefix, err)
	}
	if q.client == nil || !q.client.HasAPIKey() {
		return fmt.Sprintf("%s market data provider is not configured. Use web_search to find the current price, P/E ratio and recent news for %s.", QuoteErrorPrefix, ticker)
	}

	parsed := common.ParseTicker(ticker)
	symbol := parsed.EODHDSymbol()

	var (
		quote        *eodhd.RealTimeQuote
		fundamentals *eodhd.FundamentalsResponse
		news         eodhd.NewsResponse
		quoteErr     error
		fundErr      error
		newsErr      error
	)

	// Partial data is still useful, so no call cancels the others
	var g errgroup.Group
	g.Go(func() error {
		quote, quoteErr = q.client.GetRealTimeQuote(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		fundamentals, fundErr = q.client.GetFundamentals(ctx, symbol)
		return nil
	})
	g.Go(func() error {
		news, newsErr = q.client.GetNews(ctx, []string{symbol}, eodhd.WithLimit(newsHeadlines))
		return nil
	})
	_ = g.Wait()

	if quote != nil && !quote.Close.Valid {
		quote = nil
		if quoteErr == nil {
			quoteErr = fmt.Errorf("no price returned for %s", symbol)
		}
	}

	if q.logger != nil {
		q.logger.Debug().
			Str("ticker", ticker).
			Str("symbol", symbol).
			Bool("quote", quote != nil).
			Bool("fundamentals", fundamentals != nil).
			Int("news", len(news)).
			Msg("Financial data lookup")
	}

	if quote == nil && fundamentals == nil && len(news) == 0 {
		if eodhd.IsRateLimit(quoteErr) || eodhd.IsRateLimit(fundErr) || eodhd.IsRateLimit(newsErr) {
			return fmt.Sprintf("%s rate limit reached at the market data provider for %s. Use web_search to find the current price, P/E ratio and recent news.", QuoteErrorPrefix, ticker)
		}
		cause := quoteErr
		if cause == nil {
			cause = fundErr
		}
		if cause == nil {
			cause = newsErr
		}
		if cause == nil {
			cause = fmt.Errorf("no data returned")
		}
		if q.logger != nil {
			q.logger.Warn().Str("ticker", ticker).Err(cause).Msg("Financial data unavailable")
		}
		return fmt.Sprintf("%s could not fetch data for %s (%s): %v", QuoteErrorPrefix, ticker, symbol, cause)
	}

	return formatQuote(ticker, symbol, quote, fundamentals, news, quoteErr, fundErr, newsErr)
}

func formatQuote(ticker, symbol string, quote *eodhd.RealTimeQuote, f *eodhd.FundamentalsResponse, news eodhd.NewsResponse, quoteErr, fundErr, newsErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Financial data for %s (symbol %s)\n", ticker, symbol)

	currency := ""
	if f != nil && f.General != nil {
		g := f.General
		currency = g.CurrencyCode
		fields := joinNonEmpty(
			labelled("Company", g.Name),
			labelled("Exchange", g.Exchange),
			labelled("Sector", g.Sector),
			labelled("Industry", g.Industry),
			labelled("Currency", g.CurrencyCode),
		)
		if fields != "" {
			fmt.Fprintf(&b, "%s\n", fields)
		}
	}

	if quote != nil {
		fmt.Fprintf(&b, "Current price: %s", money(quote.Close.Value, currency))
		if quote.Change.Valid && quote.ChangePercent.Valid {
			fmt.Fprintf(&b, " (change %+.2f, %+.2f%%)", quote.Change.Value, quote.ChangePercent.Value)
		}
		if ts := quote.Time(); !ts.IsZero() {
			fmt.Fprintf(&b, " as of %s", ts.Format(time.RFC3339))
		}
		b.WriteString("\n")
		day := joinNonEmpty(
			labelledNumber("Previous close", quote.PreviousClose, "%.2f"),
			labelledNumber("Open", quote.Open, "%.2f"),
			labelledNumber("Day high", quote.High, "%.2f"),
			labelledNumber("Day low", quote.Low, "%.2f"),
			labelledNumber("Volume", quote.Volume, "%.0f"),
		)
		if day != "" {
			fmt.Fprintf(&b, "%s\n", day)
		}
	} else {
		fmt.Fprintf(&b, "Current price: %s\n", unavailable(quoteErr))
	}

	if f != nil {
		if h := f.Highlights; h != nil {
			line := joinNonEmpty(
				labelledBig("Market cap", h.MarketCapitalization),
				labelledNumber("P/E ratio", h.PERatio, "%.2f"),
				labelledNumber("PEG ratio", h.PEGRatio, "%.2f"),
				labelledNumber("EPS", h.EarningsShare, "%.2f"),
				labelledBig("Revenue (TTM)", h.RevenueTTM),
				labelledPercent("Profit margin", h.ProfitMargin),
				labelledPercent("Operating margin", h.OperatingMarginTTM),
				labelledPercent("Return on equity", h.ReturnOnEquityTTM),
				labelledPercent("Revenue growth (YoY)", h.QuarterlyRevenueGrowthYOY),
				labelledPercent("Earnings growth (YoY)", h.QuarterlyEarningsGrowthYOY),
				labelledPercent("Dividend yield", h.DividendYield),
			)
			if line != "" {
				fmt.Fprintf(&b, "Fundamentals: %s\n", line)
			}
		}
		if v := f.Valuation; v != nil {
			line := joinNonEmpty(
				labelledNumber("Trailing P/E", v.TrailingPE, "%.2f"),
				labelledNumber("Forward P/E", v.ForwardPE, "%.2f"),
				labelledNumber("Price/Sales", v.PriceSalesTTM, "%.2f"),
				labelledNumber("Price/Book", v.PriceBookMRQ, "%.2f"),
				labelledNumber("EV/EBITDA", v.EnterpriseValueEbitda, "%.2f"),
			)
			if line != "" {
				fmt.Fprintf(&b, "Valuation: %s\n", line)
			}
		}
		if t := f.Technicals; t != nil {
			line := joinNonEmpty(
				labelledNumber("52-week high", t.FiftyTwoWeekHigh, "%.2f"),
				labelledNumber("52-week low", t.FiftyTwoWeekLow, "%.2f"),
				labelledNumber("50-day MA", t.FiftyDayMA, "%.2f"),
				labelledNumber("200-day MA", t.TwoHundredDayMA, "%.2f"),
				labelledNumber("Beta", t.Beta, "%.2f"),
			)
			if line != "" {
				fmt.Fprintf(&b, "Technicals: %s\n", line)
			}
		}
		if r := f.AnalystRatings; r != nil {
			if consensus := r.Consensus(); consensus != "" {
				fmt.Fprintf(&b, "Analyst recommendation: %s (rating %.2f/5", consensus, r.Rating.Value)
				if n := r.Analysts(); n > 0 {
					fmt.Fprintf(&b, " from %d analysts: strong buy %d, buy %d, hold %d, sell %d, strong sell %d",
						n, r.StrongBuy, r.Buy, r.Hold, r.Sell, r.StrongSell)
				}
				b.WriteString(")")
				if r.TargetPrice.Valid && r.TargetPrice.Value > 0 {
					fmt.Fprintf(&b, ", target price %s", money(r.TargetPrice.Value, currency))
				}
				b.WriteString("\n")
			} else if f.Highlights != nil && f.Highlights.WallStreetTargetPrice.Valid && f.Highlights.WallStreetTargetPrice.Value > 0 {
				fmt.Fprintf(&b, "Analyst target price: %s\n", money(f.Highlights.WallStreetTargetPrice.Value, currency))
			}
		}
	} else {
		fmt.Fprintf(&b, "Fundamentals: %s\n", unavailable(fundErr))
	}

	if len(news) > 0 {
		b.WriteString("Recent news:\n")
		for i, item := range news {
			if i >= newsHeadlines {
				break
			}
			date := item.DateStr
			if !item.Date.IsZero() {
				date = item.Date.Format("2006-01-02")
			}
			fmt.Fprintf(&b, "%d. [%s] %s", i+1, date, strings.TrimSpace(item.Title))
			if item.Link != "" {
				fmt.Fprintf(&b, " (%s)", item.Link)
			}
			b.WriteString("\n")
		}
	} else if newsErr != nil {
		fmt.Fprintf(&b, "Recent news: %s\n", unavailable(newsErr))
	} else {
		b.WriteString("Recent news: none found\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func unavailable(err error) string {
	if err == nil {
		return "Data Unavailable"
	}
	return fmt.Sprintf("Data Unavailable (%v)", err)
}

func labelled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + ": " + value
}

func labelledNumber(label string, n eodhd.Number, format string) string {
	if !n.Valid || n.Value == 0 {
		return ""
	}
	return label + ": " + fmt.Sprintf(format, n.Value)
}

func labelledPercent(label string, n eodhd.Number) string {
	if !n.Valid || n.Value == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %.2f%%", label, n.Value*100)
}

func labelledBig(label string, n eodhd.Number) string {
	if !n.Valid || n.Value == 0 {
		return ""
	}
	return label + ": " + humanNumber(n.Value)
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " | ")
}

func money(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

// humanNumber renders large values as 1.23T / 4.56B / 7.89M
func humanNumber(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
