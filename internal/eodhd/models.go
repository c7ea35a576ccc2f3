package eodhd

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Number decodes EODHD numeric fields that are sometimes sent as strings
// ("NA", "123.4") or null. Unparseable values decode to zero and Valid=false.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n.Value, n.Valid = f, true
		}
		return nil
	}
	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		n.Value, n.Valid = f, true
	}
	return nil
}

// RealTimeQuote is the delayed real-time quote returned by /real-time/{symbol}.
type RealTimeQuote struct {
	Code          string `json:"code"`
	Timestamp     Number `json:"timestamp"`
	Open          Number `json:"open"`
	High          Number `json:"high"`
	Low           Number `json:"low"`
	Close         Number `json:"close"`
	Volume        Number `json:"volume"`
	PreviousClose Number `json:"previousClose"`
	Change        Number `json:"change"`
	ChangePercent Number `json:"change_p"`
}

// Time returns the quote timestamp, zero when absent.
func (q *RealTimeQuote) Time() time.Time {
	if !q.Timestamp.Valid || q.Timestamp.Value <= 0 {
		return time.Time{}
	}
	return time.Unix(int64(q.Timestamp.Value), 0).UTC()
}

// NewsItem represents a news article.
type NewsItem struct {
	Date      time.Time      `json:"-"`
	DateStr   string         `json:"date"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Link      string         `json:"link"`
	Symbols   []string       `json:"symbols"`
	Tags      []string       `json:"tags"`
	Sentiment *NewsSentiment `json:"sentiment,omitempty"`
}

// NewsSentiment contains sentiment analysis data.
type NewsSentiment struct {
	Polarity float64 `json:"polarity"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
}

// NewsResponse is the response from the news endpoint.
type NewsResponse []NewsItem

// FundamentalsResponse holds the fundamentals sections used for memos.
// Sections absent for the instrument type (ETFs, indices) stay nil.
type FundamentalsResponse struct {
	General        *GeneralInfo    `json:"General"`
	Highlights     *Highlights     `json:"Highlights"`
	Valuation      *Valuation      `json:"Valuation"`
	Technicals     *Technicals     `json:"Technicals"`
	AnalystRatings *AnalystRatings `json:"AnalystRatings"`
}

// GeneralInfo contains general company information.
type GeneralInfo struct {
	Code           string `json:"Code"`
	Type           string `json:"Type"`
	Name           string `json:"Name"`
	Exchange       string `json:"Exchange"`
	CurrencyCode   string `json:"CurrencyCode"`
	CurrencySymbol string `json:"CurrencySymbol"`
	CountryName    string `json:"CountryName"`
	Sector         string `json:"Sector"`
	Industry       string `json:"Industry"`
	Description    string `json:"Description"`
	WebURL         string `json:"WebURL"`
}

// Highlights contains key financial highlights.
type Highlights struct {
	MarketCapitalization       Number `json:"MarketCapitalization"`
	EBITDA                     Number `json:"EBITDA"`
	PERatio                    Number `json:"PERatio"`
	PEGRatio                   Number `json:"PEGRatio"`
	WallStreetTargetPrice      Number `json:"WallStreetTargetPrice"`
	DividendYield              Number `json:"DividendYield"`
	EarningsShare              Number `json:"EarningsShare"`
	ProfitMargin               Number `json:"ProfitMargin"`
	OperatingMarginTTM         Number `json:"OperatingMarginTTM"`
	ReturnOnEquityTTM          Number `json:"ReturnOnEquityTTM"`
	RevenueTTM                 Number `json:"RevenueTTM"`
	QuarterlyRevenueGrowthYOY  Number `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY Number `json:"QuarterlyEarningsGrowthYOY"`
}

// Valuation contains valuation metrics.
type Valuation struct {
	TrailingPE            Number `json:"TrailingPE"`
	ForwardPE             Number `json:"ForwardPE"`
	PriceSalesTTM         Number `json:"PriceSalesTTM"`
	PriceBookMRQ          Number `json:"PriceBookMRQ"`
	EnterpriseValue       Number `json:"EnterpriseValue"`
	EnterpriseValueEbitda Number `json:"EnterpriseValueEbitda"`
}

// Technicals contains technical indicators.
type Technicals struct {
	Beta             Number `json:"Beta"`
	FiftyTwoWeekHigh Number `json:"52WeekHigh"`
	FiftyTwoWeekLow  Number `json:"52WeekLow"`
	FiftyDayMA       Number `json:"50DayMA"`
	TwoHundredDayMA  Number `json:"200DayMA"`
}

// AnalystRatings contains analyst ratings data.
type AnalystRatings struct {
	Rating      Number `json:"Rating"`
	TargetPrice Number `json:"TargetPrice"`
	StrongBuy   int    `json:"StrongBuy"`
	Buy         int    `json:"Buy"`
	Hold        int    `json:"Hold"`
	Sell        int    `json:"Sell"`
	StrongSell  int    `json:"StrongSell"`
}

// Consensus summarises the rating counts as a recommendation key.
// Rating is the EODHD 1 (strong sell) to 5 (strong buy) scale.
func (r *AnalystRatings) Consensus() string {
	if r == nil || !r.Rating.Valid || r.Rating.Value <= 0 {
		return ""
	}
	switch v := r.Rating.Value; {
	case v >= 4.5:
		return "strong_buy"
	case v >= 3.5:
		return "buy"
	case v >= 2.5:
		return "hold"
	case v >= 1.5:
		return "sell"
	default:
		return "strong_sell"
	}
}

// Analysts returns the total number of analyst opinions.
func (r *AnalystRatings) Analysts() int {
	if r == nil {
		return 0
	}
	return r.StrongBuy + r.Buy + r.Hold + r.Sell + r.StrongSell
}
