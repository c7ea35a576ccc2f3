package common

import (
	"fmt"
	"strings"
)

// MaxTickerLength bounds accepted ticker input
const MaxTickerLength = 20

// Ticker represents a parsed, optionally exchange-suffixed symbol.
// Format: CODE[.SUFFIX] (e.g., "AAPL", "RELIANCE.NS", "BRK.B")
type Ticker struct {
	// Code is the symbol without its exchange suffix (e.g., "RELIANCE")
	Code string
	// Suffix is the market suffix as typed by the user, upper case (e.g., "NS")
	Suffix string
	// Raw is the validated input
	Raw string
}

// SuffixToEODHD maps Yahoo-style market suffixes to EODHD exchange codes.
var SuffixToEODHD = map[string]string{
	"US": "US",
	"NS": "NSE",
	"BO": "BSE",
	"L":  "LSE",
	"TO": "TO",
	"V":  "V",
	"AX": "AU",
	"HK": "HK",
	"DE": "XETRA",
	"F":  "F",
	"PA": "PA",
	"AS": "AS",
	"MI": "MI",
	"MC": "MC",
	"SW": "SW",
	"T":  "TSE",
	"SI": "SG",
	"KS": "KO",
	"SS": "SHG",
	"SZ": "SHE",
}

// ValidateTicker checks a user supplied ticker. Accepted: ASCII letters,
// digits and '.', at least one letter or digit, at most MaxTickerLength
// characters. Surrounding whitespace is removed. Errors wrap ErrValidation.
func ValidateTicker(raw string) (string, error) {
	ticker := strings.TrimSpace(raw)
	if ticker == "" {
		return "", fmt.Errorf("%w: ticker is required", ErrValidation)
	}
	if len(ticker) > MaxTickerLength {
		return "", fmt.Errorf("%w: ticker must be at most %d characters", ErrValidation, MaxTickerLength)
	}

	alnum := 0
	for i := 0; i < len(ticker); i++ {
		c := ticker[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			alnum++
		case c == '.':
		default:
			return "", fmt.Errorf("%w: invalid ticker format %q (letters, digits and '.' only)", ErrValidation, ticker)
		}
	}
	if alnum == 0 {
		return "", fmt.Errorf("%w: invalid ticker format %q", ErrValidation, ticker)
	}

	return ticker, nil
}

// ParseTicker splits a ticker into code and market suffix at the last '.'.
// Input is not validated; use ValidateTicker first for user input.
func ParseTicker(ticker string) Ticker {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Ticker{}
	}

	upper := strings.ToUpper(ticker)
	if idx := strings.LastIndex(upper, "."); idx > 0 && idx < len(upper)-1 {
		return Ticker{
			Code:   upper[:idx],
			Suffix: upper[idx+1:],
			Raw:    ticker,
		}
	}

	return Ticker{
		Code: strings.Trim(upper, "."),
		Raw:  ticker,
	}
}

// EODHDSymbol returns the EODHD API symbol format.
// Example: "RELIANCE.NS" -> "RELIANCE.NSE", "AAPL" -> "AAPL.US", "BRK.B" -> "BRK-B.US"
func (t Ticker) EODHDSymbol() string {
	if t.Code == "" {
		return ""
	}
	if t.Suffix == "" {
		return t.Code + ".US"
	}
	if exchange, ok := SuffixToEODHD[t.Suffix]; ok {
		return t.Code + "." + exchange
	}
	// Unknown single-letter suffixes are US share classes (BRK.B)
	if len(t.Suffix) == 1 {
		return t.Code + "-" + t.Suffix + ".US"
	}
	return t.Code + "." + t.Suffix
}

// String returns the ticker as typed, upper case
func (t Ticker) String() string {
	if t.Suffix == "" {
		return t.Code
	}
	return t.Code + "." + t.Suffix
}
