package common

import (
	"errors"
	"testing"
)

func TestValidateTicker(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"AAPL", "AAPL", false},
		{"msft", "msft", false},
		{"RELIANCE.NS", "RELIANCE.NS", false},
		{"BRK.B", "BRK.B", false},
		{"  TSLA  ", "TSLA", false},
		{"7203.T", "7203.T", false},

		{"", "", true},
		{"   ", "", true},
		{"...", "", true},
		{"M&M.NS", "", true},
		{"AAPL; DROP", "", true},
		{"<script>", "", true},
		{"ÄPFEL", "", true},
		{"ABCDEFGHIJKLMNOPQRSTU", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateTicker(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateTicker(%q) expected error, got %q", tt.input, got)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("error %v does not wrap ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateTicker(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateTicker(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTicker(t *testing.T) {
	tests := []struct {
		input      string
		wantCode   string
		wantSuffix string
		wantString string
		wantEODHD  string
	}{
		// No suffix defaults to US listing
		{"AAPL", "AAPL", "", "AAPL", "AAPL.US"},
		{"aapl", "AAPL", "", "AAPL", "AAPL.US"},

		// Yahoo-style market suffixes
		{"RELIANCE.NS", "RELIANCE", "NS", "RELIANCE.NS", "RELIANCE.NSE"},
		{"500325.BO", "500325", "BO", "500325.BO", "500325.BSE"},
		{"VOD.L", "VOD", "L", "VOD.L", "VOD.LSE"},
		{"BHP.AX", "BHP", "AX", "BHP.AX", "BHP.AU"},
		{"SAP.DE", "SAP", "DE", "SAP.DE", "SAP.XETRA"},

		// Share classes
		{"BRK.B", "BRK", "B", "BRK.B", "BRK-B.US"},

		// Unknown multi-letter suffix passes through
		{"ABC.XX", "ABC", "XX", "ABC.XX", "ABC.XX"},

		// Trailing dot is ignored
		{"MAHMF.", "MAHMF", "", "MAHMF", "MAHMF.US"},

		{"", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseTicker(tt.input)

			if result.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", result.Code, tt.wantCode)
			}
			if result.Suffix != tt.wantSuffix {
				t.Errorf("Suffix = %q, want %q", result.Suffix, tt.wantSuffix)
			}
			if result.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", result.String(), tt.wantString)
			}
			if result.EODHDSymbol() != tt.wantEODHD {
				t.Errorf("EODHDSymbol() = %q, want %q", result.EODHDSymbol(), tt.wantEODHD)
			}
		})
	}
}
