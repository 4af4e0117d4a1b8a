package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Profit errors.
var (
	// ErrEmptyProfit is returned when the profit cell is blank.
	ErrEmptyProfit = errors.New("profit after tax is empty")
	// ErrInvalidProfit is returned when the profit cell is not a signed decimal.
	ErrInvalidProfit = errors.New("invalid profit after tax")
)

// profitCleaner removes the currency symbol, thousands separators and
// every kind of space the published figures use.
var profitCleaner = strings.NewReplacer(
	"€", "",
	",", "",
	" ", "",
	"\u00a0", "", // no-break space
	"\u202f", "", // narrow no-break space
	"EUR", "",
)

// belgianPrinter formats amounts with Belgian (Dutch) grouping.
var belgianPrinter = message.NewPrinter(language.MustParse("nl-BE"))

// Profit is the latest profit after tax of an agency, in euros.
// Value is what the chart plots; Raw is what the table shows.
type Profit struct {
	Value float64 `json:"value"`
	Raw   string  `json:"raw"`
}

// ParseProfit parses a profit cell such as "€ 1,234,567", "-45 000" or "12500.50".
func ParseProfit(s string) (Profit, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Profit{}, ErrEmptyProfit
	}

	cleaned := strings.TrimSpace(profitCleaner.Replace(raw))
	// Some exports print negatives as "(12345)".
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.TrimSuffix(strings.TrimPrefix(cleaned, "("), ")")
	}
	// A minus sign typeset as U+2212.
	cleaned = strings.Replace(cleaned, "\u2212", "-", 1)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Profit{}, fmt.Errorf("%w: %q", ErrInvalidProfit, raw)
	}
	return Profit{Value: v, Raw: raw}, nil
}

// Negative reports whether the agency posted a loss.
func (p Profit) Negative() bool {
	return p.Value < 0
}

// String returns the amount formatted as euros.
func (p Profit) String() string {
	return FormatEuro(p.Value)
}

// FormatEuro formats v as a whole-euro amount with Belgian digit grouping,
// for example "€ 1.234.567" or "€ -45.000".
func FormatEuro(v float64) string {
	return belgianPrinter.Sprintf("€ %.0f", v)
}
