// Package classify labels recognized text lines by content so downstream
// styling and filtering can treat prices, dates and plain text differently.
package classify

import (
	"regexp"
	"strings"
	"unicode"
)

// ContentType is the closed set of labels for a recognized line.
type ContentType int

const (
	Regular ContentType = iota
	Number
	Date
	Price
	ProductName
)

// String returns the lowercase label name.
func (t ContentType) String() string {
	switch t {
	case Number:
		return "number"
	case Date:
		return "date"
	case Price:
		return "price"
	case ProductName:
		return "productName"
	default:
		return "regular"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (t ContentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Numeric reports whether the type is one of the digit-heavy categories
// that tolerate punctuation-dense text (number, price, date).
func (t ContentType) Numeric() bool {
	return t == Number || t == Date || t == Price
}

// CurrencyRunes are the currency symbols recognized in price detection and
// excluded from special-character counting for numeric content.
const CurrencyRunes = "€$£¥₴"

var (
	currencyPattern = regexp.MustCompile(`[€$£¥₴]\s*\d|\d\s*[€$£¥₴]|(?i)\b(USD|EUR|GBP|UAH|JPY|CHF|PLN)\b`)
	// The trailing class mirrors the leading one so a dotted or comma date
	// component ("12.05.2024") never reads as a price; a single sentence-final
	// dot or comma is still allowed ("costs 12.99.").
	decimalPrice = regexp.MustCompile(`(^|[^\d.,])\d+[.,]\d{2}([^\d.,]|[.,]?$)`)

	dateDMY       = regexp.MustCompile(`^\d{1,2}[./-]\d{1,2}[./-]\d{2,4}$`)
	dateYMD       = regexp.MustCompile(`^\d{2,4}[./-]\d{1,2}[./-]\d{1,2}$`)
	dateMonthName = regexp.MustCompile(`(?i)^\d{1,2}\.?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{2,4}$`)

	productKeyword = regexp.MustCompile(`(?i)\b(pack|package|bottle|box|jar|can|bag|tube|roll|piece|pcs|set|kit|kg|gr|ml|liter|litre)\b`)
)

// Detect classifies a line of text. Rules are evaluated in order with first
// match winning: price, date, number, product name, regular. The function is
// pure; identical text always yields the same type.
func Detect(text string) ContentType {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Regular
	}

	if currencyPattern.MatchString(trimmed) || decimalPrice.MatchString(trimmed) {
		return Price
	}

	if dateDMY.MatchString(trimmed) || dateYMD.MatchString(trimmed) || dateMonthName.MatchString(trimmed) {
		return Date
	}

	if digitRatio(trimmed) > 0.5 {
		return Number
	}

	if isProductName(trimmed) {
		return ProductName
	}

	return Regular
}

// digitRatio returns the fraction of runes that are digits.
func digitRatio(s string) float64 {
	total, digits := 0, 0
	for _, r := range s {
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}

func isProductName(s string) bool {
	runes := []rune(s)
	if len(runes) <= 5 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	return productKeyword.MatchString(s)
}
