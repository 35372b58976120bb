package scrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseAmount converts localized currency text like "$1,234.56" or
// "-$12.40" into its decimal value. Every character except digits, the
// decimal point and the sign is stripped before parsing. Malformed
// input yields NaN rather than an error, so extraction can treat a bad
// amount as a missing field and keep going.
func ParseAmount(text string) float64 {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '+' {
			b.WriteRune(r)
		}
	}

	amount, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return math.NaN()
	}
	return amount
}

var moneyPattern = regexp.MustCompile(`[-+]?\$[\d,]+(?:\.\d+)?`)

// AmountIn isolates the last dollar figure inside free text and parses
// it. Transaction lines like "June 10, 2023 - Visa ending in 1234:
// $19.99" carry dates whose digits would poison a whole-line parse, so
// the amount substring is cut out first. Text without a dollar figure
// yields NaN.
func AmountIn(text string) float64 {
	matches := moneyPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return math.NaN()
	}
	return ParseAmount(matches[len(matches)-1])
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// ExtractYear finds the first four digit year inside s. Storefronts
// bury years in option values like "year-2023" as often as in plain
// text, so no surrounding format is assumed.
func ExtractYear(s string) (int, bool) {
	match := yearPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// EarliestYear scans the nodes matched by selector for four digit
// years, checking the value attribute first and the node text second,
// and returns the smallest year found. ok is false when the document
// carries no year filter at all.
func EarliestYear(doc *goquery.Document, selector string) (int, bool) {
	earliest := 0
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		year, ok := ExtractYear(sel.AttrOr("value", ""))
		if !ok {
			year, ok = ExtractYear(sel.Text())
		}
		if !ok {
			return
		}
		if earliest == 0 || year < earliest {
			earliest = year
		}
	})
	return earliest, earliest != 0
}
