package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Price markup on the supplier sites mixes "." and "," as thousands and
// decimal separators ("1.299,000 DT", "1 299.000"), varies between regular
// and discounted price blocks, and is sometimes rendered by a JS widget the
// structured selectors never see. ParsePrice handles the separators; the
// full-text fallback in ExtractPrice recovers the widget case.

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	priceCleanRe = regexp.MustCompile(`[^0-9.,-]`)

	// Number groups optionally followed by a currency token, scanned over the
	// listing's full visible text as a last resort.
	priceTextRe = regexp.MustCompile(`(?i)([0-9][0-9 \x{00a0}.,]*)\s*(?:dt|tnd|€|eur|dinars?)?`)
)

// Bounds for values recovered by the full-text fallback. Accepting an
// arbitrary number from surrounding page text is a precision/recall
// tradeoff; the range keeps absurd values out.
const (
	fallbackPriceMin = 1.0
	fallbackPriceMax = 100000.0
)

// ParsePrice converts a locale-formatted price string into a positive
// amount. The final "." group is the sub-unit part; every earlier "." is a
// thousands separator ("1.299.000" parses as 1299.000). Returns false for
// anything that is not a finite number greater than zero.
func ParsePrice(raw string) (float64, bool) {
	cleaned := whitespaceRe.ReplaceAllString(raw, "")
	cleaned = priceCleanRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if strings.Count(cleaned, ".") > 1 {
		segments := strings.Split(cleaned, ".")
		last := segments[len(segments)-1]
		cleaned = strings.Join(segments[:len(segments)-1], "") + "." + last
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) || value <= 0 {
		return 0, false
	}
	return value, true
}

// ExtractPrice resolves the price of one listing: the selector cascade
// first, then a scan of the listing's full visible text.
func ExtractPrice(s *goquery.Selection, cascade Cascade) (float64, bool) {
	for _, cand := range cascade {
		raw, ok := extractCandidate(s, cand)
		if !ok {
			continue
		}
		if value, ok := ParsePrice(raw); ok {
			return value, true
		}
	}
	return priceFromText(s.Text())
}

func priceFromText(text string) (float64, bool) {
	for _, match := range priceTextRe.FindAllStringSubmatch(text, -1) {
		value, ok := ParsePrice(match[1])
		if !ok {
			continue
		}
		if value > fallbackPriceMin && value < fallbackPriceMax {
			return value, true
		}
	}
	return 0, false
}
