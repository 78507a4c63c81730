package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractField tries each candidate of the cascade in order against the
// listing handle and returns the first non-empty result. The boolean is
// false when every candidate missed; a miss is a normal outcome, callers
// decide whether the field was required.
func ExtractField(s *goquery.Selection, cascade Cascade) (string, bool) {
	for _, cand := range cascade {
		value, ok := extractCandidate(s, cand)
		if ok {
			return value, true
		}
	}
	return "", false
}

func extractCandidate(s *goquery.Selection, cand Candidate) (string, bool) {
	target := s
	if cand.Selector != "" {
		target = s.Find(cand.Selector)
		if target.Length() == 0 {
			return "", false
		}
	}

	var raw string
	if cand.Attr != "" {
		attr, exists := target.First().Attr(cand.Attr)
		if !exists {
			return "", false
		}
		raw = attr
	} else {
		raw = target.First().Text()
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if cand.Transform != nil {
		raw = strings.TrimSpace(cand.Transform(raw))
		if raw == "" {
			return "", false
		}
	}

	return raw, true
}
