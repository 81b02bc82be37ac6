// Package detector recognizes anti-bot interstitials that are served with a
// success status instead of the product page.
package detector

import (
	"bytes"
	"strings"
)

// Heuristic implements a handful of rule-based checks.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

// Matched against the lowercased body. Only markers that appear on the
// interstitial itself belong here; Cloudflare's jsd script under
// /cdn-cgi/challenge-platform/ is also injected into regular pages.
var challengeMarkers = [][]byte{
	[]byte("/errors/validatecaptcha"),
	[]byte("<title>robot check</title>"),
	[]byte("cf-browser-verification"),
	[]byte("cf_chl_opt"),
	[]byte("<title>just a moment...</title>"),
	[]byte("_incapsula_resource"),
	[]byte("px-captcha"),
	[]byte("captcha-delivery.com"),
}

// Challenged reports whether body looks like a bot wall rather than a page.
func (h *Heuristic) Challenged(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	lower := bytes.ToLower(body)
	for _, marker := range challengeMarkers {
		if bytes.Contains(lower, marker) {
			return true
		}
	}
	return len(body) < h.BodyLengthThreshold && scriptDensityHigh(string(lower))
}

// scriptDensityHigh reports whether script elements cover at least half of a
// lowercased document.
func scriptDensityHigh(lower string) bool {
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	scriptCoverage := 0
	searchPos := 0

	for {
		relativeStart := strings.Index(lower[searchPos:], openTag)
		if relativeStart == -1 {
			break
		}
		start := searchPos + relativeStart

		tagClose := strings.IndexByte(lower[start:], '>')
		if tagClose == -1 {
			scriptCoverage += total - start
			break
		}
		contentStart := start + tagClose + 1

		nextSearch := total
		if relativeEnd := strings.Index(lower[contentStart:], closeTag); relativeEnd != -1 {
			nextSearch = contentStart + relativeEnd + len(closeTag)
		}

		scriptCoverage += nextSearch - start
		searchPos = nextSearch
	}

	return scriptCoverage*100/total >= 50
}
