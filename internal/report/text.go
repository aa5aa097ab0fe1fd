package report

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	summaryHeading = "Executive Summary"
	detailMarker   = "1."
	// fallbackSplit is where the text is cut when no summary heading exists.
	fallbackSplit = 500
	// maxCleanRounds bounds the fixpoint loop in Clean.
	maxCleanRounds = 16
)

var (
	linkPattern     = regexp.MustCompile(`\[[^\]]*\]\([^)]*\)`)
	markupPattern   = regexp.MustCompile("[*#_`>~]+")
	bulletPattern   = regexp.MustCompile(`(?m)^[ \t]*(?:[-+][ \t]+)+`)
	rulePattern     = regexp.MustCompile(`(?m)^[ \t|:]*-{3,}[ \t|:-]*$`)
	blankRunPattern = regexp.MustCompile(`\n\s*\n+`)
	spaceRunPattern = regexp.MustCompile(`\s{2,}`)
	numberedPattern = regexp.MustCompile(`\d+\.`)
)

// Split cuts the full report text into the executive summary block and the
// detailed block. Neither block is cleaned.
func Split(full string) (executive, detailed string) {
	start := strings.Index(full, summaryHeading)
	if start < 0 {
		runes := []rune(full)
		if len(runes) <= fallbackSplit {
			return full, ""
		}
		return string(runes[:fallbackSplit]), string(runes[fallbackSplit:])
	}

	rest := full[start:]
	cut := strings.Index(rest, detailMarker)
	if cut < 0 {
		return strings.TrimSpace(rest), ""
	}
	return strings.TrimSpace(rest[:cut]), strings.TrimSpace(rest[cut:])
}

// Clean strips markdown and normalises whitespace, leaving numbered section
// markers on their own paragraph. Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	for i := 0; i < maxCleanRounds; i++ {
		next := cleanOnce(text)
		if next == text {
			return next
		}
		text = next
	}
	return text
}

func cleanOnce(text string) string {
	text = linkPattern.ReplaceAllString(text, "")
	text = markupPattern.ReplaceAllString(text, "")
	text = bulletPattern.ReplaceAllString(text, "")
	text = rulePattern.ReplaceAllString(text, "")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	text = spaceRunPattern.ReplaceAllString(text, " ")
	text = breakBeforeNumbers(text)
	return strings.TrimSpace(text)
}

// markerLeads are the characters other than whitespace a section number
// may directly follow.
const markerLeads = "([{:;\"'“‘"

// breakBeforeNumbers puts a blank line before every "N." that follows
// whitespace, an opening bracket, a colon or a quote, and is not part of a
// decimal such as 3.5.
func breakBeforeNumbers(text string) string {
	var b strings.Builder
	last := 0
	for _, loc := range numberedPattern.FindAllStringIndex(text, -1) {
		if !isSectionNumber(text, loc[0], loc[1]) {
			continue
		}
		b.WriteString(strings.TrimRightFunc(text[last:loc[0]], unicode.IsSpace))
		b.WriteString("\n\n")
		last = loc[0]
	}
	b.WriteString(text[last:])
	return b.String()
}

func isSectionNumber(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsSpace(r) && !strings.ContainsRune(markerLeads, r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
