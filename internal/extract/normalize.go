package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	lineBreakRe      = regexp.MustCompile(`\r?\n+`)
	episodePrefixRe  = regexp.MustCompile(`(?i)^Episode\s*\d+\s*:\s*`)
	numberedPrefixRe = regexp.MustCompile(`^\d+\s*[:.-]\s*`)
)

// CollapseSpace replaces every whitespace run with one space and trims the ends
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeTitle cleans an episode title scraped from a row:
// "Episode 3: The Fall" and "3: The Fall" both become "The Fall".
func NormalizeTitle(raw string) string {
	t := lineBreakRe.ReplaceAllString(raw, " ")
	t = CollapseSpace(t)
	t = episodePrefixRe.ReplaceAllString(t, "")
	t = numberedPrefixRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// AbsolutizeURL prefixes origin to site-relative paths. Absolute URLs and
// empty strings are returned unchanged.
func AbsolutizeURL(origin, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	origin = strings.TrimRight(origin, "/")
	if strings.HasPrefix(ref, "/") {
		return origin + ref
	}
	return origin + "/" + ref
}

// LastPathSegment returns the final non-empty segment of a link, ignoring query and fragment
func LastPathSegment(link string) string {
	if i := strings.IndexAny(link, "?#"); i >= 0 {
		link = link[:i]
	}
	link = strings.TrimRight(link, "/")
	if i := strings.LastIndex(link, "/"); i >= 0 {
		return link[i+1:]
	}
	return link
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// atoiPositive parses s as a positive integer
func atoiPositive(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
