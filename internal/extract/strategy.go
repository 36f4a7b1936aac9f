// Package extract holds the static HTML extraction rules for SFlix pages.
//
// Every multi-selector lookup is an ordered list of strategies evaluated lazily;
// the first strategy producing a non-empty result wins, so when two candidates
// both match, the earlier one always decides the result.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one candidate way of locating a node set under a root
type Strategy struct {
	Name string
	Find func(root *goquery.Selection) *goquery.Selection
}

// Selector builds a strategy from a CSS selector
func Selector(sel string) Strategy {
	return Strategy{
		Name: sel,
		Find: func(root *goquery.Selection) *goquery.Selection {
			return root.Find(sel)
		},
	}
}

// Selectors builds one strategy per CSS selector, keeping their order
func Selectors(sels ...string) []Strategy {
	out := make([]Strategy, 0, len(sels))
	for _, s := range sels {
		out = append(out, Selector(s))
	}
	return out
}

// NthBlock selects sel inside the n-th (zero based) match of block
func NthBlock(block string, n int, sel string) Strategy {
	return Strategy{
		Name: block + ":eq(" + itoa(n) + ") " + sel,
		Find: func(root *goquery.Selection) *goquery.Selection {
			return root.Find(block).Eq(n).Find(sel)
		},
	}
}

// FirstMatch evaluates strategies in order and returns the first non-empty
// selection together with the winning strategy name. An empty selection and
// name are returned when nothing matches.
func FirstMatch(root *goquery.Selection, strategies []Strategy) (*goquery.Selection, string) {
	for _, s := range strategies {
		if found := s.Find(root); found.Length() > 0 {
			return found, s.Name
		}
	}
	return root.Slice(0, 0), ""
}

// FirstText returns the trimmed text of the first selector whose first match has text
func FirstText(root *goquery.Selection, sels ...string) string {
	for _, sel := range sels {
		if t := strings.TrimSpace(root.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// FirstAttr returns the first non-empty attribute value, trying each selector in order
func FirstAttr(root *goquery.Selection, attr string, sels ...string) string {
	for _, sel := range sels {
		if v, ok := root.Find(sel).First().Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// LabeledText reads a "Label: value" row, returning value without the label prefix
func LabeledText(root *goquery.Selection, rowSel, label string) string {
	row := root.Find(rowSel + `:contains("` + label + `")`).First()
	if row.Length() == 0 {
		return ""
	}
	t := CollapseSpace(row.Text())
	t = strings.TrimSpace(strings.TrimPrefix(t, label+":"))
	return strings.TrimSpace(strings.TrimPrefix(t, label))
}

// AttrCascade returns the first non-empty attribute among attrs on s
func AttrCascade(s *goquery.Selection, attrs ...string) string {
	for _, a := range attrs {
		if v, ok := s.Attr(a); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
