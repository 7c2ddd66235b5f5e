// Package intent turns a free-text question into a structured query.
package intent

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
)

// Extractor holds the keyword tables. The zero value is not usable; use New or NewWithTables.
type Extractor struct {
	dateRules   []DateRule
	problem     []string
	responsible []string
}

// New creates an Extractor over the default tables.
func New() *Extractor {
	return NewWithTables(DateRules, ProblemKeywords, ResponsibleKeywords)
}

// NewWithTables creates an Extractor over caller-supplied tables.
func NewWithTables(dateRules []DateRule, problem, responsible []string) *Extractor {
	e := &Extractor{
		dateRules:   make([]DateRule, len(dateRules)),
		problem:     make([]string, len(problem)),
		responsible: make([]string, len(responsible)),
	}
	for i, r := range dateRules {
		e.dateRules[i] = DateRule{Pattern: norm.NFC.String(r.Pattern), Range: r.Range}
	}
	for i, k := range problem {
		e.problem[i] = norm.NFC.String(k)
	}
	for i, k := range responsible {
		e.responsible[i] = norm.NFC.String(k)
	}
	return e
}

// Extract reads a message against the known client names. It never fails:
// no match simply leaves the corresponding field empty.
func (e *Extractor) Extract(message string, clientNames []string) entities.Query {
	msg := norm.NFC.String(message)
	return entities.Query{
		ClientName:             MatchClient(msg, clientNames),
		DateRange:              e.DateRange(msg),
		IsProblemQuery:         containsAny(msg, e.problem),
		WantsResponsiblePerson: containsAny(msg, e.responsible),
	}
}

// MatchClient returns the first name, in the given order, that either appears in the message
// or contains the message's first whitespace-delimited token.
//
// The rule is permissive on purpose and keeps first-match order rather than ranking candidates,
// so a short leading token can select an unrelated client whose name happens to contain it.
func MatchClient(message string, clientNames []string) string {
	msg := norm.NFC.String(message)
	var first string
	if fields := strings.Fields(msg); len(fields) > 0 {
		first = fields[0]
	}
	for _, name := range clientNames {
		n := norm.NFC.String(name)
		if n == "" {
			continue
		}
		if strings.Contains(msg, n) || (first != "" && strings.Contains(n, first)) {
			return name
		}
	}
	return ""
}

// DateRange returns the range of the first table phrase found in the message.
func (e *Extractor) DateRange(message string) entities.DateRange {
	r, _ := e.matchDate(norm.NFC.String(message))
	return r
}

// DateKeyword returns the phrase that selected the date range, for logging.
func (e *Extractor) DateKeyword(message string) string {
	_, kw := e.matchDate(norm.NFC.String(message))
	return kw
}

func (e *Extractor) matchDate(msg string) (entities.DateRange, string) {
	for _, rule := range e.dateRules {
		if strings.Contains(msg, rule.Pattern) {
			return rule.Range, rule.Pattern
		}
	}
	return entities.DateNone, ""
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
