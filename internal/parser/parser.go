// Package parser converts extracted statement text into structured
// transaction candidates. Each supported statement layout is a Dialect: a
// regex pattern plus an extractor for its submatches. Parsing scans the full
// text with every registered dialect in order and concatenates the results,
// so all matches of the first dialect precede all matches of the second.
// Downstream preview ordering depends on this.
package parser

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-importer/internal/categorize"
	"github.com/insightdelivered/statement-importer/internal/models"
)

// Fields are the raw values a dialect extractor pulls out of one match.
type Fields struct {
	Date   time.Time
	Kind   models.Kind
	Title  string
	Amount decimal.Decimal
}

// Dialect recognizes one statement text layout.
type Dialect struct {
	Name    string
	Pattern *regexp.Regexp
	Extract func(m []string) (Fields, error)
}

// SkippedRecord describes a matched record that could not be turned into a
// candidate. Malformed records are excluded from results, never fatal.
type SkippedRecord struct {
	Dialect string
	Match   string
	Reason  error
}

// Result is the outcome of one parse: the candidates in dialect-then-document
// order, plus per-record failures for diagnostics. An empty Candidates slice
// is a valid outcome meaning no recognizable transactions.
type Result struct {
	Candidates []models.TransactionCandidate
	Skipped    []SkippedRecord
}

// Parser applies a registered list of dialects against statement text.
type Parser struct {
	dialects   []Dialect
	categorize *categorize.Categorizer
}

// New returns a Parser over the given dialects. Dialect order is significant.
func New(dialects []Dialect, c *categorize.Categorizer) *Parser {
	return &Parser{dialects: dialects, categorize: c}
}

// Default returns a Parser with the built-in dialects: IOB first, Paytm second.
func Default(c *categorize.Categorizer) *Parser {
	return New([]Dialect{IOBDialect(), PaytmDialect()}, c)
}

// Parse scans text for all non-overlapping matches of every dialect and
// returns one candidate per well-formed match. A record whose date or amount
// fails to parse is skipped individually; parsing always continues.
func (p *Parser) Parse(text, owner string) Result {
	var res Result

	for _, d := range p.dialects {
		for _, m := range d.Pattern.FindAllStringSubmatch(text, -1) {
			fields, err := d.Extract(m)
			if err != nil {
				res.Skipped = append(res.Skipped, SkippedRecord{
					Dialect: d.Name,
					Match:   snippet(m[0]),
					Reason:  err,
				})
				continue
			}

			res.Candidates = append(res.Candidates, models.TransactionCandidate{
				ID:            uuid.NewString(),
				Owner:         owner,
				Title:         fields.Title,
				Amount:        fields.Amount,
				Category:      p.categorize.Categorize(fields.Title),
				Kind:          fields.Kind,
				Date:          fields.Date.Format("2006-01-02"),
				PaymentMethod: models.PaymentMethodUnspecified,
			})
		}
	}

	return res
}

const snippetLen = 60

// snippet truncates a matched record for diagnostic messages.
func snippet(s string) string {
	if len(s) <= snippetLen {
		return s
	}
	return s[:snippetLen] + "..."
}
