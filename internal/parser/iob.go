package parser

import (
	"fmt"
	"regexp"
	"time"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// IOB statements lay each transaction out as
//
//	DD-MM-YYYY ... UPI/<ref>/<DR|CR>/<merchant>/<code>/... <amount>
//
// where the merchant segment may be broken across a line. DR marks money
// paid out, CR money received.
var iobPattern = regexp.MustCompile(
	`(\d{2}-\d{2}-\d{4}).*?UPI/.*?/(DR|CR)/(.+?)(?:\n|/)[A-Z]{2,3}/.*?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`,
)

const iobDateFormat = "02-01-2006"

// IOBDialect returns the dialect for IOB-style UPI statement text.
func IOBDialect() Dialect {
	return Dialect{
		Name:    "iob",
		Pattern: iobPattern,
		Extract: extractIOB,
	}
}

func extractIOB(m []string) (Fields, error) {
	date, err := time.Parse(iobDateFormat, m[1])
	if err != nil {
		return Fields{}, fmt.Errorf("bad date %q: %w", m[1], err)
	}

	amount, err := parseAmount(m[4])
	if err != nil {
		return Fields{}, fmt.Errorf("bad amount %q: %w", m[4], err)
	}

	kind := models.KindIncome
	if m[2] == "DR" {
		kind = models.KindExpense
	}

	return Fields{
		Date:   date,
		Kind:   kind,
		Title:  collapseWhitespace(m[3]),
		Amount: amount,
	}, nil
}
