package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// Paytm statements describe each transfer with a direction phrase rather
// than a merchant column:
//
//	DD Mon YYYY ... Money Sent using UPI ... Rs.<amount>
//	DD Mon YYYY ... Money Received using UPI ... Rs.<amount>
//
// The direction phrase doubles as the candidate title since no separate
// merchant text is available in this layout.
var paytmPattern = regexp.MustCompile(
	`(\d{2} \w{3} \d{4}).*?(Money (?:Sent|Received) using UPI).*?Rs\.([\d,]+\.\d{2})`,
)

const paytmDateFormat = "02 Jan 2006"

// PaytmDialect returns the dialect for Paytm-style UPI statement text.
func PaytmDialect() Dialect {
	return Dialect{
		Name:    "paytm",
		Pattern: paytmPattern,
		Extract: extractPaytm,
	}
}

func extractPaytm(m []string) (Fields, error) {
	date, err := time.Parse(paytmDateFormat, m[1])
	if err != nil {
		return Fields{}, fmt.Errorf("bad date %q: %w", m[1], err)
	}

	amount, err := parseAmount(m[3])
	if err != nil {
		return Fields{}, fmt.Errorf("bad amount %q: %w", m[3], err)
	}

	kind := models.KindExpense
	if strings.Contains(m[2], "Received") {
		kind = models.KindIncome
	}

	return Fields{
		Date:   date,
		Kind:   kind,
		Title:  strings.TrimSpace(m[2]),
		Amount: amount,
	}, nil
}
