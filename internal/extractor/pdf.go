// Package extractor pulls the plain-text layer out of statement PDFs,
// including password-protected ones. Extraction output is gated by a
// readability check so font-garbled text reports failure instead of feeding
// the parser garbage.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when a PDF opens fine but yields no readable text
// (image-based scan, or custom font encodings that cannot be decoded).
var ErrNoText = errors.New("no readable text could be extracted")

// ErrInvalidPassword is returned for encrypted PDFs when the supplied
// password is missing or wrong.
var ErrInvalidPassword = pdf.ErrInvalidPassword

// PDF extracts text from statement documents on the local filesystem.
type PDF struct{}

// ExtractText reads a PDF file and returns its text content with pages
// joined by newlines. password is consulted only if the file is encrypted.
func (PDF) ExtractText(path, password string) (string, error) {
	return ExtractText(path, password)
}

// ExtractText reads a PDF file and returns its combined page text.
func ExtractText(path, password string) (text string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", err
	}

	// Offer the password once; returning "" on the second ask stops the
	// library from re-prompting forever on a wrong password.
	asked := false
	r, err := pdf.NewReaderEncrypted(f, fi.Size(), func() string {
		if asked {
			return ""
		}
		asked = true
		return password
	})
	if err != nil {
		return "", err
	}

	pages := extractPages(r)
	if !isReadableText(pages) {
		// Fall back to whole-document extraction, which decodes through a
		// different path and handles some font setups the per-page walk
		// does not.
		if whole := extractWholeDocument(r); isReadableText([]string{whole}) {
			return whole, nil
		}
		return "", ErrNoText
	}

	return strings.Join(pages, "\n"), nil
}

func extractPages(r *pdf.Reader) []string {
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		fontNames := page.Fonts()
		fonts := make(map[string]*pdf.Font)
		for _, name := range fontNames {
			f := page.Font(name)
			fonts[name] = &f
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

func extractWholeDocument(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// textQuality returns the ratio of basic readable characters (a-z, A-Z, 0-9,
// common punctuation, whitespace) to total characters. Strict ASCII on
// purpose: unicode.IsLetter matches the accented garbage that
// identity-encoded fonts produce.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"%&@#!?+=*`, r) ||
				r == '₹' || r == '£' || r == '$' || r == '€' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords that appear in virtually all bank statements. If the extracted
// text contains none of these, it is likely garbage.
var commonWords = []string{
	"bank", "account", "balance", "date", "statement", "upi",
	"transaction", "amount", "money", "paid", "transfer", "rs",
	"credit", "debit", "total", "page",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires >50 chars, >60% readable characters, and at least
// one word a bank statement would contain.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
