package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTextQuality(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		min   float64
		max   float64
	}{
		{"clean statement text", []string{"01-03-2024 UPI payment to Reliance Mart 1,250.00"}, 0.95, 1.0},
		{"binary garbage", []string{"\x01\x02ЩДФ\x7fЫ\x03\x04Ц\x05Ч\x06\x07ЪЭ\x0eЮ"}, 0.0, 0.4},
		{"empty", nil, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := textQuality(tt.pages)
			if q < tt.min || q > tt.max {
				t.Errorf("textQuality = %.2f, want within [%.2f, %.2f]", q, tt.min, tt.max)
			}
		})
	}
}

func TestIsReadableText(t *testing.T) {
	statement := "Account statement 01-03-2024\n" +
		"UPI/xx/DR/Reliance Mart/ABC/1,250.00\n" +
		"Closing balance 5,000.00"

	tests := []struct {
		name  string
		pages []string
		want  bool
	}{
		{"real statement text", []string{statement}, true},
		{"too short", []string{"UPI bank"}, false},
		{"readable but no statement words", []string{strings.Repeat("hello wxrld this is prose ", 10)}, false},
		{"garbage", []string{strings.Repeat("\x01\x02\x03РЖД", 50)}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isReadableText(tt.pages); got != tt.want {
				t.Errorf("isReadableText = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContainsCommonWords(t *testing.T) {
	if !containsCommonWords([]string{"Your ACCOUNT Statement"}) {
		t.Error("expected statement words to be detected case-insensitively")
	}
	if containsCommonWords([]string{"lorem ipsum dolor"}) {
		t.Error("expected no statement words in prose")
	}
}

func TestExtractText_MissingFile(t *testing.T) {
	_, err := ExtractText("/nonexistent/statement.pdf", "")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractText_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ExtractText(path, "")
	if err == nil {
		t.Error("expected error for a non-PDF file")
	}
}
