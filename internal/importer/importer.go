// Package importer coordinates the staged import pipeline: extract text from
// a statement document, parse it into candidates, stage them per owner, and
// on a later confirmation upload each item to the ledger.
//
// Both phases return a single human-readable string; every failure path is a
// descriptive message to the caller, never a propagated fault. Phase 1
// failures leave prior staged state untouched; phase 2 clears staged state
// unconditionally, whatever the outcome.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/parser"
	"github.com/insightdelivered/statement-importer/internal/staging"
)

// TextExtractor obtains plain text from a statement document, decrypting
// with the password if the document is protected.
type TextExtractor interface {
	ExtractText(path, password string) (string, error)
}

// StatementParser turns extracted text into transaction candidates.
type StatementParser interface {
	Parse(text, owner string) parser.Result
}

// Uploader commits a single transaction to the ledger.
type Uploader interface {
	Upload(ctx context.Context, owner, credential string, item models.TransactionCandidate) error
}

// previewLimit is how many candidates the confirmation preview shows.
const previewLimit = 5

// Importer is the two-phase import orchestrator. All collaborators are
// injected so tests can substitute fakes.
type Importer struct {
	extractor TextExtractor
	parser    StatementParser
	store     staging.Store
	uploader  Uploader
	log       zerolog.Logger
}

// New creates an Importer.
func New(extractor TextExtractor, p StatementParser, store staging.Store, uploader Uploader, log zerolog.Logger) *Importer {
	return &Importer{
		extractor: extractor,
		parser:    p,
		store:     store,
		uploader:  uploader,
		log:       log,
	}
}

// RequestImport is phase 1: extract, parse, stage, and return a preview with
// a yes/no prompt. The batch is staged before the user confirms; phase 2
// operates purely off staged state. Staging replaces any prior pending batch
// for the owner.
func (im *Importer) RequestImport(ctx context.Context, owner, credential, path, password string) string {
	if owner == "" || credential == "" {
		return "Cannot fetch user context or auth token."
	}

	if _, err := os.Stat(path); err != nil {
		return "File not found."
	}
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return "Only PDF files are supported."
	}

	text, err := im.extractor.ExtractText(path, password)
	if err != nil || strings.TrimSpace(text) == "" {
		im.log.Warn().Err(err).Str("owner", owner).Str("file", path).Msg("text extraction failed")
		return "Failed to extract text. Check password or file format."
	}

	result := im.parser.Parse(text, owner)
	for _, rec := range result.Skipped {
		im.log.Warn().
			Str("owner", owner).
			Str("dialect", rec.Dialect).
			Str("match", rec.Match).
			Err(rec.Reason).
			Msg("skipped malformed record")
	}

	if len(result.Candidates) == 0 {
		return "No transactions found."
	}

	if err := im.store.Put(ctx, owner, result.Candidates); err != nil {
		im.log.Error().Err(err).Str("owner", owner).Msg("staging failed")
		return "Could not stage transactions. Please try again."
	}

	im.log.Info().
		Str("owner", owner).
		Int("count", len(result.Candidates)).
		Int("skipped", len(result.Skipped)).
		Msg("staged transaction batch")

	return preview(result.Candidates)
}

// ConfirmImport is phase 2: read the staged batch and, on an affirmative
// decision, upload every item in stored order, counting successes. The
// staged batch is cleared unconditionally after a decision, even on partial
// upload failure; the success count is the user-visible signal.
func (im *Importer) ConfirmImport(ctx context.Context, owner, credential, decision string) string {
	if owner == "" || credential == "" {
		return "Cannot fetch user context or auth token."
	}

	batch, err := im.store.Get(ctx, owner)
	if errors.Is(err, staging.ErrNotStaged) {
		return "No transactions to upload. Run extraction first."
	}
	if err != nil {
		im.log.Error().Err(err).Str("owner", owner).Msg("reading staged batch failed")
		return "Could not read staged transactions. Please try again."
	}

	if !isAffirmative(decision) {
		im.clear(ctx, owner)
		return "Upload cancelled. No data was saved."
	}

	uploaded := 0
	for _, item := range batch.Items {
		if err := im.uploader.Upload(ctx, owner, credential, item); err != nil {
			im.log.Warn().
				Err(err).
				Str("owner", owner).
				Str("title", item.Title).
				Msg("upload failed")
			continue
		}
		uploaded++
	}

	im.clear(ctx, owner)

	im.log.Info().
		Str("owner", owner).
		Int("uploaded", uploaded).
		Int("total", len(batch.Items)).
		Msg("import confirmed")

	return fmt.Sprintf("Uploaded %d of %d transactions.", uploaded, len(batch.Items))
}

func (im *Importer) clear(ctx context.Context, owner string) {
	if err := im.store.Clear(ctx, owner); err != nil {
		im.log.Error().Err(err).Str("owner", owner).Msg("clearing staged batch failed")
	}
}

func isAffirmative(decision string) bool {
	return strings.ToLower(strings.TrimSpace(decision)) == "yes"
}

func preview(items []models.TransactionCandidate) string {
	var b strings.Builder
	for i, item := range items {
		if i >= previewLimit {
			break
		}
		fmt.Fprintf(&b, "%s | %s %s - %s (%s)\n",
			item.Date, item.Kind, item.Amount.StringFixed(2), item.Title, item.Category)
	}
	fmt.Fprintf(&b, "\nTotal transactions detected: %d.\n", len(items))
	b.WriteString("Do you want to upload these to your account? (yes/no)")
	return b.String()
}
