// Package api exposes the import pipeline over HTTP.
package api

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ImportService is the two-phase import orchestrator the handlers drive.
type ImportService interface {
	RequestImport(ctx context.Context, owner, credential, path, password string) string
	ConfirmImport(ctx context.Context, owner, credential, decision string) string
}

// ForecastService projects cashflow from ledger history.
type ForecastService interface {
	Forecast(ctx context.Context, owner, credential string, monthsAhead int) string
}

// Response is the JSON envelope around the pipeline's human-readable output.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Importer   ImportService
	Forecaster ForecastService
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.handleHealth)
	app.Post("/api/import", h.handleImport)
	app.Post("/api/import/confirm", h.handleConfirm)
	app.Get("/api/forecast", h.handleForecast)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// userContext resolves (owner, credential) from the ambient request. Absence
// is an immediate precondition failure for every operation.
func userContext(c *fiber.Ctx) (owner, credential string, ok bool) {
	owner = c.Get("X-User-ID")
	auth := c.Get(fiber.HeaderAuthorization)
	credential = strings.TrimPrefix(auth, "Bearer ")
	if owner == "" || auth == "" || credential == auth {
		return "", "", false
	}
	return owner, credential, true
}

func (h *Handler) handleImport(c *fiber.Ctx) error {
	owner, credential, ok := userContext(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "Cannot fetch user context or auth token.")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "Only PDF files are supported.")
	}

	// Stage the upload in a temp file for the extractor.
	src, err := fileHeader.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to read uploaded file.")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "Failed to create temp file.")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return writeError(c, fiber.StatusInternalServerError, "Failed to save uploaded file.")
	}
	tmp.Close()

	password := c.FormValue("password")
	message := h.Importer.RequestImport(c.UserContext(), owner, credential, tmp.Name(), password)
	return c.JSON(Response{Success: true, Message: message})
}

func (h *Handler) handleConfirm(c *fiber.Ctx) error {
	owner, credential, ok := userContext(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "Cannot fetch user context or auth token.")
	}

	decision := c.FormValue("decision")
	if decision == "" {
		var body struct {
			Decision string `json:"decision"`
		}
		if err := c.BodyParser(&body); err == nil {
			decision = body.Decision
		}
	}

	message := h.Importer.ConfirmImport(c.UserContext(), owner, credential, decision)
	return c.JSON(Response{Success: true, Message: message})
}

func (h *Handler) handleForecast(c *fiber.Ctx) error {
	owner, credential, ok := userContext(c)
	if !ok {
		return writeError(c, fiber.StatusUnauthorized, "Cannot fetch user context or auth token.")
	}

	months := c.QueryInt("months", 1)
	message := h.Forecaster.Forecast(c.UserContext(), owner, credential, months)
	return c.JSON(Response{Success: true, Message: message})
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(Response{Success: false, Error: msg})
}
