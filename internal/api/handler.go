// Package api exposes the engine over HTTP: raw model text in, validated
// statements out, plus a one-shot PDF conversion endpoint.
package api

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverer "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/tuteke2023/bankparse/internal/extractor"
	"github.com/tuteke2023/bankparse/internal/models"
	"github.com/tuteke2023/bankparse/internal/parser"
	"github.com/tuteke2023/bankparse/internal/vlm"
	"github.com/tuteke2023/bankparse/internal/writer"
)

const version = "1.0.0"

// Handler holds the HTTP handlers and their collaborators. VLM may be nil
// when no vision backend is configured; /api/convert then requires a
// text-extractable PDF.
type Handler struct {
	Engine      *parser.Engine
	VLM         vlm.Client
	BodyLimitMB int
}

// ExtractRequest is the JSON body for /api/extract.
type ExtractRequest struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// ConvertResponse is the JSON response from /api/convert and /api/extract.
type ConvertResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Statement *models.Statement `json:"statement,omitempty"`
	CSV       string            `json:"csv,omitempty"`
	Count     int               `json:"count"`
	Warnings  []string          `json:"warnings,omitempty"`
	RawText   string            `json:"rawText,omitempty"`
	Version   string            `json:"version,omitempty"`
}

// NewApp builds the fiber application with all routes registered.
func (h *Handler) NewApp() *fiber.App {
	limit := h.BodyLimitMB
	if limit <= 0 {
		limit = 50
	}
	app := fiber.New(fiber.Config{
		BodyLimit:             limit * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(recoverer.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/api/health", h.handleHealth)
	app.Post("/api/extract", h.handleExtract)
	app.Post("/api/convert", h.handleConvert)

	return app
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
	})
}

// handleExtract parses already-extracted model text. The format query or
// body field selects the rendering: json (default), csv, table, or xlsx.
func (h *Handler) handleExtract(c *fiber.Ctx) error {
	var req ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	if strings.TrimSpace(req.Text) == "" {
		return writeError(c, fiber.StatusBadRequest, "field 'text' is required")
	}

	format := req.Format
	if q := c.Query("format"); q != "" {
		format = q
	}

	st := h.Engine.ParseToStatement(req.Text)
	return h.respond(c, st, format)
}

// handleConvert takes a PDF upload, extracts its text (falling back to the
// vision model for scanned files), and runs the engine on the result.
func (h *Handler) handleConvert(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "no file uploaded; use form field 'file'")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return writeError(c, fiber.StatusBadRequest, "only PDF files are supported")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "failed to open upload")
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "failed to read upload")
	}

	// Pre-extracted text from the client skips server-side extraction.
	text := c.FormValue("text")

	if text == "" {
		tmpPath := filepath.Join(os.TempDir(), "statement-"+uuid.NewString()+".pdf")
		if err := os.WriteFile(tmpPath, pdfBytes, 0o600); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "failed to save upload")
		}
		defer os.Remove(tmpPath)

		extracted, extractErr := extractor.ExtractTextCombined(tmpPath)
		if extractErr == nil {
			text = extracted
		} else if h.VLM == nil {
			return writeError(c, fiber.StatusUnprocessableEntity,
				fmt.Sprintf("pdf extraction failed and no vision model is configured: %v", extractErr))
		}
	}

	// Scanned or garbled PDFs go through the vision model.
	if text == "" {
		out, vlmErr := h.VLM.Generate(c.Context(), vlm.ExtractionPrompt, pdfBytes)
		if vlmErr != nil {
			return writeError(c, fiber.StatusBadGateway, fmt.Sprintf("vision model failed: %v", vlmErr))
		}
		text = out
	}

	st := h.Engine.ParseToStatement(text)
	format := c.Query("format")

	if format == "" || format == "json" {
		resp := ConvertResponse{
			Success:   true,
			Statement: st,
			CSV:       writer.CSV(st),
			Count:     len(st.Transactions),
			Warnings:  st.Warnings,
			Version:   version,
		}
		if c.FormValue("includeRawText") == "true" {
			resp.RawText = text
		}
		return c.JSON(resp)
	}
	return h.respond(c, st, format)
}

func (h *Handler) respond(c *fiber.Ctx, st *models.Statement, format string) error {
	switch format {
	case "", "json":
		return c.JSON(ConvertResponse{
			Success:   true,
			Statement: st,
			Count:     len(st.Transactions),
			Warnings:  st.Warnings,
			Version:   version,
		})
	case "csv":
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="statement.csv"`)
		return c.SendString(writer.CSV(st))
	case "table":
		c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		return c.SendString(writer.Table(st))
	case "xlsx":
		buf, err := writer.XLSX(st)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("xlsx generation failed: %v", err))
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="statement.xlsx"`)
		return c.Send(buf.Bytes())
	default:
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("unknown format %q; use json, csv, table, or xlsx", format))
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
		Version: version,
	})
}
