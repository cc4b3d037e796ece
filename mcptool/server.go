// Package mcptool exposes the converter as Model Context Protocol tools.
//
// Two tools are registered: pdf_analyze reports the structure recovered
// from a PDF and pdf_convert writes a DOCX, XLSX or PPTX next to it.
package mcptool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/text/language"

	pdfbackend "github.com/rezaldwntr/pdf-backend-api"
	"github.com/rezaldwntr/pdf-backend-api/format"
	"github.com/rezaldwntr/pdf-backend-api/tuning"
)

// Options configures the tool server
type Options struct {
	Name    string
	Version string

	MaxFileSize int64 // bytes, zero for no limit
	Timeout     time.Duration
	Workers     int
	Tuning      tuning.Config
	Locale      language.Tag
	Logger      *slog.Logger
}

// Server represents the MCP server instance
type Server struct {
	opts      Options
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with the conversion tools registered
func NewServer(opts Options) *Server {
	if opts.Name == "" {
		opts.Name = "pdf-backend-api"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Tuning == (tuning.Config{}) {
		opts.Tuning = tuning.Default()
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		opts:      opts,
		logger:    logger,
		mcpServer: server.NewMCPServer(opts.Name, opts.Version, server.WithToolCapabilities(false)),
	}
	s.registerTools()
	return s
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	analyzeTool := mcp.NewTool(
		"pdf_analyze",
		mcp.WithDescription("Recover the structure of a PDF: pages, paragraphs, images and tables, including tables that continue across pages"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(analyzeTool, s.handleAnalyze)

	convertTool := mcp.NewTool(
		"pdf_convert",
		mcp.WithDescription("Convert a PDF into an editable Word, Excel or PowerPoint file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("format",
			mcp.Required(),
			mcp.Description("Output format: docx, xlsx or pptx"),
			mcp.Enum("docx", "xlsx", "pptx"),
		),
		mcp.WithString("output",
			mcp.Description("Output path (defaults to the PDF path with the new extension)"),
		),
	)
	s.mcpServer.AddTool(convertTool, s.handleConvert)
}

// ServeStdio serves the tools over in and out until ctx is done or in is
// closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.checkInput(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.converter(path).Analyze(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed for %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(formatSummary(path, result.Summary())), nil
}

func (s *Server) handleConvert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to := format.Parse(name)
	if to != format.DOCX && to != format.XLSX && to != format.PPTX {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported output format %q (use docx, xlsx or pptx)", name)), nil
	}
	if err := s.checkInput(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output, _ := request.GetArguments()["output"].(string)
	if output == "" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + to.Extension()
	}

	result, size, err := s.convertTo(ctx, path, to, output)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("conversion failed for %s: %v", path, err)), nil
	}

	text := fmt.Sprintf("Converted %s to %s\n", path, output)
	text += fmt.Sprintf("Format: %s\n", to)
	text += fmt.Sprintf("Size: %s\n", humanize.Bytes(uint64(size)))
	text += fmt.Sprintf("Pages: %d\n", len(result.Document.Pages))
	text += fmt.Sprintf("Tables: %d\n", len(result.Document.Tables))
	if result.Partial() {
		text += fmt.Sprintf("\nWARNING: pages %v could not be converted\n", result.Document.SkippedPages)
	}
	if len(result.Warnings) > 0 {
		text += "\nWarnings:\n" + pdfbackend.FormatWarnings(result.Warnings) + "\n"
	}
	return mcp.NewToolResultText(text), nil
}

// convertTo writes the conversion to a temp file beside output and renames
// it into place, so a failed conversion leaves no partial file.
func (s *Server) convertTo(ctx context.Context, path string, to format.Format, output string) (*pdfbackend.Result, int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(output), ".pdfconv-*"+to.Extension())
	if err != nil {
		return nil, 0, err
	}
	defer os.Remove(tmp.Name())

	result, err := s.converter(path).Convert(ctx, to, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return nil, 0, err
	}
	info, err := os.Stat(tmp.Name())
	if err != nil {
		return nil, 0, err
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return nil, 0, err
	}
	s.logger.Info("Converted PDF", "path", path, "output", output, "format", to.String(), "size", info.Size())
	return result, info.Size(), nil
}

func (s *Server) checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if format.Detect(path) != format.PDF {
		return fmt.Errorf("%s is not a PDF file", path)
	}
	if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
		return fmt.Errorf("%s is %s, larger than the %s limit", path,
			humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(s.opts.MaxFileSize)))
	}
	return nil
}

func (s *Server) converter(path string) *pdfbackend.Converter {
	c := pdfbackend.Open(path).
		WithTuning(s.opts.Tuning).
		WithWorkers(s.opts.Workers).
		WithLocale(s.opts.Locale).
		WithLogger(s.logger)
	if s.opts.Timeout > 0 {
		c = c.WithTimeout(s.opts.Timeout)
	}
	return c
}

// formatSummary renders an analysis for a chat client
func formatSummary(path string, sum pdfbackend.Summary) string {
	text := fmt.Sprintf("PDF structure for: %s\n", path)
	if sum.Title != "" {
		text += fmt.Sprintf("Title: %s\n", sum.Title)
	}
	if sum.Author != "" {
		text += fmt.Sprintf("Author: %s\n", sum.Author)
	}
	text += fmt.Sprintf("Pages: %d (converted %d)\n", sum.PageCount, len(sum.Pages))
	text += fmt.Sprintf("Paragraphs: %d\n", sum.Paragraphs)
	text += fmt.Sprintf("Images: %d\n", sum.Images)
	text += fmt.Sprintf("Tables: %d\n", len(sum.Tables))

	for i, t := range sum.Tables {
		text += fmt.Sprintf("\n%d. %d rows x %d columns, pages %s\n", i+1, t.Rows, t.Columns, joinInts(t.Pages))
		if len(t.Header) > 0 {
			text += fmt.Sprintf("   Header: %s\n", strings.Join(t.Header, " | "))
		}
		for _, row := range t.Preview {
			text += fmt.Sprintf("   %s\n", strings.Join(row, " | "))
		}
	}

	if sum.Partial {
		text += fmt.Sprintf("\nWARNING: skipped pages %s\n", joinInts(sum.SkippedPages))
	}
	if len(sum.Warnings) > 0 {
		text += "\nWarnings:\n" + pdfbackend.FormatWarnings(sum.Warnings) + "\n"
	}
	return text
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
