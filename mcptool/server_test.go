package mcptool

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezaldwntr/pdf-backend-api/decode/decodetest"
	"github.com/rezaldwntr/pdf-backend-api/format"
)

func newTestServer(opts Options) *Server {
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(opts)
}

func writePDF(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

// extractTextFromResult returns the first text content of a result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}

func TestNewServerDefaults(t *testing.T) {
	s := newTestServer(Options{})
	assert.Equal(t, "pdf-backend-api", s.opts.Name)
	assert.NotNil(t, s.mcpServer)
	assert.NoError(t, s.opts.Tuning.Validate())
}

func TestHandleAnalyze(t *testing.T) {
	p1, p2 := decodetest.Inventory()
	path := writePDF(t, "inventory.pdf", decodetest.PDF(decodetest.Info{Title: "Inventory"}, p1, p2))

	s := newTestServer(Options{})
	result, err := s.handleAnalyze(context.Background(), callRequest(map[string]any{"path": path}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Title: Inventory")
	assert.Contains(t, text, "Tables: 1")
	assert.Contains(t, text, "7 rows x 4 columns, pages 1, 2")
	assert.Contains(t, text, "Header: Name | Qty | Price | Total")
}

func TestHandleConvert(t *testing.T) {
	path := writePDF(t, "invoice.pdf", decodetest.PDF(decodetest.Info{}, decodetest.Invoice()))
	s := newTestServer(Options{})

	for _, name := range []string{"docx", "excel", "pptx"} {
		t.Run(name, func(t *testing.T) {
			result, err := s.handleConvert(context.Background(), callRequest(map[string]any{
				"path":   path,
				"format": name,
			}))
			require.NoError(t, err)
			require.False(t, result.IsError, extractTextFromResult(result))

			to := format.Parse(name)
			output := filepath.Join(filepath.Dir(path), "invoice"+to.Extension())
			f, err := os.Open(output)
			require.NoError(t, err)
			defer f.Close()
			info, err := f.Stat()
			require.NoError(t, err)

			got, err := format.DetectFromReader(f, info.Size())
			require.NoError(t, err)
			assert.Equal(t, to, got)
			assert.Contains(t, extractTextFromResult(result), "Tables: 1")
		})
	}
}

func TestHandleConvertOutputPath(t *testing.T) {
	path := writePDF(t, "invoice.pdf", decodetest.PDF(decodetest.Info{}, decodetest.Invoice()))
	output := filepath.Join(t.TempDir(), "result.xlsx")

	s := newTestServer(Options{})
	result, err := s.handleConvert(context.Background(), callRequest(map[string]any{
		"path":   path,
		"format": "xlsx",
		"output": output,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))
	assert.FileExists(t, output)
}

func TestHandleConvertNoTablesLeavesNoFile(t *testing.T) {
	page := decodetest.NewPage(612, 792).Text(decodetest.Regular, 12, 72, 100, "Dear reader,")
	path := writePDF(t, "letter.pdf", decodetest.PDF(decodetest.Info{}, page))

	s := newTestServer(Options{})
	result, err := s.handleConvert(context.Background(), callRequest(map[string]any{
		"path":   path,
		"format": "xlsx",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "no tables")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "letter.pdf", entries[0].Name())
}

func TestInvalidArguments(t *testing.T) {
	path := writePDF(t, "invoice.pdf", decodetest.PDF(decodetest.Info{}, decodetest.Invoice()))
	notPDF := writePDF(t, "notes.txt", []byte("hello"))

	s := newTestServer(Options{MaxFileSize: 10})
	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
		want    string
	}{
		{"analyze without path", s.handleAnalyze, map[string]any{}, "path"},
		{"convert without format", s.handleConvert, map[string]any{"path": path}, "format"},
		{"convert bad format", s.handleConvert, map[string]any{"path": path, "format": "odt"}, "unsupported output format"},
		{"missing file", s.handleAnalyze, map[string]any{"path": filepath.Join(t.TempDir(), "gone.pdf")}, "cannot access"},
		{"not a pdf", s.handleAnalyze, map[string]any{"path": notPDF}, "not a PDF"},
		{"too large", s.handleAnalyze, map[string]any{"path": path}, "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handler(context.Background(), callRequest(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractTextFromResult(result), tt.want)
		})
	}
}
