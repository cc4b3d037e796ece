package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5/middleware"

	pdfbackend "github.com/rezaldwntr/pdf-backend-api"
	"github.com/rezaldwntr/pdf-backend-api/format"
)

// Client-facing messages, in Indonesian like the rest of the API
const (
	msgRunning     = "Server Konverter PDF sedang berjalan."
	msgNotPDF      = "File harus format PDF"
	msgMissingFile = "File tidak ditemukan dalam permintaan"
	msgNoTables    = "Tidak ada tabel yang terdeteksi di dalam PDF."
	msgNoContent   = "Tidak ada konten yang dapat diekstrak dari PDF."
	msgTooLarge    = "Ukuran file melebihi batas %s"
	msgInternal    = "Terjadi kesalahan internal: %v"
)

// warningsHeader reports the number of conversion warnings
const warningsHeader = "X-Conversion-Warnings"

// uploadField is the multipart field holding the PDF
const uploadField = "file"

// memoryLimit is the part of a multipart form kept in memory
const memoryLimit = 8 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msgRunning})
}

// handleConvert returns the handler for one output format.
//
// The upload and the converted file live in a per-request temp directory
// that is removed before the handler returns.
func (s *Server) handleConvert(to format.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := s.requestLogger(r).With("format", to.String())

		up, err := s.receive(w, r)
		if err != nil {
			s.writeError(w, logger, err)
			return
		}
		defer up.cleanup()

		outName := strings.TrimSuffix(up.name, filepath.Ext(up.name)) + to.Extension()
		outPath := filepath.Join(up.dir, "output"+to.Extension())
		out, err := os.Create(outPath)
		if err != nil {
			s.writeError(w, logger, err)
			return
		}
		result, err := s.converter(up.path, logger).Convert(r.Context(), to, out)
		if cerr := out.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			s.writeError(w, logger, err)
			return
		}

		f, err := os.Open(outPath)
		if err != nil {
			s.writeError(w, logger, err)
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			s.writeError(w, logger, err)
			return
		}

		h := w.Header()
		h.Set("Content-Type", to.ContentType())
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": outName}))
		h.Set("Content-Length", strconv.FormatInt(info.Size(), 10))
		if n := len(result.Warnings); n > 0 {
			h.Set(warningsHeader, strconv.Itoa(n))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, f); err != nil {
			logger.Warn("Failed to send converted file", "error", err)
			return
		}
		logger.Info("Conversion finished",
			"file", up.name,
			"output", outName,
			"size", humanize.Bytes(uint64(info.Size())),
			"pages", len(result.Document.Pages),
			"tables", len(result.Document.Tables),
			"warnings", len(result.Warnings),
			"partial", result.Partial(),
			"elapsed", result.Elapsed)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)

	up, err := s.receive(w, r)
	if err != nil {
		s.writeError(w, logger, err)
		return
	}
	defer up.cleanup()

	result, err := s.converter(up.path, logger).Analyze(r.Context())
	if err != nil {
		s.writeError(w, logger, err)
		return
	}
	if n := len(result.Warnings); n > 0 {
		w.Header().Set(warningsHeader, strconv.Itoa(n))
	}
	writeJSON(w, http.StatusOK, result.Summary())
}

func (s *Server) converter(path string, logger *slog.Logger) *pdfbackend.Converter {
	c := pdfbackend.Open(path).
		WithTuning(s.cfg.Tuning).
		WithWorkers(s.cfg.Workers).
		WithLocale(s.cfg.Locale).
		WithLogger(logger)
	if s.cfg.RequestTimeout > 0 {
		c = c.WithTimeout(s.cfg.RequestTimeout)
	}
	return c
}

func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	return s.logger.With("request_id", middleware.GetReqID(r.Context()))
}

// httpError is an error with a status code and a client-facing message
type httpError struct {
	status  int
	message string
	err     error
}

func (e *httpError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *httpError) Unwrap() error { return e.err }

// writeError maps an error onto a status code and a {"detail": ...} body
func (s *Server) writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var he *httpError
	switch {
	case errors.As(err, &he):
	case errors.Is(err, pdfbackend.ErrNoTables):
		he = &httpError{status: http.StatusNotFound, message: msgNoTables, err: err}
	case errors.Is(err, pdfbackend.ErrNoContent):
		he = &httpError{status: http.StatusUnprocessableEntity, message: msgNoContent, err: err}
	default:
		he = &httpError{status: http.StatusInternalServerError, message: fmt.Sprintf(msgInternal, err), err: err}
	}

	if he.status >= http.StatusInternalServerError {
		logger.Error("Conversion failed", "error", err)
	} else {
		logger.Warn("Request rejected", "status", he.status, "error", err)
	}
	writeJSON(w, he.status, map[string]string{"detail": he.message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
