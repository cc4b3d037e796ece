package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rezaldwntr/pdf-backend-api/format"
)

// upload is a received PDF saved in its own temp directory
type upload struct {
	name string // base name sent by the client
	dir  string
	path string
}

func (u *upload) cleanup() {
	_ = os.RemoveAll(u.dir)
}

// receive validates the multipart upload and saves it to a fresh temp
// directory. The caller must call cleanup on success.
func (s *Server) receive(w http.ResponseWriter, r *http.Request) (*upload, error) {
	tooLarge := &httpError{
		status:  http.StatusRequestEntityTooLarge,
		message: fmt.Sprintf(msgTooLarge, humanize.IBytes(uint64(s.cfg.MaxUpload))),
	}
	// multipart framing adds a little to the file size
	limit := s.cfg.MaxUpload + memoryLimit/8
	if r.ContentLength > limit {
		return nil, tooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(memoryLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			tooLarge.err = err
			return nil, tooLarge
		}
		return nil, &httpError{status: http.StatusBadRequest, message: msgMissingFile, err: err}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, &httpError{status: http.StatusBadRequest, message: msgMissingFile, err: err}
	}
	defer file.Close()

	name := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(header.Filename, "\\", "/")))
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return nil, &httpError{status: http.StatusBadRequest, message: msgNotPDF}
	}
	if header.Size > s.cfg.MaxUpload {
		return nil, tooLarge
	}
	if kind, err := format.DetectFromReader(file, header.Size); err != nil || kind != format.PDF {
		return nil, &httpError{status: http.StatusBadRequest, message: msgNotPDF, err: err}
	}

	dir, err := os.MkdirTemp(s.cfg.TempDir, "pdfapi-"+middleware.GetReqID(r.Context())+"-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	up := &upload{name: name, dir: dir, path: filepath.Join(dir, "input.pdf")}

	dst, err := os.Create(up.path)
	if err != nil {
		up.cleanup()
		return nil, fmt.Errorf("save upload: %w", err)
	}
	_, err = io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		up.cleanup()
		return nil, fmt.Errorf("save upload: %w", err)
	}
	return up, nil
}
