package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/lenslate/lenslate/internal/pipeline"
)

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// annotateHandler accepts a multipart form with an "image" file and a
// "lines" JSON field holding the OCR output, and responds with either the
// annotated line list (json, default) or the rendered overlay (png).
func (s *Server) annotateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeError(w, "failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, "no image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, "failed to read image data", http.StatusInternalServerError)
		return
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, "invalid image format", http.StatusBadRequest)
		return
	}

	var lines []pipeline.RecognizedLine
	if raw := r.FormValue("lines"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			s.writeError(w, fmt.Sprintf("invalid lines payload: %v", err), http.StatusBadRequest)
			return
		}
	}

	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()

	start := time.Now()
	annotated, err := s.engine.Annotate(ctx, img, lines, opts)
	if err != nil {
		annotateRequestsTotal.WithLabelValues("error").Inc()
		s.writeError(w, fmt.Sprintf("annotation failed: %v", err), http.StatusInternalServerError)
		return
	}
	annotateRequestsTotal.WithLabelValues("ok").Inc()
	annotateDuration.Observe(time.Since(start).Seconds())

	bounds := img.Bounds()
	if r.FormValue("format") == "png" {
		overlay := s.engine.RenderOverlay(img, annotated, opts.DisplayWidth, opts.DisplayHeight)
		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, overlay); err != nil {
			s.logger.Error("encode overlay", "error", err)
		}
		return
	}

	s.writeJSON(w, pipeline.Result{
		ImageID: opts.ImageID,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Lines:   annotated,
	})
}

// requestOptions builds pipeline options from form values, falling back to
// the server's configured language pair.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		ImageID: r.FormValue("imageId"),
		Source:  s.source,
		Target:  s.target,
		Debug:   r.FormValue("debug") == "true",
	}
	if err := parseTagInto(r.FormValue("source"), &opts.Source); err != nil {
		return opts, err
	}
	if err := parseTagInto(r.FormValue("target"), &opts.Target); err != nil {
		return opts, err
	}
	for _, dim := range []struct {
		key string
		dst *int
	}{
		{"width", &opts.DisplayWidth},
		{"height", &opts.DisplayHeight},
	} {
		if v := r.FormValue(dim.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return opts, fmt.Errorf("invalid %s %q", dim.key, v)
			}
			*dim.dst = n
		}
	}
	return opts, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		s.logger.Error("encode error response", "error", err)
	}
}
