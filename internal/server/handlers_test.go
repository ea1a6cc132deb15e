package server

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenslate/lenslate/internal/config"
	"github.com/lenslate/lenslate/internal/pipeline"
	"github.com/lenslate/lenslate/internal/testutil"
	"github.com/lenslate/lenslate/internal/translate"
	"github.com/lenslate/lenslate/internal/utils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine, err := pipeline.NewBuilder().
		WithWorkers(2).
		WithTranslator(translate.NewStatic(map[string]string{
			"Organic Apples": "Органічні яблука",
		})).
		Build()
	require.NoError(t, err)

	srv, err := New(engine, config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		MaxUploadMB:    5,
		TimeoutSeconds: 10,
	}, config.TranslateConfig{Source: "en", Target: "uk"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return srv
}

func testMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	newTestServer(t).SetupRoutes(mux)
	return mux
}

func encodePhotoPNG(t *testing.T) []byte {
	t.Helper()
	photo := testutil.UniformPhoto(400, 300, color.RGBA{R: 235, G: 235, B: 235, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, photo))
	return buf.Bytes()
}

func annotateRequest(t *testing.T, fields map[string]string, imageData []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if imageData != nil {
		part, err := writer.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(imageData)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/annotate", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func linesJSON(t *testing.T) string {
	t.Helper()
	lines := []pipeline.RecognizedLine{
		{Text: "12.99", Box: utils.NewBox(40, 40, 160, 90)},
		{Text: "Organic Apples", Box: utils.NewBox(40, 120, 320, 170)},
	}
	b, err := json.Marshal(lines)
	require.NoError(t, err)
	return string(b)
}

func TestHealthz(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthz_MethodNotAllowed(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnnotate_JSON(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, annotateRequest(t, map[string]string{
		"lines":   linesJSON(t),
		"imageId": "photo-1",
	}, encodePhotoPNG(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "photo-1", result.ImageID)
	assert.Equal(t, 400, result.Width)
	assert.Equal(t, 300, result.Height)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, "12.99", result.Lines[0].DisplayText)
	assert.Equal(t, "Органічні яблука", result.Lines[1].DisplayText)
}

func TestAnnotate_PNG(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, annotateRequest(t, map[string]string{
		"lines":  linesJSON(t),
		"format": "png",
	}, encodePhotoPNG(t)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestAnnotate_ConcurrentClients(t *testing.T) {
	mux := testMux(t)
	photo := encodePhotoPNG(t)
	lines := linesJSON(t)

	const clients = 6
	reqs := make([]*http.Request, clients)
	for i := range reqs {
		reqs[i] = annotateRequest(t, map[string]string{"lines": lines}, photo)
	}

	codes := make(chan int, clients)
	var wg sync.WaitGroup
	for _, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		require.Equal(t, http.StatusOK, code)
	}
}

func TestAnnotate_CustomDisplaySize(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, annotateRequest(t, map[string]string{
		"lines":  linesJSON(t),
		"format": "png",
		"width":  "200",
		"height": "200",
	}, encodePhotoPNG(t)))
	require.Equal(t, http.StatusOK, rec.Code)

	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestAnnotate_Errors(t *testing.T) {
	mux := testMux(t)

	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
		code int
	}{
		{"get not allowed", func(t *testing.T) *http.Request {
			return httptest.NewRequest(http.MethodGet, "/annotate", nil)
		}, http.StatusMethodNotAllowed},
		{"missing image", func(t *testing.T) *http.Request {
			return annotateRequest(t, map[string]string{"lines": "[]"}, nil)
		}, http.StatusBadRequest},
		{"corrupt image", func(t *testing.T) *http.Request {
			return annotateRequest(t, nil, []byte("not a png"))
		}, http.StatusBadRequest},
		{"bad lines json", func(t *testing.T) *http.Request {
			return annotateRequest(t, map[string]string{"lines": "{broken"}, encodePhotoPNG(t))
		}, http.StatusBadRequest},
		{"bad target language", func(t *testing.T) *http.Request {
			return annotateRequest(t, map[string]string{
				"lines": "[]", "target": "no-such-lang!!",
			}, encodePhotoPNG(t))
		}, http.StatusBadRequest},
		{"bad width", func(t *testing.T) *http.Request {
			return annotateRequest(t, map[string]string{
				"lines": "[]", "width": "zero",
			}, encodePhotoPNG(t))
		}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, tt.req(t))
			require.Equal(t, tt.code, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNew_InvalidConfig(t *testing.T) {
	engine, err := pipeline.NewBuilder().Build()
	require.NoError(t, err)

	_, err = New(nil, config.ServerConfig{}, config.TranslateConfig{}, nil)
	require.Error(t, err)

	_, err = New(engine, config.ServerConfig{}, config.TranslateConfig{Target: "!!bad"}, nil)
	require.Error(t, err)
}
