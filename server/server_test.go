package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/krau/konadepth/config"
	"github.com/krau/konadepth/session"
	"github.com/krau/konadepth/session/sessiontest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig describes a 2x1 model whose fake backend echoes the red channel.
func testConfig(t *testing.T) (config.Config, *sessiontest.Backend) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "model.onnx"), []byte("model"), 0644); err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	c.ModelDir = dir
	c.ModelFileName = "model.onnx"
	c.InputWidth, c.InputHeight = 2, 1
	c.ColorMap = "gray"

	b := &sessiontest.Backend{
		InputSize:  24,
		OutputSize: 8,
		Run: func(in, out []byte) error {
			copy(out[0:4], in[0:4])
			copy(out[4:8], in[12:16])
			return nil
		},
	}
	return c, b
}

func newHandler(t *testing.T, token string) (*Handler, *session.Host) {
	t.Helper()
	c, b := testConfig(t)
	host := session.NewHost(b)
	p, err := Init(context.Background(), c, host)
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	return NewHandler(p, token), host
}

func TestInit(t *testing.T) {
	c, b := testConfig(t)
	host := session.NewHost(b)

	p, err := Init(context.Background(), c, host)
	if err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if host.Active() == nil {
		t.Fatal("no live session after Init()")
	}
	if _, err := Init(context.Background(), c, host); err == nil {
		t.Error("second Init() on the same host succeeded")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if host.Active() != nil {
		t.Error("session still live after Close()")
	}
}

func TestInitFailures(t *testing.T) {
	c, b := testConfig(t)

	wrong := c
	wrong.InputWidth = 3
	host := session.NewHost(b)
	if _, err := Init(context.Background(), wrong, host); err == nil {
		t.Error("Init() with mismatched input size succeeded")
	}
	if host.Active() != nil {
		t.Error("session left live after failed Init()")
	}

	missing := c
	missing.ModelFileName = "missing.onnx"
	if _, err := Init(context.Background(), missing, host); err == nil {
		t.Error("Init() with missing model succeeded")
	}

	b.FailLoad = true
	if _, err := Init(context.Background(), c, host); err == nil {
		t.Error("Init() with unreadable model succeeded")
	}
}

func pngUpload(t *testing.T, img image.Image) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "frame.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(part, img); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func TestPredict(t *testing.T) {
	h, _ := newHandler(t, "")
	r := h.Router()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	body, contentType := pngUpload(t, img)

	req := httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	out, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Fatalf("bounds = %v", b)
	}
	if r, _, _, _ := out.At(0, 0).RGBA(); r != 0xFFFF {
		t.Errorf("pixel 0 red = %#x, want white", r)
	}
	if r, _, _, _ := out.At(1, 0).RGBA(); r != 0 {
		t.Errorf("pixel 1 red = %#x, want black", r)
	}
}

func TestPredictBadRequests(t *testing.T) {
	h, _ := newHandler(t, "")
	r := h.Router()

	req := httptest.NewRequest(http.MethodPost, "/predict", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("no file: status = %d", w.Code)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, _ := mw.CreateFormFile("file", "frame.png")
	part.Write([]byte("not an image"))
	mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/predict", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad image: status = %d", w.Code)
	}
}

func TestPredictRaw(t *testing.T) {
	h, _ := newHandler(t, "")
	r := h.Router()

	tests := []struct {
		name   string
		query  string
		body   []byte
		status int
	}{
		{"rgba default", "", []byte{255, 0, 0, 0, 0, 0, 0, 0}, http.StatusOK},
		{"rgb", "?format=rgb", []byte{0, 0, 255, 0, 0, 0}, http.StatusOK},
		{"wrong size", "?format=rgb", []byte{1, 2, 3}, http.StatusBadRequest},
		{"unknown format", "?format=yuv", []byte{1, 2, 3}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/predict/raw"+tt.query, bytes.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.status, w.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}
			var res struct {
				Width  int       `json:"width"`
				Height int       `json:"height"`
				Depth  []float32 `json:"depth"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
				t.Fatalf("json.Unmarshal() error: %v", err)
			}
			if res.Width != 2 || res.Height != 1 || len(res.Depth) != 2 || res.Depth[0] != 1 || res.Depth[1] != 0 {
				t.Errorf("response = %+v", res)
			}
		})
	}
}

func TestAuthentication(t *testing.T) {
	h, _ := newHandler(t, "secret")
	r := h.Router()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"not bearer", "Basic secret", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/predict/raw", bytes.NewReader(make([]byte, 8)))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
		})
	}
}

func TestHealthAndModel(t *testing.T) {
	h, _ := newHandler(t, "secret")
	r := h.Router()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/model", nil))
	var info map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if info["input_width"] != float64(2) || info["format"] != "rgba" || info["colors"] != float64(256) {
		t.Errorf("/model = %v", info)
	}
}

func TestPredictAfterClose(t *testing.T) {
	h, host := newHandler(t, "")
	r := h.Router()
	if err := h.predictor.Close(); err != nil {
		t.Fatal(err)
	}
	if host.Active() != nil {
		t.Fatal("session still live")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict/raw", bytes.NewReader(make([]byte, 8))))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
