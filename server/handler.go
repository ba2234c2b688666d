package server

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/krau/konadepth/normalize"
	"github.com/krau/konadepth/service"
	"github.com/krau/konadepth/session"
)

var (
	errUnauthorized = errors.New("unauthorized")
)

// maxUpload bounds request bodies for both image and raw endpoints.
const maxUpload = 32 << 20

type Handler struct {
	predictor *service.Predictor
	token     string
}

func NewHandler(p *service.Predictor, token string) *Handler {
	return &Handler{predictor: p, token: token}
}

func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", h.Health)
	r.GET("/model", h.Model)
	r.POST("/predict", h.Predict)
	r.POST("/predict/raw", h.PredictRaw)
	return r
}

func (h *Handler) authenticate(c *gin.Context) error {
	if h.token == "" {
		return nil
	}
	auth := c.GetHeader("Authorization")
	providedToken := ""
	if len(auth) > 7 && auth[:7] == "Bearer " {
		providedToken = auth[7:]
	}
	if subtle.ConstantTimeCompare([]byte(providedToken), []byte(h.token)) != 1 {
		return errUnauthorized
	}
	return nil
}

// Predict accepts a multipart "file" image and answers with the colour map
// as PNG.
func (h *Handler) Predict(c *gin.Context) {
	if err := h.authenticate(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	img, _, err := service.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot decode image"})
		return
	}

	res, err := h.predictor.Predict(c.Request.Context(), img)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := res.EncodePNG(&buf); err != nil {
		slog.Error("PNG encoding failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encoding failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// PredictRaw accepts a raw pixel buffer of exactly the model input size in
// the layout named by ?format= and answers with the disparity as JSON.
func (h *Handler) PredictRaw(c *gin.Context) {
	if err := h.authenticate(c); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
		return
	}

	format := normalize.ParseFormat(c.Query("format"))
	if c.Query("format") != "" && format == normalize.Unknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown pixel format"})
		return
	}

	pix, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	res, err := h.predictor.PredictRaw(c.Request.Context(), pix, format)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model unavailable"})
	default:
		slog.Error("Prediction failed", slog.String("error", err.Error()), slog.Int("code", session.Code(err)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inference failed"})
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) Model(c *gin.Context) {
	o := h.predictor.Options()
	c.JSON(http.StatusOK, gin.H{
		"input_width":   o.Width,
		"input_height":  o.Height,
		"output_width":  o.OutputWidth,
		"output_height": o.OutputHeight,
		"format":        o.Format.String(),
		"scale_factor":  o.ScaleFactor,
		"colors":        len(o.Table),
		"raw":           o.Raw,
	})
}
