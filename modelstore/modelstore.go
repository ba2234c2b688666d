// Package modelstore resolves model bytes from a local path, an HTTP(S) URL
// or a gs:// object, caching remote models on disk.
package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type Store struct {
	// Dir and Name locate the cached model file.
	Dir  string
	Name string

	HTTPClient *http.Client
	GCSOptions []option.ClientOption
}

// Path is where the model is cached.
func (s *Store) Path() string {
	return filepath.Join(s.Dir, s.Name)
}

// Fetch returns the model bytes for source. An empty source reads the cached
// file. Remote sources are downloaded once and served from the cache after.
func (s *Store) Fetch(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if source == "" || err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		p := source
		if p == "" {
			p = s.Path()
		}
		return readModel(p)
	}

	switch u.Scheme {
	case "file":
		return readModel(u.Path)
	case "http", "https", "gs":
	default:
		return nil, fmt.Errorf("unsupported model source scheme %q", u.Scheme)
	}

	dest := s.Path()
	if _, err := os.Stat(dest); err == nil {
		slog.Info("Using cached model", slog.String("path", dest))
		return readModel(dest)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating model dir: %w", err)
	}

	if u.Scheme == "gs" {
		err = s.downloadGCS(ctx, u, dest)
	} else {
		err = s.downloadHTTP(ctx, source, dest)
	}
	if err != nil {
		return nil, err
	}
	return readModel(dest)
}

func readModel(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("model file %s is empty", path)
	}
	return data, nil
}

func (s *Store) downloadHTTP(ctx context.Context, source, dest string) error {
	slog.Info("Downloading model", slog.String("url", source))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	startedAt := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("model not found at %s: %w", source, os.ErrNotExist)
		}
		return fmt.Errorf("unexpected status downloading model: %v", resp.Status)
	}

	n, err := writeToFile(resp.Body, dest)
	if err != nil {
		return fmt.Errorf("downloading from %q: %w", source, err)
	}
	slog.Info("Downloaded model", slog.String("url", source), slog.Int64("bytes", n), slog.Duration("duration", time.Since(startedAt)))
	return nil
}

// ParseGCS splits gs://bucket/object.
func ParseGCS(u *url.URL) (bucket, object string, err error) {
	bucket = u.Host
	object = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("invalid GCS url %q", u.String())
	}
	return bucket, object, nil
}

func (s *Store) downloadGCS(ctx context.Context, u *url.URL, dest string) error {
	bucket, object, err := ParseGCS(u)
	if err != nil {
		return err
	}

	client, err := storage.NewClient(ctx, s.GCSOptions...)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	slog.Info("Downloading model from GCS", slog.String("source", u.String()), slog.String("destination", dest))

	startedAt := time.Now()
	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("model not found at %s: %w", u, os.ErrNotExist)
		}
		return fmt.Errorf("opening object from GCS %q: %w", u, err)
	}
	defer r.Close()

	n, err := writeToFile(r, dest)
	if err != nil {
		return fmt.Errorf("downloading from GCS: %w", err)
	}
	slog.Info("Downloaded model from GCS", slog.String("source", u.String()), slog.Int64("bytes", n), slog.Duration("duration", time.Since(startedAt)))
	return nil
}

// writeToFile streams src into a temp file beside dest and renames it into
// place, so dest never holds a partial download.
func writeToFile(src io.Reader, dest string) (int64, error) {
	tempFile, err := os.CreateTemp(filepath.Dir(dest), "download")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		tempFile.Close()
		if err := os.Remove(tempFile.Name()); err != nil {
			slog.Error("Failed to remove temp file", slog.String("path", tempFile.Name()), slog.String("error", err.Error()))
		}
	}()

	n, err := io.Copy(tempFile, src)
	if err != nil {
		return n, fmt.Errorf("copying: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), dest); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	done = true
	return n, nil
}
