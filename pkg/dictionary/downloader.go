package dictionary

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

// downloadClient is used for vocabulary downloads.
var downloadClient = &http.Client{Timeout: 5 * time.Minute}

// EnsureVocabulary checks if the vocabulary file exists at path.
// If not, it downloads it from url, decompressing .gz payloads on the way.
func EnsureVocabulary(ctx context.Context, path, url string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if url == "" {
		return fmt.Errorf("%s does not exist and no download url is configured: %w", path, vocab.ErrSourceUnavailable)
	}

	slog.InfoContext(ctx, "vocabulary not found, downloading", "path", path, "url", url)
	return downloadTo(ctx, url, path)
}

func downloadTo(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "lexilookup-cli")

	resp, err := downloadClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w: %v", url, vocab.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s: %w", resp.Status, vocab.ErrSourceUnavailable)
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(url, ".gz") || resp.Header.Get("Content-Type") == "application/gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		body = gzReader
	}

	// Write next to the destination so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".vocab-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, destPath)
}
