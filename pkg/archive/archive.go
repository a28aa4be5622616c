// Package archive packs a job's working tree into a single zip stream.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPageURL names the archive when the first entry has no url at all.
const DefaultPageURL = "http://example.com"

const (
	archiveSuffix   = "_clone.zip"
	fallbackArchive = "scraped_site_clone.zip"
)

// Pack walks dir and returns a Deflate-compressed zip holding every regular
// file under it, named by its slash-separated path relative to dir. Entries
// are written in lexical order, so the same tree always yields the same
// entry list.
func Pack(dir string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, filepath.ToSlash(rel))
	})
	if err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("failed to pack %s: %w", dir, err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return buf.Bytes(), nil
}

// PackAndRemove packs dir and then removes it whether or not packing
// succeeded. Cleanup failures are logged, never returned.
func PackAndRemove(dir string, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			logger.Error("Error during cleanup", "dir", dir, "error", err)
			return
		}
		logger.Info("Cleaned up temporary directory", "dir", dir)
	}()

	return Pack(dir)
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// ArchiveName returns the download name for a job: the first page's host
// with dots replaced by underscores, suffixed "_clone.zip". A URL without a
// host, including the empty string, yields "scraped_site_clone.zip".
func ArchiveName(firstURL string) string {
	u, err := url.Parse(firstURL)
	if err != nil || u.Host == "" {
		return fallbackArchive
	}
	return strings.ReplaceAll(u.Host, ".", "_") + archiveSuffix
}
