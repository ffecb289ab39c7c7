// Package emit writes generated redirect artifacts to the output directory:
// the redirect HTML pages themselves, fragment-redirect script sidecars for
// live pages, and extensionless page copies for servers that route clean
// URLs to plain files.
package emit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/neflyte/seoredirect/internal/logging"
)

// SidecarSuffix is appended to a docname to form its fragment-redirect
// script filename.
const SidecarSuffix = ".redirects.js"

// Writer writes redirect artifacts under a single output directory. All
// docnames are validated against path traversal before any file is touched.
type Writer struct {
	outDir string
	logger logging.Logger
}

// NewWriter creates a writer rooted at outDir.
func NewWriter(outDir string, logger logging.Logger) *Writer {
	return &Writer{
		outDir: outDir,
		logger: logger,
	}
}

// OutDir returns the output directory.
func (w *Writer) OutDir() string {
	return w.outDir
}

// WritePage writes a rendered redirect page as <docname>.html and returns
// the written path.
func (w *Writer) WritePage(docname string, html []byte) (string, error) {
	path, err := w.artifactPath(docname + ".html")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(path, html, 0644); err != nil {
		return "", fmt.Errorf("writing redirect page %s: %w", path, err)
	}

	return path, nil
}

// WriteSidecar writes the fragment-redirect script for a live page as
// <docname>.redirects.js and returns the written path.
func (w *Writer) WriteSidecar(docname, script string) (string, error) {
	path, err := w.artifactPath(docname + SidecarSuffix)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		return "", fmt.Errorf("writing redirect sidecar %s: %w", path, err)
	}

	return path, nil
}

// CopyExtensionless copies each page's written <docname>.html to a file
// named exactly <docname>. Pages whose extensionless name is taken by a
// directory are skipped with a warning. Returns the number of copies made.
func (w *Writer) CopyExtensionless(ctx context.Context, pages []string, progress *Progress) (int, error) {
	copied := 0

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return copied, err
		}

		if progress != nil {
			progress.Step(page)
		}

		target, err := w.artifactPath(page)
		if err != nil {
			return copied, err
		}

		if info, statErr := os.Stat(target); statErr == nil && info.IsDir() {
			w.warn(ctx, "target extensionless redirect '%s' is a directory; cannot write this page", target)
			continue
		}

		if err := copyFile(target+".html", target); err != nil {
			return copied, fmt.Errorf("copying extensionless page %s: %w", page, err)
		}
		copied++
	}

	if progress != nil {
		progress.Done()
	}

	return copied, nil
}

// Clean removes the output directory and everything under it. Cleaning the
// working directory or filesystem root is refused.
func (w *Writer) Clean() error {
	cleaned := filepath.Clean(w.outDir)
	if cleaned == "" || cleaned == "." || cleaned == "/" {
		return fmt.Errorf("refusing to clean output directory %q", w.outDir)
	}
	return os.RemoveAll(cleaned)
}

// artifactPath joins a relative artifact name to the output directory,
// rejecting names that would escape it.
func (w *Writer) artifactPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty artifact name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("artifact name %q is absolute", name)
	}

	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact name %q escapes the output directory", name)
	}

	return filepath.Join(w.outDir, cleaned), nil
}

func (w *Writer) warn(ctx context.Context, format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Warn(ctx, nil, fmt.Sprintf(format, args...))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
