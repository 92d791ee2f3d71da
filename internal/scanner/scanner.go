package scanner

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

// binarySniffLen is how many leading bytes are inspected for NUL bytes.
const binarySniffLen = 512

// Scan walks the document root and returns a snapshot of every eligible
// text file. Files that vanish or become unreadable mid-scan are skipped;
// an unreadable root fails the whole scan. Symlinks are never followed.
func Scan(ctx context.Context, opts Options) (Snapshot, error) {
	absRoot, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, verrors.FilesystemError("cannot resolve document root", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, verrors.FilesystemError("cannot read document root "+absRoot, err)
	}
	if !info.IsDir() {
		return nil, verrors.FilesystemError("document root is not a directory: "+absRoot, nil)
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	snapshot := make(Snapshot)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// A ReadDir failure on the root itself must fail the scan;
			// swallowing it would surface as an empty snapshot and make
			// every stored document look deleted.
			if path == absRoot {
				return verrors.FilesystemError("cannot read document root "+absRoot, err)
			}
			// The entry disappeared or is unreadable; best-effort skip.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if relPath == "." {
			return nil
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		// Only plain files: symlinks, sockets, devices are not documents.
		if !d.Type().IsRegular() {
			return nil
		}

		if !hasEligibleExtension(relPath, extensions) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}

		if fi.Size() == 0 {
			return nil
		}
		if fi.Size() > maxSize {
			slog.Warn("skipping oversized file",
				slog.String("path", relPath),
				slog.Int64("size", fi.Size()),
				slog.Int64("max", maxSize))
			return nil
		}

		if isBinaryFile(path) {
			return nil
		}

		snapshot[filepath.ToSlash(relPath)] = Entry{
			Path:    filepath.ToSlash(relPath),
			AbsPath: path,
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		}
		return nil
	})

	if walkErr != nil {
		if walkErr == context.Canceled || ctx.Err() != nil {
			return nil, walkErr
		}
		var verr *verrors.Error
		if errors.As(walkErr, &verr) {
			return nil, walkErr
		}
		return nil, verrors.FilesystemError("scan failed under "+absRoot, walkErr)
	}

	return snapshot, nil
}

// hasEligibleExtension reports whether the path carries one of the
// configured text extensions.
func hasEligibleExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// isBinaryFile sniffs the leading bytes for NUL characters.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, binarySniffLen)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return false
	}
	return bytes.ContainsRune(buf[:n], 0)
}
