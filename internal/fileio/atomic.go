// Package fileio writes files atomically via a temp-file-then-rename sequence.
package fileio

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ErrWriteFailed wraps any failure in the write sequence. The target
// file is left untouched when this is returned.
var ErrWriteFailed = errors.New("atomic write failed")

// Meta describes a file after a successful write.
type Meta struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mtime"`
}

// Write replaces the file at path with data. The content goes to a
// uniquely named temp file in the same directory, is synced, and is
// moved into place with a single rename, so a concurrent reader sees
// either the old content or the new content, never a mix. With backup
// set, an existing file is first copied to a timestamped sibling.
//
// Callers pass an already guard-validated absolute path; this package
// never resolves paths itself.
func Write(path string, data []byte, backup bool) (Meta, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Meta{}, fmt.Errorf("%w: create directory: %v", ErrWriteFailed, err)
	}

	if backup {
		if _, err := os.Stat(path); err == nil {
			if err := backupCopy(path); err != nil {
				return Meta{}, err
			}
		}
	}

	tmp := path + ".tmp." + tempToken()
	if err := writeAndSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return Meta{}, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Meta{}, fmt.Errorf("%w: rename: %v", ErrWriteFailed, err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return Meta{}, fmt.Errorf("%w: stat after write: %v", ErrWriteFailed, err)
	}
	return Meta{Path: path, Size: st.Size(), ModTime: st.ModTime()}, nil
}

// BackupName derives the timestamped sibling name used for backups.
func BackupName(path string, t time.Time) string {
	return path + "__" + t.Format("20060102_150405") + ".bak"
}

// backupCopy copies the current content of path to its backup name.
// A failed backup aborts the write; the target stays untouched.
func backupCopy(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open for backup: %v", ErrWriteFailed, err)
	}
	defer func() { _ = src.Close() }()

	bak := BackupName(path, time.Now())
	dst, err := os.Create(bak)
	if err != nil {
		return fmt.Errorf("%w: create backup: %v", ErrWriteFailed, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(bak)
		return fmt.Errorf("%w: copy backup: %v", ErrWriteFailed, err)
	}
	if err := dst.Sync(); err != nil {
		return fmt.Errorf("%w: sync backup: %v", ErrWriteFailed, err)
	}
	return nil
}

func writeAndSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrWriteFailed, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write temp: %v", ErrWriteFailed, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: sync temp: %v", ErrWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", ErrWriteFailed, err)
	}
	return nil
}

// tempToken returns a random suffix so concurrent invocations never
// collide on temp names.
func tempToken() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", os.Getpid())
	}
	return fmt.Sprintf("%d.%s", os.Getpid(), hex.EncodeToString(b[:]))
}
