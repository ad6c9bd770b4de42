// Package osutil holds the filesystem and process helpers shared by the
// skill tooling: tree copies, retrying deletes, polling and binary lookup.
package osutil

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
)

var (
	// RemoveAttempts and RemoveDelay bound RemoveAll's retries. Windows may
	// hold transient locks on freshly written files.
	RemoveAttempts uint = 5
	RemoveDelay         = 500 * time.Millisecond
)

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// RemoveAll deletes path recursively, retrying with a fixed delay.
func RemoveAll(path string) error {
	return retry.Do(
		func() error {
			return os.RemoveAll(path)
		},
		retry.Attempts(RemoveAttempts),
		retry.Delay(RemoveDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// SkipFunc reports whether the entry at rel (relative to the copy root)
// should be left out. Returning true for a directory skips its contents.
type SkipFunc func(rel string, info os.FileInfo) bool

// CopyDirFilter copies the tree rooted at src to dst, leaving out entries
// for which skip returns true. A nil skip copies everything. Files already
// present at dst are overwritten; nothing is deleted.
func CopyDirFilter(src, dst string, skip SkipFunc) error {
	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", src)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if skip != nil && relPath != "." && skip(relPath, info) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode().Perm()|0o700)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		return CopyFile(path, destPath)
	})
}

// CopyFile copies a single file, preserving its permission bits.
func CopyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// WaitForCondition calls condition up to attempts times, sleeping interval
// between calls, and reports whether it ever returned true.
func WaitForCondition(attempts int, interval time.Duration, condition func() bool) bool {
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if condition() {
			return true
		}
		if i < attempts-1 {
			time.Sleep(interval)
		}
	}
	return false
}
