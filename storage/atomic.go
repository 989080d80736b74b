package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// tempPattern names the scratch files replaceFile leaves next to the target.
const tempPattern = ".vidlists-*.tmp"

// replaceFile streams new contents for path through fill into a temporary
// file in the same directory, fsyncs it and renames it over path. Readers see
// the old file or the new one, never a mix. The temporary file is removed on
// any failure.
func replaceFile(path string, perm os.FileMode, fill func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the rename to disk. Some platforms cannot fsync a
// directory; failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}
