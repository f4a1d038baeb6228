package repair

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

var (
	renameFile = os.Rename
	removeFile = os.Remove
	removeAll  = os.RemoveAll
	symlink    = os.Symlink
	writeFile  = os.WriteFile
	openFileRO = os.Open
	openFileRW = os.OpenFile
)

// moveEntry renames src to dst. Regular files that cross a device
// boundary are copied and removed; directories and links must rename.
func moveEntry(src, dst string) error {
	err := renameFile(src, dst)
	if err == nil || !isEXDEV(err) {
		return err
	}
	info, statErr := os.Lstat(src)
	if statErr != nil || !info.Mode().IsRegular() {
		return err
	}
	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return err
	}
	if err := removeFile(src); err != nil {
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := openFileRO(src) // #nosec G304 -- src is within the job directory
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := openFileRW(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func isEXDEV(err error) bool {
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return errors.Is(linkErr.Err, syscall.EXDEV)
	}
	return errors.Is(err, syscall.EXDEV)
}
