package build

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// NumberedLink is the builds/<N> view of a build.
type NumberedLink struct {
	Number int

	dir  string
	name string

	once   sync.Once
	target string
	dated  *DatedDir
}

// NewNumberedLink returns the link named name inside buildsDir. The entry
// does not have to exist.
func NewNumberedLink(buildsDir, name string) (*NumberedLink, error) {
	if !numberPattern.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotNumber, name)
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrNotNumber, name, err)
	}
	return &NumberedLink{Number: n, dir: buildsDir, name: name}, nil
}

// LinkFor returns the link that build number n would occupy.
func LinkFor(buildsDir string, n int) *NumberedLink {
	return &NumberedLink{Number: n, dir: buildsDir, name: strconv.Itoa(n)}
}

func (l *NumberedLink) Name() string   { return l.name }
func (l *NumberedLink) Path() string   { return filepath.Join(l.dir, l.name) }
func (l *NumberedLink) Key() int64     { return int64(l.Number) }
func (l *NumberedLink) String() string { return display(l.dir, l.name) }

func (l *NumberedLink) Canonical() (string, bool) {
	return canonical(l.Path())
}

// Exists reports whether any entry exists under the link's name.
func (l *NumberedLink) Exists() bool {
	_, err := os.Lstat(l.Path())
	return err == nil
}

// IsSymlink reports whether the entry exists and is a symlink.
func (l *NumberedLink) IsSymlink() bool {
	info, err := os.Lstat(l.Path())
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

// TargetExists reports whether following the link reaches an existing entry.
func (l *NumberedLink) TargetExists() bool {
	_, err := os.Stat(l.Path())
	return err == nil
}

// Valid is a symlink whose target exists.
func (l *NumberedLink) Valid() bool {
	return l.IsSymlink() && l.TargetExists()
}

// Target returns the link target resolved against the builds directory.
func (l *NumberedLink) Target() (string, bool) {
	l.resolve()
	return l.target, l.target != ""
}

// Dated returns the dated directory the link points at. It is undefined
// when the entry is not a symlink or its target is not named like a
// timestamp.
func (l *NumberedLink) Dated() (*DatedDir, bool) {
	l.resolve()
	return l.dated, l.dated != nil
}

// Timestamp is the time encoded in the target's name.
func (l *NumberedLink) Timestamp() (time.Time, bool) {
	d, ok := l.Dated()
	if !ok {
		return time.Time{}, false
	}
	return d.Time, true
}

func (l *NumberedLink) resolve() {
	l.once.Do(func() {
		raw, err := os.Readlink(l.Path())
		if err != nil {
			return
		}
		target := raw
		if !filepath.IsAbs(target) {
			target = filepath.Join(l.dir, target)
		}
		l.target = filepath.Clean(target)

		d, err := NewDatedDir(filepath.Dir(l.target), filepath.Base(l.target))
		if err == nil {
			l.dated = d
		}
	})
}
