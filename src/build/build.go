// Package build models a Jenkins build as it appears on disk: once as a
// numbered symlink (builds/<N>) and once as a timestamp-named directory
// (builds/<YYYY-MM-DD_HH-MM-SS>). Either view can lazily resolve to the other.
package build

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// TimestampLayout is the layout Jenkins uses to name build directories.
const TimestampLayout = "2006-01-02_15-04-05"

var (
	numberPattern = regexp.MustCompile(`^\d+$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}$`)
)

var (
	ErrNotNumber = errors.New("not a build number")
	ErrNotDate   = errors.New("not a build timestamp")
)

// Kind classifies an entry of a job's builds directory.
type Kind int

const (
	KindNone Kind = iota
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "none"
	}
}

// Classify tells whether name is a numbered link, a dated directory, or
// something else (convenience links, stray files) that is not part of the
// build history.
func Classify(name string) Kind {
	if numberPattern.MatchString(name) {
		return KindNumber
	}
	if datePattern.MatchString(name) {
		if _, err := ParseTimestamp(name); err == nil {
			return KindDate
		}
	}
	return KindNone
}

// ParseTimestamp parses a dated directory name.
func ParseTimestamp(name string) (time.Time, error) {
	if !datePattern.MatchString(name) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrNotDate, name)
	}
	t, err := time.ParseInLocation(TimestampLayout, name, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrNotDate, name, err)
	}
	return t, nil
}

// Ref is the capability set shared by both views of a build.
type Ref interface {
	// Name is the entry's basename inside the builds directory.
	Name() string
	// Path is the entry's path as scanned, without resolving symlinks.
	Path() string
	// Canonical is the fully symlink-resolved path, if it exists.
	Canonical() (string, bool)
	// Key is the ordering key: the number for links, unix seconds for directories.
	Key() int64
	String() string
}

// Same reports whether two refs denote the same build on disk. Identity is
// the canonical path, so a numbered link and the directory it points to
// compare equal.
func Same(a, b Ref) bool {
	if a == nil || b == nil {
		return false
	}
	ca, ok := a.Canonical()
	if !ok {
		return false
	}
	cb, ok := b.Canonical()
	if !ok {
		return false
	}
	return ca == cb
}

func canonical(path string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", false
	}
	return abs, true
}

func display(dir, name string) string {
	return filepath.Join(filepath.Base(dir), name)
}
