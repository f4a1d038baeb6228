// Package repair holds the filesystem mutations that checks propose. Each
// mutation is a plain Action value (verb plus paths) so it can be printed,
// logged, serialized and confined before anything touches the disk.
package repair

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Verb names a repair operation.
type Verb string

const (
	// VerbUnlink removes a symlink if it exists.
	VerbUnlink Verb = "unlink"
	// VerbLink (re)creates a symlink, removing any symlink or file in its way.
	VerbLink Verb = "link"
	// VerbReplace removes a file or a whole directory and puts a symlink in its place.
	VerbReplace Verb = "replace"
	// VerbArchive renames an entry into the quarantine directory.
	VerbArchive Verb = "archive"
	// VerbRewriteCounter writes a build number counter file.
	VerbRewriteCounter Verb = "rewrite-counter"
)

var (
	ErrArchiveCollision = errors.New("archive destination already exists")
	ErrOutsideJob       = errors.New("repair target outside job directory")
	ErrUnknownVerb      = errors.New("unknown repair verb")
)

// Action is a deferred repair. Path is always the entry being changed.
type Action struct {
	Verb   Verb   `json:"verb" yaml:"verb"`
	Path   string `json:"path" yaml:"path"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Dest   string `json:"dest,omitempty" yaml:"dest,omitempty"`
	Value  int    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Unlink removes the symlink at path.
func Unlink(path string) Action {
	return Action{Verb: VerbUnlink, Path: path}
}

// Link makes path a symlink to target.
func Link(path, target string) Action {
	return Action{Verb: VerbLink, Path: path, Target: target}
}

// Replace deletes whatever is at path and makes it a symlink to target.
func Replace(path, target string) Action {
	return Action{Verb: VerbReplace, Path: path, Target: target}
}

// Archive moves path into the quarantine directory, keeping its basename.
func Archive(path, quarantine string) Action {
	return Action{Verb: VerbArchive, Path: path, Dest: quarantine}
}

// RewriteCounter writes value to the counter file at path.
func RewriteCounter(path string, value int) Action {
	return Action{Verb: VerbRewriteCounter, Path: path, Value: value}
}

// Apply performs the action.
func (a Action) Apply() error {
	switch a.Verb {
	case VerbUnlink:
		return unlink(a.Path)
	case VerbLink:
		return link(a.Path, a.Target)
	case VerbReplace:
		return replace(a.Path, a.Target)
	case VerbArchive:
		return archive(a.Path, a.Dest)
	case VerbRewriteCounter:
		return rewriteCounter(a.Path, a.Value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVerb, a.Verb)
	}
}

// Confine returns an error if the action would touch anything outside root.
func (a Action) Confine(root string) error {
	paths := []string{a.Path}
	if a.Verb == VerbArchive {
		paths = append(paths, a.Dest)
	}
	for _, p := range paths {
		if !within(root, p) {
			return fmt.Errorf("%w: %s not under %s", ErrOutsideJob, p, root)
		}
	}
	return nil
}

// Destination is where an archive action moves its entry.
func (a Action) Destination() string {
	if a.Verb != VerbArchive {
		return ""
	}
	return filepath.Join(a.Dest, filepath.Base(a.Path))
}

func (a Action) String() string {
	switch a.Verb {
	case VerbUnlink:
		return fmt.Sprintf("unlink %s", a.Path)
	case VerbLink:
		return fmt.Sprintf("ln -sfn %s %s", a.Target, a.Path)
	case VerbReplace:
		return fmt.Sprintf("rm -rf %s && ln -s %s %s", a.Path, a.Target, a.Path)
	case VerbArchive:
		return fmt.Sprintf("mv %s %s", a.Path, a.Destination())
	case VerbRewriteCounter:
		return fmt.Sprintf("echo %d > %s", a.Value, a.Path)
	default:
		return fmt.Sprintf("%s %s", a.Verb, a.Path)
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func unlink(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("refusing to unlink %s: not a symlink", path)
	}
	return removeFile(path)
}

func link(path, target string) error {
	info, err := os.Lstat(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return err
	case info.IsDir():
		return fmt.Errorf("refusing to relink %s: is a directory", path)
	default:
		if err := removeFile(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	if err := symlink(target, path); err != nil {
		return fmt.Errorf("failed to link %s -> %s: %w", path, target, err)
	}
	return nil
}

func replace(path, target string) error {
	if err := removeAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	if err := symlink(target, path); err != nil {
		return fmt.Errorf("failed to link %s -> %s: %w", path, target, err)
	}
	return nil
}

func archive(path, quarantine string) error {
	dest := filepath.Join(quarantine, filepath.Base(path))
	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("%w: %s", ErrArchiveCollision, dest)
	}
	if err := os.MkdirAll(quarantine, 0o755); err != nil {
		return fmt.Errorf("failed to create quarantine directory: %w", err)
	}
	if err := moveEntry(path, dest); err != nil {
		return fmt.Errorf("failed to archive %s: %w", path, err)
	}
	return nil
}

func rewriteCounter(path string, value int) error {
	if err := writeFile(path, []byte(strconv.Itoa(value)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
