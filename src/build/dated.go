package build

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RecordFile is the per-build metadata file Jenkins keeps in the dated directory.
const RecordFile = "build.xml"

// DatedDir is the builds/<timestamp> view of a build. Its build number is
// not part of the name; it comes from build.xml.
type DatedDir struct {
	Time time.Time

	dir  string
	name string

	once   sync.Once
	number int
	numOK  bool
}

// NewDatedDir returns the directory named name inside dir. The entry does
// not have to exist.
func NewDatedDir(dir, name string) (*DatedDir, error) {
	t, err := ParseTimestamp(name)
	if err != nil {
		return nil, err
	}
	return &DatedDir{Time: t, dir: dir, name: name}, nil
}

func (d *DatedDir) Name() string   { return d.name }
func (d *DatedDir) Path() string   { return filepath.Join(d.dir, d.name) }
func (d *DatedDir) Key() int64     { return d.Time.Unix() }
func (d *DatedDir) String() string { return display(d.dir, d.name) }

func (d *DatedDir) Canonical() (string, bool) {
	return canonical(d.Path())
}

// IsDir reports whether the entry exists and resolves to a directory.
func (d *DatedDir) IsDir() bool {
	info, err := os.Stat(d.Path())
	return err == nil && info.IsDir()
}

// RecordPath is the path of the directory's build.xml.
func (d *DatedDir) RecordPath() string {
	return filepath.Join(d.Path(), RecordFile)
}

// Number is the build number recorded in build.xml. It is undefined when
// the file is missing, unparsable, or has no usable number element.
func (d *DatedDir) Number() (int, bool) {
	d.once.Do(func() {
		rec, err := ReadRecord(d.RecordPath())
		if err != nil {
			return
		}
		d.number, d.numOK = rec.BuildNumber()
	})
	return d.number, d.numOK
}
