package build

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Record is the subset of a build.xml this tool needs. The root element
// name varies by job type (build, flow-build, matrix-run, ...), so only
// the child is named.
type Record struct {
	XMLName xml.Name
	Number  string `xml:"number"`
}

// Jenkins writes XML 1.1 prologs, which encoding/xml refuses.
var prologVersion = regexp.MustCompile(`^(\s*<\?xml[^>]*?version\s*=\s*["'])1\.1(["'])`)

// ParseRecord parses build.xml content.
func ParseRecord(data []byte) (*Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = prologVersion.ReplaceAll(data, []byte("${1}1.0${2}"))

	var rec Record
	if err := xml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse build record: %w", err)
	}
	return &rec, nil
}

// ReadRecord reads and parses the build.xml at path.
func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRecord(data)
}

// BuildNumber returns the recorded number if it is a positive integer.
func (r *Record) BuildNumber() (int, bool) {
	s := strings.TrimSpace(r.Number)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
