package mcp

import (
	"path/filepath"
	"regexp"
	"strings"

	"jobdoctor/src/sanitize"
)

// relativeToJob rewrites absolute paths under jobPath as paths relative to
// it, so "unlink /var/lib/jenkins/jobs/app/builds/7" becomes "unlink builds/7".
func relativeToJob(line, jobPath string) string {
	if jobPath == "" {
		return line
	}
	prefix := filepath.Clean(jobPath) + string(filepath.Separator)
	return strings.ReplaceAll(line, prefix, "")
}

// longPathPattern matches absolute paths with 3+ directories.
// Captures the final element at the end.
var longPathPattern = regexp.MustCompile(`/(?:[^/\s]+/){3,}([^/\s:]+)`)

// compressPath shortens long absolute paths to .../name.
func compressPath(line string) string {
	return longPathPattern.ReplaceAllString(line, ".../$1")
}

// whitespacePattern matches multiple consecutive whitespace characters.
var whitespacePattern = regexp.MustCompile(`\s+`)

// normalizeWhitespace collapses multiple spaces/tabs and trims.
func normalizeWhitespace(line string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))
}

// CompressLine makes a message or command as short as it can be without
// losing the entry names: terminal escapes are dropped, paths become
// job-relative, other long absolute paths are elided and whitespace is
// collapsed.
func CompressLine(line, jobPath string) string {
	return normalizeWhitespace(compressPath(relativeToJob(sanitize.StripANSI(line), jobPath)))
}

// CompressLines applies CompressLine to each line.
func CompressLines(lines []string, jobPath string) []string {
	if len(lines) == 0 {
		return nil
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = CompressLine(l, jobPath)
	}
	return out
}
