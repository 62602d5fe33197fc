package repository

import (
	"regexp"
	"strings"

	"github.com/compozy/subsync/internal/domain"
)

const (
	// shaLength is the width of the commit hash column in status output
	shaLength = 40
	// pathColumn is where the path starts: state, hash and one separator
	pathColumn = 1 + shaLength + 1
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ParseSubmoduleStatus parses the output of `git submodule status`. Entries
// look like
//
//	 1eaabe34fc6f486367a176207420378f587d3b48 git (v2.16.0-rc0)
//	-0000000000000000000000000000000000000000 lib
//
// where the first column is the state code, followed by the recorded commit,
// the path and, for initialized submodules, the `git describe` output in
// parentheses. Blank lines are skipped. Lines that do not follow the layout
// are not rejected; missing columns come back as empty strings.
func ParseSubmoduleStatus(output string) []domain.SubmoduleEntry {
	entries := make([]domain.SubmoduleEntry, 0)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		entries = append(entries, parseStatusLine(line))
	}
	return entries
}

func parseStatusLine(line string) domain.SubmoduleEntry {
	state := substring(line, 0, 1)
	sha := substring(line, 1, shaLength)
	rest := substring(line, pathColumn, len(line))

	fields := whitespaceRun.Split(rest, 3)
	path := fields[0]
	var describe string
	if len(fields) > 1 {
		describe = stripParens(fields[1])
	}
	return domain.NewSubmoduleEntry(sha, path, describe, domain.SubmoduleState(state))
}

// stripParens drops the first and last character of "(text)".
func stripParens(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[1 : len(s)-1]
}

// substring returns up to length bytes of s starting at start, clamped to the
// bounds of s.
func substring(s string, start, length int) string {
	if start >= len(s) {
		return ""
	}
	end := start + length
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}
