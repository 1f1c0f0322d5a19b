package export

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	binaryOmitted = "[binary file omitted]"
	lockOmitted   = "[lock file omitted]"
)

// lockFiles are dependency lock files whose content is noise in an export.
var lockFiles = map[string]bool{
	"package-lock.json":   true,
	"npm-shrinkwrap.json": true,
	"yarn.lock":           true,
	"pnpm-lock.yaml":      true,
	"bun.lockb":           true,
	"go.sum":              true,
	"pipfile.lock":        true,
	"poetry.lock":         true,
	"pdm.lock":            true,
	"requirements.lock":   true,
	"gemfile.lock":        true,
	"cargo.lock":          true,
	"composer.lock":       true,
	"packages.lock.json":  true,
	"package.resolved":    true,
	"pubspec.lock":        true,
}

func isLockFile(p string) bool {
	return lockFiles[strings.ToLower(path.Base(p))]
}

// isBinaryFile checks if content is likely binary by sampling the first 100 runes
// and checking if they are printable Unicode characters.
func isBinaryFile(content []byte) bool {
	const sampleSize = 100
	var nonPrintable int
	var totalRunes int

	for i := 0; i < len(content) && totalRunes < sampleSize; {
		r, size := utf8.DecodeRune(content[i:])
		if r == utf8.RuneError {
			nonPrintable++
		} else if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			nonPrintable++
		}
		i += size
		totalRunes++
	}

	if totalRunes == 0 {
		return false
	}
	return float64(nonPrintable)/float64(totalRunes) > 0.1
}
