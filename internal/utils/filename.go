package utils

import (
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// FilenameNormalizer turns attachment filenames into safe object key segments
type FilenameNormalizer struct {
	logger *zap.Logger
}

// NewFilenameNormalizer creates a new FilenameNormalizer
func NewFilenameNormalizer(logger *zap.Logger) *FilenameNormalizer {
	return &FilenameNormalizer{
		logger: logger,
	}
}

// Normalize reduces name to its base name in NFC form.
// It returns "" when nothing usable is left.
func (n *FilenameNormalizer) Normalize(name string) string {
	cleaned := strings.ToValidUTF8(name, "")

	// Senders occasionally include client-side paths, both POSIX and Windows
	if i := strings.LastIndexAny(cleaned, `/\`); i >= 0 {
		cleaned = cleaned[i+1:]
	}

	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, cleaned)
	cleaned = strings.TrimSpace(norm.NFC.String(cleaned))

	if cleaned == "." || cleaned == ".." {
		cleaned = ""
	}

	if cleaned != name && n.logger != nil {
		n.logger.Debug("Filename normalized",
			zap.String("original", name),
			zap.String("normalized", cleaned))
	}

	return cleaned
}
