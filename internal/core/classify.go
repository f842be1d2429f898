package core

import (
	"strings"
)

// Classification is the outcome of checking an attachment's type.
// It is either Accepted or Rejected.
type Classification interface {
	classification()
}

// Accepted marks an attachment that will be routed
type Accepted struct {
	Extension string
}

// Rejected marks an attachment that is dropped without error
type Rejected struct {
	Reason string
}

func (Accepted) classification() {}
func (Rejected) classification() {}

// Classifier matches attachment filenames against a permitted extension set
type Classifier struct {
	permitted map[string]struct{}
}

// NewClassifier creates a classifier for the given extensions.
// Extensions are matched case-insensitively and may carry a leading dot.
func NewClassifier(extensions []string) *Classifier {
	permitted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			permitted[ext] = struct{}{}
		}
	}
	return &Classifier{permitted: permitted}
}

// Classify checks the extension of filename, the text after its final dot
func (c *Classifier) Classify(filename string) Classification {
	if filename == "" {
		return Rejected{Reason: "no filename"}
	}

	dot := strings.LastIndexByte(filename, '.')
	if dot < 0 || dot == len(filename)-1 {
		return Rejected{Reason: "no extension"}
	}

	ext := strings.ToLower(filename[dot+1:])
	if _, ok := c.permitted[ext]; !ok {
		return Rejected{Reason: "unsupported extension: " + ext}
	}

	return Accepted{Extension: ext}
}
