package main

import (
	"errors"

	"github.com/mikey/attachment-router/internal/core"
)

// errorKind names the failure class for alerting
func errorKind(err error) string {
	var (
		retrievalErr *core.RetrievalError
		parseErr     *core.ParseError
		writeErr     *core.StorageWriteError
	)
	switch {
	case errors.As(err, &retrievalErr):
		return "retrieval"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &writeErr):
		return "storage_write"
	default:
		return "internal"
	}
}
