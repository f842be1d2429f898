package core

import (
	"errors"
	"fmt"
)

// ErrNoObjects is returned when a listing yields no candidate message
var ErrNoObjects = errors.New("no objects found")

// RetrievalError is returned when the source message cannot be read
type RetrievalError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// ParseError is returned when the message bytes are not valid mail structure
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse message: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// StorageWriteError is returned when a destination write fails
type StorageWriteError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write s3://%s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}
