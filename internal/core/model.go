package core

import (
	"time"
)

// Location identifies an object in storage
type Location struct {
	Bucket string
	Key    string
}

// String renders the location as bucket/key
func (l Location) String() string {
	return l.Bucket + "/" + l.Key
}

// RawMessage is a stored email as fetched, before parsing
type RawMessage struct {
	Source Location
	Data   []byte
	// Digest is the hex-encoded SHA-256 of Data
	Digest string
}

// MessagePart is a leaf of the MIME part tree
type MessagePart struct {
	// Path is the position of the part in the tree, e.g. [1 0]
	Path        []int
	ContentType string
	Disposition string
	Filename    string
	Payload     []byte
}

// IsAttachment reports whether the part carries a file payload
func (p *MessagePart) IsAttachment() bool {
	return p.Filename != ""
}

// Attachment is an accepted file payload
type Attachment struct {
	Filename  string
	Extension string
	Data      []byte
}

// StorageObject is a single write target
type StorageObject struct {
	Bucket      string
	Key         string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

// SkippedPart records an attachment that was filtered out
type SkippedPart struct {
	Filename string
	Reason   string
}

// RunStatus is the outcome of a run that did not fail
type RunStatus string

const (
	// StatusProcessed means attachments were routed (possibly zero of them)
	StatusProcessed RunStatus = "processed"
	// StatusDuplicate means the message digest was already in the ledger
	StatusDuplicate RunStatus = "duplicate"
	// StatusRejected means the message failed sender verification
	StatusRejected RunStatus = "rejected"
)

// RunReport summarises one invocation
type RunReport struct {
	RunID       string
	Source      Location
	Digest      string
	Status      RunStatus
	Reason      string
	ProcessedOn string
	Accepted    []string
	Written     []Location
	Skipped     []SkippedPart
	StartedAt   time.Time
	FinishedAt  time.Time
}

// LedgerEntry records a processed message
type LedgerEntry struct {
	Digest          string
	SourceBucket    string
	SourceKey       string
	AttachmentCount int
	ProcessedAt     time.Time
}
