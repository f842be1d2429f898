package core

import (
	"path"
	"strings"
	"time"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Destination describes where accepted attachments go
type Destination struct {
	Bucket        string
	CurrentPrefix string
	ArchivePrefix string
	// DateFormat is a Go reference layout for the archival date segment
	DateFormat string
}

// Plan is the ordered set of writes for one message
type Plan struct {
	Attachments []Attachment
	Objects     []StorageObject
	Skipped     []SkippedPart
	ProcessedOn string
}

// Router turns extracted parts into storage objects
type Router struct {
	classifier  *Classifier
	destination Destination
}

// NewRouter creates a new router
func NewRouter(classifier *Classifier, destination Destination) *Router {
	if destination.DateFormat == "" {
		destination.DateFormat = "2006-01-02"
	}
	return &Router{
		classifier:  classifier,
		destination: destination,
	}
}

// CurrentKey returns the key always holding the latest copy of filename
func (r *Router) CurrentKey(filename string) string {
	return joinKey(r.destination.CurrentPrefix, filename)
}

// ArchiveKey returns the dated key for filename
func (r *Router) ArchiveKey(date time.Time, filename string) string {
	return joinKey(r.destination.ArchivePrefix, date.Format(r.destination.DateFormat), filename)
}

// Plan classifies parts and builds two writes per accepted attachment,
// the current key first. When several attachments share a filename only
// the last one is kept.
func (r *Router) Plan(msg *RawMessage, parts []MessagePart, date time.Time) *Plan {
	plan := &Plan{ProcessedOn: date.Format(r.destination.DateFormat)}

	var accepted []Attachment
	lastIndex := make(map[string]int)
	for i := range parts {
		part := &parts[i]
		if !part.IsAttachment() {
			continue
		}

		switch c := r.classifier.Classify(part.Filename).(type) {
		case Accepted:
			lastIndex[part.Filename] = len(accepted)
			accepted = append(accepted, Attachment{
				Filename:  part.Filename,
				Extension: c.Extension,
				Data:      part.Payload,
			})
		case Rejected:
			plan.Skipped = append(plan.Skipped, SkippedPart{Filename: part.Filename, Reason: c.Reason})
		}
	}

	for i, att := range accepted {
		if lastIndex[att.Filename] != i {
			plan.Skipped = append(plan.Skipped, SkippedPart{
				Filename: att.Filename,
				Reason:   "superseded by a later attachment with the same filename",
			})
			continue
		}
		plan.Attachments = append(plan.Attachments, att)
		plan.Objects = append(plan.Objects,
			r.object(msg, att, r.CurrentKey(att.Filename)),
			r.object(msg, att, r.ArchiveKey(date, att.Filename)),
		)
	}

	return plan
}

func (r *Router) object(msg *RawMessage, att Attachment, key string) StorageObject {
	obj := StorageObject{
		Bucket:      r.destination.Bucket,
		Key:         key,
		Data:        att.Data,
		ContentType: contentTypeFor(att.Extension),
	}
	if msg != nil {
		obj.Metadata = map[string]string{
			"source-bucket":  msg.Source.Bucket,
			"source-key":     msg.Source.Key,
			"message-digest": msg.Digest,
		}
	}
	return obj
}

func contentTypeFor(ext string) string {
	switch ext {
	case "csv":
		return contentTypeCSV
	case "xlsx":
		return contentTypeXLSX
	default:
		return "application/octet-stream"
	}
}

func joinKey(segments ...string) string {
	var kept []string
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s != "" {
			kept = append(kept, s)
		}
	}
	return path.Join(kept...)
}
