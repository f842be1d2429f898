package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/textproto"
	"strings"

	"github.com/emersion/go-message"
	"github.com/mikey/attachment-router/internal/utils"
	"go.uber.org/zap"
)

// ParsedMessage is the header block and the leaf parts of a message
type ParsedMessage struct {
	Headers map[string][]string
	Parts   []MessagePart
}

// Extractor parses raw messages into leaf parts
type Extractor struct {
	normalizer *utils.FilenameNormalizer
	logger     *zap.Logger
}

// NewExtractor creates a new extractor
func NewExtractor(normalizer *utils.FilenameNormalizer, logger *zap.Logger) *Extractor {
	return &Extractor{
		normalizer: normalizer,
		logger:     logger,
	}
}

// Extract parses data and returns its leaf parts in encounter order.
// Transfer encodings are undone; charsets are left alone so payloads
// keep their original bytes.
func (x *Extractor) Extract(data []byte) (*ParsedMessage, error) {
	entity, err := message.Read(bytes.NewReader(data))
	if entity == nil {
		return nil, &ParseError{Err: err}
	}
	if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
		return nil, &ParseError{Err: err}
	}

	headers := headerMap(entity.Header)
	if len(headers) == 0 {
		return nil, &ParseError{Err: errors.New("message has no header fields")}
	}

	parsed := &ParsedMessage{Headers: headers}
	if err := x.walk(entity, err, nil, &parsed.Parts); err != nil {
		return nil, &ParseError{Err: err}
	}

	return parsed, nil
}

// walk descends multipart containers depth-first and appends leaves to parts
func (x *Extractor) walk(e *message.Entity, entityErr error, path []int, parts *[]MessagePart) error {
	if mr := e.MultipartReader(); mr != nil {
		for i := 0; ; i++ {
			child, err := mr.NextPart()
			if err == io.EOF {
				return nil
			}
			if child == nil {
				return fmt.Errorf("part %s: %w", formatPath(append(path, i)), err)
			}
			if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
				return fmt.Errorf("part %s: %w", formatPath(append(path, i)), err)
			}

			childPath := make([]int, len(path)+1)
			copy(childPath, path)
			childPath[len(path)] = i

			if err := x.walk(child, err, childPath, parts); err != nil {
				return err
			}
		}
	}

	part, err := x.leaf(e, entityErr, path)
	if err != nil {
		return err
	}
	*parts = append(*parts, *part)
	return nil
}

func (x *Extractor) leaf(e *message.Entity, entityErr error, path []int) (*MessagePart, error) {
	mediaType, ctParams, err := e.Header.ContentType()
	if err != nil {
		mediaType, ctParams = x.lenientParams("Content-Type", e.Header.Get("Content-Type"), path, err)
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}

	disposition, dispParams, err := e.Header.ContentDisposition()
	if err != nil {
		disposition, dispParams = x.lenientParams("Content-Disposition", e.Header.Get("Content-Disposition"), path, err)
	}

	rawName := dispParams["filename"]
	if rawName == "" {
		rawName = ctParams["name"]
	}

	part := &MessagePart{
		Path:        path,
		ContentType: strings.ToLower(mediaType),
		Disposition: strings.ToLower(disposition),
	}
	if rawName != "" {
		part.Filename = x.normalizer.Normalize(rawName)
		if part.Filename == "" {
			x.logger.Warn("Attachment filename unusable after normalization",
				zap.String("filename", rawName),
				zap.String("part", formatPath(path)))
		}
	}

	attachment := rawName != ""
	if attachment && message.IsUnknownEncoding(entityErr) {
		return nil, fmt.Errorf("part %s: %w", formatPath(path), entityErr)
	}

	payload, err := io.ReadAll(e.Body)
	if err != nil {
		if attachment {
			return nil, fmt.Errorf("part %s: failed to decode payload: %w", formatPath(path), err)
		}
		x.logger.Debug("Skipping undecodable body part",
			zap.String("part", formatPath(path)),
			zap.String("content_type", part.ContentType),
			zap.Error(err))
		return part, nil
	}
	part.Payload = payload

	return part, nil
}

// lenientParams splits a header value whose parameters fail strict
// parsing, e.g. an unquoted filename containing spaces. Values run to the
// next ';' with surrounding quotes removed.
func (x *Extractor) lenientParams(field, raw string, path []int, parseErr error) (string, map[string]string) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	segments := strings.Split(raw, ";")
	value, _, err := mime.ParseMediaType(raw)
	if (err != nil && !errors.Is(err, mime.ErrInvalidMediaParameter)) || value == "" {
		value = strings.ToLower(strings.TrimSpace(segments[0]))
	}

	params := make(map[string]string)
	for _, segment := range segments[1:] {
		key, val, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if key == "" || val == "" {
			continue
		}
		if decoded, err := wordDecoder.DecodeHeader(val); err == nil {
			val = decoded
		}
		params[key] = val
	}

	x.logger.Warn("Malformed header parameters, parsed leniently",
		zap.String("header", field),
		zap.String("value", raw),
		zap.String("part", formatPath(path)),
		zap.Error(parseErr))

	return value, params
}

var wordDecoder = new(mime.WordDecoder)

// headerMap copies the top-level header fields under canonical keys
func headerMap(h message.Header) map[string][]string {
	headers := make(map[string][]string)
	fields := h.Fields()
	for fields.Next() {
		key := textproto.CanonicalMIMEHeaderKey(fields.Key())
		headers[key] = append(headers[key], fields.Value())
	}
	return headers
}

func formatPath(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	segments := make([]string, len(path))
	for i, p := range path {
		segments[i] = fmt.Sprint(p)
	}
	return strings.Join(segments, ".")
}
