package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/mikey/attachment-router/internal/core"
	"go.uber.org/zap"
)

// API is the subset of the S3 client used by this package.
// Tests substitute an in-memory implementation.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Client implements core.MessageSource and core.ObjectStore on Amazon S3
type Client struct {
	api    API
	logger *zap.Logger
}

// NewClient creates a new S3 client wrapper
func NewClient(api API, logger *zap.Logger) *Client {
	return &Client{
		api:    api,
		logger: logger,
	}
}

// Fetch returns the full content of the object at loc
func (c *Client) Fetch(ctx context.Context, loc core.Location) ([]byte, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, &core.RetrievalError{Bucket: loc.Bucket, Key: loc.Key, Err: describe(err)}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &core.RetrievalError{Bucket: loc.Bucket, Key: loc.Key, Err: fmt.Errorf("failed to read object body: %w", err)}
	}

	c.logger.Debug("Fetched object",
		zap.String("bucket", loc.Bucket),
		zap.String("key", loc.Key),
		zap.Int("size", len(data)))

	return data, nil
}

// Latest returns the most recently modified object under prefix.
// Ties are broken by the lexically greater key.
func (c *Client) Latest(ctx context.Context, bucket, prefix string) (core.Location, error) {
	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var newest *types.Object
	scanned := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return core.Location{}, &core.RetrievalError{Bucket: bucket, Key: prefix, Err: describe(err)}
		}
		for i := range page.Contents {
			obj := &page.Contents[i]
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			scanned++
			if newest == nil || newer(obj, newest) {
				newest = obj
			}
		}
	}

	if newest == nil {
		return core.Location{}, &core.RetrievalError{Bucket: bucket, Key: prefix, Err: core.ErrNoObjects}
	}

	c.logger.Debug("Resolved latest message",
		zap.String("bucket", bucket),
		zap.String("prefix", prefix),
		zap.String("key", aws.ToString(newest.Key)),
		zap.Int("scanned", scanned))

	return core.Location{Bucket: bucket, Key: aws.ToString(newest.Key)}, nil
}

// Put writes obj, replacing any existing object at the same key
func (c *Client) Put(ctx context.Context, obj *core.StorageObject) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(obj.Bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Data),
		ContentLength: aws.Int64(int64(len(obj.Data))),
		Metadata:      obj.Metadata,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		return &core.StorageWriteError{Bucket: obj.Bucket, Key: obj.Key, Err: describe(err)}
	}
	return nil
}

// Exists reports whether an object is present at loc
func (c *Client) Exists(ctx context.Context, loc core.Location) (bool, error) {
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, describe(err)
}

func newer(a, b *types.Object) bool {
	at, bt := aws.ToTime(a.LastModified), aws.ToTime(b.LastModified)
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aws.ToString(a.Key) > aws.ToString(b.Key)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

// describe keeps the original error but prefixes the S3 error code when known
func describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
