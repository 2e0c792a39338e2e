package backends

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/tablefs/tablefs-querier/core"
)

// S3Client abstracts the S3 API operations used by the S3 backend.
// The [s3.Client] type satisfies this interface.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 reads objects from Amazon S3 or any S3-compatible object store
// (MinIO, R2, etc.). Storage paths map to object keys under an optional
// prefix.
type S3 struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3 creates an S3-backed FileSystem. The client should be
// pre-configured (credentials, region, endpoint); any type satisfying
// [S3Client] is accepted. Prefix is prepended to all object keys; pass
// "" for no prefix.
func NewS3(client S3Client, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// newS3Client builds an [s3.Client] from backend settings. A custom
// endpoint switches on path-style addressing for S3-compatible stores.
func newS3Client(settings Settings) *s3.Client {
	opts := s3.Options{Region: settings.Region}
	if settings.Endpoint != "" {
		opts.BaseEndpoint = aws.String(settings.Endpoint)
		opts.UsePathStyle = true
	}
	if settings.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey, "")
	}
	return s3.New(opts)
}

// key builds the full object key for the given storage path.
func (s *S3) key(path string) string {
	path = strings.TrimLeft(path, "/")
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

// Fetch retrieves the object at path via GetObject. Object bytes are
// returned as stored regardless of the binary flag.
func (s *S3) Fetch(ctx context.Context, path string, binary bool) (*core.Response, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("s3: %s: %w", path, core.ErrNotFound)
		}
		return nil, &core.FetchError{Path: path, Err: err}
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &core.FetchError{Path: path, Err: err}
	}

	header := http.Header{}
	if ct := aws.ToString(out.ContentType); ct != "" {
		header.Set("Content-Type", ct)
	}
	return &core.Response{Path: path, Header: header, Body: body}, nil
}

// List lists the keys under path via ListObjectsV2 with a "/" delimiter,
// so entries mirror one directory level.
func (s *S3) List(ctx context.Context, path string) (*core.DirectoryInfo, error) {
	prefix := s.key(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, &core.FetchError{Path: path, Err: err}
	}

	info := &core.DirectoryInfo{}
	for _, obj := range out.Contents {
		name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
		if name == "" {
			continue
		}
		info.Files = append(info.Files, name)
	}
	for _, cp := range out.CommonPrefixes {
		name := strings.TrimPrefix(aws.ToString(cp.Prefix), prefix)
		info.Files = append(info.Files, name)
	}
	info.Count = len(info.Files)
	return info, nil
}

// isS3NotFound reports whether err indicates the object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var _ core.FileSystem = (*S3)(nil)
