package origin

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/folio-site/folio/internal/offline"
)

// ObjectGetter is the part of *s3.Client used by S3.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configures an S3 client.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// Prefix is prepended to the request path (without its leading slash)
	// to form the object key.
	Prefix string
}

// S3 serves objects from a bucket.
type S3 struct {
	client ObjectGetter
	bucket string
	prefix string
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Client builds an S3 client. A non-empty Endpoint points it at an
// S3-compatible server such as MinIO and switches to path-style addressing.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3 creates an S3 origin over client.
func NewS3(client ObjectGetter, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// ObjectKey maps a request path to an object key.
func (o *S3) ObjectKey(p string) string {
	return o.prefix + strings.TrimPrefix(path.Clean("/"+p), "/")
}

// Fetch implements offline.Fetcher. Missing objects become 404 responses;
// any other failure is a network error.
func (o *S3) Fetch(ctx context.Context, req *http.Request) (*offline.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return &offline.Response{
			Status: http.StatusMethodNotAllowed,
			Header: http.Header{"Allow": []string{"GET, HEAD"}},
		}, nil
	}

	key := o.ObjectKey(req.URL.Path)
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return &offline.Response{
				Status: http.StatusNotFound,
				Header: http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
				Body:   []byte("not found\n"),
			}, nil
		}
		return nil, fmt.Errorf("getting s3://%s/%s: %w", o.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := readBody(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", o.bucket, key, err)
	}

	header := http.Header{}
	ct := aws.ToString(out.ContentType)
	if ct == "" || ct == "binary/octet-stream" {
		ct = mime.TypeByExtension(path.Ext(key))
	}
	if ct != "" {
		header.Set("Content-Type", ct)
	}
	if out.ETag != nil {
		header.Set("ETag", *out.ETag)
	}
	if out.LastModified != nil {
		header.Set("Last-Modified", out.LastModified.UTC().Format(http.TimeFormat))
	}
	if out.CacheControl != nil {
		header.Set("Cache-Control", *out.CacheControl)
	}
	header.Set("Date", time.Now().UTC().Format(http.TimeFormat))

	return &offline.Response{Status: http.StatusOK, Header: header, Body: data}, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
