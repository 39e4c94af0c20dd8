// Package assets turns stored product image references into URLs a browser
// can load.
package assets

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type Resolver interface {
	URL(ref string) string
}

func isAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "//")
}

// Static prefixes relative references with the public assets base URL.
type Static struct {
	BaseURL string
}

func (s Static) URL(ref string) string {
	if ref == "" || isAbsolute(ref) {
		return ref
	}
	base := strings.TrimRight(s.BaseURL, "/")
	return base + "/" + strings.TrimLeft(ref, "/")
}

// S3 presigns GET requests for objects in a private bucket. A reference that
// cannot be signed falls back to the static URL.
type S3 struct {
	Bucket   string
	TTL      time.Duration
	Fallback Static

	client *s3.S3
}

func NewS3(region, bucket string, ttl time.Duration, fallback Static) (*S3, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3{Bucket: bucket, TTL: ttl, Fallback: fallback, client: s3.New(sess)}, nil
}

func (r *S3) URL(ref string) string {
	if ref == "" || isAbsolute(ref) {
		return ref
	}
	req, _ := r.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(r.Bucket),
		Key:    aws.String(strings.TrimLeft(ref, "/")),
	})
	url, err := req.Presign(r.TTL)
	if err != nil {
		return r.Fallback.URL(ref)
	}
	return url
}

// New picks S3 presigning when a bucket is configured.
func New(bucket, region string, ttl time.Duration, baseURL string) (Resolver, error) {
	static := Static{BaseURL: baseURL}
	if bucket == "" {
		return static, nil
	}
	return NewS3(region, bucket, ttl, static)
}
