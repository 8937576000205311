package aws

import (
	"bytes"
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Objects uploads and removes objects in a single bucket.
type S3Objects struct {
	client *s3.Client
	bucket string
}

// NewS3Objects builds a path-style client so LocalStack buckets resolve.
func NewS3Objects(cfg sdkaws.Config, bucket string) *S3Objects {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return &S3Objects{client: client, bucket: bucket}
}

func (o *S3Objects) Bucket() string { return o.bucket }

func (o *S3Objects) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(o.bucket),
		Key:         sdkaws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", o.bucket, key, err)
	}
	return nil
}

func (o *S3Objects) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(o.bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", o.bucket, key, err)
	}
	return nil
}
