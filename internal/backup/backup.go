// Package backup mirrors saved world bytes to an S3-compatible bucket
// after a successful local save, grounded on the teacher's own
// pkg/archive/parquet S3 target (both needs: push a blob to an
// S3-compatible store under a config-driven bucket/prefix).
package backup

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader pushes a saved world's bytes to the configured bucket under
// prefix/<worldName>/<timestamp>-<worldName>.<ext>. A nil *Uploader is
// valid and every method on it is then a no-op: backup is optional, and
// callers should not have to branch on whether it's configured.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds an Uploader for bucket, or returns (nil, nil) when bucket
// is empty — the documented way to leave remote backup disabled.
func New(ctx context.Context, bucket, prefix, region, endpoint string, usePathStyle bool) (*Uploader, error) {
	if bucket == "" {
		return nil, nil
	}

	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("backup: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = usePathStyle
	})

	return &Uploader{client: client, bucket: bucket, prefix: prefix}, nil
}

// Upload mirrors data (the bytes just written to the local save file
// for worldName, with the format's native extension) to the bucket. A
// nil Uploader silently does nothing — see New.
func (u *Uploader) Upload(ctx context.Context, worldName, extension string, data []byte) error {
	if u == nil {
		return nil
	}

	key := fmt.Sprintf("%s%s/%s-%s%s", keyPrefix(u.prefix), worldName, time.Now().UTC().Format("20060102T150405Z"), worldName, extension)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("backup: uploading %q: %w", key, err)
	}
	return nil
}

func keyPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if prefix[len(prefix)-1] != '/' {
		return prefix + "/"
	}
	return prefix
}
