// Package export writes analytics report snapshots to S3 for retention and
// offline analysis.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/symone-ai/symone-admin/pkg/types"
)

// Uploader uploads JSON report snapshots to an S3 bucket. A zero-value
// Uploader is disabled and rejects uploads.
type Uploader struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewUploader creates an uploader for the given bucket. An empty bucket name
// returns a disabled uploader; credentials and region come from the default
// AWS credential chain.
func NewUploader(ctx context.Context, bucket, prefix string) (*Uploader, error) {
	if bucket == "" {
		return &Uploader{}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Uploader{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Enabled reports whether a bucket is configured
func (u *Uploader) Enabled() bool {
	return u != nil && u.client != nil
}

// UploadCostReport uploads a cost report snapshot keyed by its calculation
// time and returns the object key.
func (u *Uploader) UploadCostReport(ctx context.Context, report *types.CostReport) (string, error) {
	if !u.Enabled() {
		return "", fmt.Errorf("export is not configured")
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cost report: %w", err)
	}

	key := path.Join(u.prefix, "costs", report.CalculatedAt.UTC().Format("2006-01-02T15-04-05Z")+".json")

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return key, nil
}
