// Package archive stores raw article snapshots in S3, keyed by item id, so
// original content survives database resets.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"

	"insightbeam/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver uploads item snapshots to a bucket under an optional key prefix.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchiver builds an S3 client from the default AWS configuration chain.
func NewArchiver(ctx context.Context, bucket, region, prefix string) (*Archiver, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// StoreItems uploads each item as JSON at <prefix>/items/<id>.json.
func (a *Archiver) StoreItems(ctx context.Context, items []types.SourceItem) error {
	for _, item := range items {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode item %d: %w", item.ID, err)
		}

		key := path.Join(a.prefix, "items", fmt.Sprintf("%d.json", item.ID))
		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("failed to upload item %d: %w", item.ID, err)
		}
	}

	log.Printf("Archived %d item(s) to s3://%s", len(items), a.bucket)
	return nil
}
