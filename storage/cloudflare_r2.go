package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type CloudflareR2ArchiverConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
}

type cloudflareR2Archiver struct {
	s3Client   *s3.Client
	bucketName string
	now        func() time.Time
}

// NewCloudflareR2Archiver builds a SnapshotArchiver on Cloudflare R2's
// S3-compatible API.
func NewCloudflareR2Archiver(cfg CloudflareR2ArchiverConfig) (SnapshotArchiver, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" {
		return nil, errors.New("invalid Cloudflare R2 configuration: all fields are required")
	}

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
			SigningRegion: "auto",
		}, nil
	})

	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	return &cloudflareR2Archiver{
		s3Client:   s3.NewFromConfig(sdkCfg),
		bucketName: cfg.BucketName,
		now:        time.Now,
	}, nil
}

func (a *cloudflareR2Archiver) ArchiveSnapshot(ctx context.Context, playerUUID string, snapshot interface{}) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot for %s: %w", playerUUID, err)
	}

	key := fmt.Sprintf("snapshots/%s/%d.json", playerUUID, a.now().Unix())

	_, err = a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive snapshot to R2 (key: %s): %w", key, err)
	}

	return nil
}
