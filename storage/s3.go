package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3ArchiveStore implements ArchiveStore backed by S3.
type S3ArchiveStore struct {
	bucket string
	prefix string
	s3     *s3.Client
}

func NewS3ArchiveStore(s3Client *s3.Client, bucket, prefix string) *S3ArchiveStore {
	return &S3ArchiveStore{
		bucket: bucket,
		prefix: prefix,
		s3:     s3Client,
	}
}

func (s *S3ArchiveStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path.Join(s.prefix, path.Base(key))),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put dispatch log to S3: %w", err)
	}
	return nil
}
