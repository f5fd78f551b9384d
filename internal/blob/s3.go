package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"impact-service/pkg/config"
	"impact-service/prometheus"
)

const listPageSize = 100

// S3Store implements Store on top of S3-compatible object storage
type S3Store struct {
	client *s3.Client
}

// NewS3Store builds an S3-backed store from configuration. A non-empty
// endpoint points the client at an S3-compatible service (e.g. MinIO).
func NewS3Store(ctx context.Context, cfg *config.BlobConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Store{client: client}, nil
}

// Exists checks whether an object is present without downloading it
func (s *S3Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	defer prometheus.TrackBlobOperation("exists")(time.Now())

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// Download returns the full object body
func (s *S3Store) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	defer prometheus.TrackBlobOperation("download")(time.Now())

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Upload writes an object. With Overwrite false the write fails if the
// key already exists.
func (s *S3Store) Upload(ctx context.Context, bucket, key string, data []byte, opts UploadOptions) error {
	defer prometheus.TrackBlobOperation("upload")(time.Now())

	if !opts.Overwrite {
		exists, err := s.Exists(ctx, bucket, key)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("object already exists: %s/%s", bucket, key)
		}
	}

	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(data),
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Copy duplicates an object server-side
func (s *S3Store) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	defer prometheus.TrackBlobOperation("copy")(time.Now())

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(srcBucket + "/" + srcKey),
	})
	if err != nil {
		return fmt.Errorf("copy %s/%s to %s/%s: %w", srcBucket, srcKey, dstBucket, dstKey, err)
	}
	return nil
}

// List returns one page of objects under a prefix, including user
// metadata, with a continuation token for the next page.
func (s *S3Store) List(ctx context.Context, bucket, prefix, continuationToken string) (Page, error) {
	defer prometheus.TrackBlobOperation("list")(time.Now())

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(listPageSize),
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	out, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return Page{}, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
	}

	page := Page{Objects: make([]ObjectInfo, 0, len(out.Contents))}
	for _, obj := range out.Contents {
		info := ObjectInfo{Key: aws.ToString(obj.Key), ETag: aws.ToString(obj.ETag)}

		// S3 listings do not carry user metadata, so fetch it per object
		head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    obj.Key,
		})
		if err == nil {
			info.Metadata = head.Metadata
		}
		page.Objects = append(page.Objects, info)
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// Delete removes a single object
func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	defer prometheus.TrackBlobOperation("delete")(time.Now())

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// DeletePrefix enumerates and removes every object under a prefix
func (s *S3Store) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	defer prometheus.TrackBlobOperation("delete")(time.Now())

	var continuationToken *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
		}
		if len(out.Contents) == 0 {
			return nil
		}

		objects := make([]types.ObjectIdentifier, 0, len(out.Contents))
		for _, obj := range out.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
		_, err = s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("delete prefix %s/%s: %w", bucket, prefix, err)
		}

		if !aws.ToBool(out.IsTruncated) {
			return nil
		}
		continuationToken = out.NextContinuationToken
	}
}
