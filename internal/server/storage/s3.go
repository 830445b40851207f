// Package storage keeps vault export archives in S3-compatible object
// storage (MinIO in development).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Settings selects the bucket and the credentials used to reach it.
type Settings struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// Seams for tests; production code calls straight through to the SDK.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}

	listObjectsV2 = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in)
	}

	deleteObjects = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectsInput) error {
		_, err := c.DeleteObjects(ctx, in)
		return err
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Store implements the object store used by vault export and account
// erasure.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store builds a path-style client with static credentials. No request
// is made until the first operation.
func NewS3Store(ctx context.Context, st Settings) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(st.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			st.AccessKey, // MINIO_ROOT_USER
			st.SecretKey, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if st.Endpoint != "" {
			o.BaseEndpoint = aws.String(st.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, presign: s3.NewPresignClient(client), bucket: st.Bucket}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PresignGet returns a download URL for key valid for ttl.
func (s *S3Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// DeletePrefix removes every object under prefix, one listing page at a time.
func (s *S3Store) DeletePrefix(ctx context.Context, prefix string) error {
	var token *string
	for {
		out, err := listObjectsV2(s.client, ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return fmt.Errorf("list %s: %w", prefix, err)
		}

		if len(out.Contents) > 0 {
			ids := make([]types.ObjectIdentifier, 0, len(out.Contents))
			for _, obj := range out.Contents {
				ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
			}
			err = deleteObjects(s.client, ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return fmt.Errorf("delete %s: %w", prefix, err)
			}
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			return nil
		}
		token = out.NextContinuationToken
	}
}
