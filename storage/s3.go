package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Options configures an S3Storage. Endpoint is set for S3 compatible
// services such as MinIO; BaseURL overrides the public object URL.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	BaseURL   string
}

// S3Storage keeps objects in a single bucket.
type S3Storage struct {
	opts     S3Options
	s3Client *s3.S3
	uploader *s3manager.Uploader
}

// NewS3Storage creates a client for opts.Bucket.
func NewS3Storage(opts S3Options) (*S3Storage, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}
	awsCfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.Endpoint != "" {
		awsCfg.Endpoint = aws.String(opts.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if opts.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	client := s3.New(sess)
	return &S3Storage{
		opts:     opts,
		s3Client: client,
		uploader: s3manager.NewUploaderWithClient(client),
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, name string, body io.Reader, contentType string) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	input := s3manager.UploadInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err = s.uploader.UploadWithContext(ctx, &input)
	return err
}

func (s *S3Storage) Delete(ctx context.Context, name string) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	_, err = s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) URL(name string) string {
	// "/media/" is the disk default and means nothing for a bucket
	if s.opts.BaseURL != "" && s.opts.BaseURL != "/media/" {
		return joinURL(s.opts.BaseURL, name)
	}
	if s.opts.Endpoint != "" {
		return joinURL(strings.TrimSuffix(s.opts.Endpoint, "/")+"/"+s.opts.Bucket, name)
	}
	return joinURL("https://"+s.opts.Bucket+".s3."+s.opts.Region+".amazonaws.com", name)
}
