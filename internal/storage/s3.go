package storage

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog/log"
)

// NewAWSSession builds a session for region. Static credentials are taken from
// the environment when present, otherwise the default chain (IAM role, shared
// config) applies. A non-empty endpoint targets an S3-compatible service.
func NewAWSSession(region, endpoint string) (*session.Session, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if os.Getenv("AWS_ACCESS_KEY_ID") != "" && os.Getenv("AWS_SECRET_ACCESS_KEY") != "" {
		log.Info().Str("provider", "environment variables").Msg("aws.credentials")
		cfg.Credentials = credentials.NewEnvCredentials()
	} else {
		log.Info().Str("provider", "default chain").Msg("aws.credentials")
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	return session.NewSession(cfg)
}

// S3 uploads files into a bucket under an optional key prefix.
type S3 struct {
	Bucket   string
	Prefix   string
	uploader *s3manager.Uploader
}

// NewS3 returns an S3 mover using sess.
func NewS3(sess *session.Session, bucket, prefix string) *S3 {
	return &S3{Bucket: bucket, Prefix: prefix, uploader: s3manager.NewUploader(sess)}
}

// Key returns the object key for name.
func (s *S3) Key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}

// Move uploads r as Key(name).
func (s *S3) Move(ctx context.Context, name string, r io.Reader, _ int64, contentType string) error {
	if err := checkName(name); err != nil {
		return err
	}
	in := &s3manager.UploadInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key(name)),
		Body:   r,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err := s.uploader.UploadWithContext(ctx, in)
	return err
}
