package datastore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/danthegoodman1/tabula/utils"
	"github.com/rs/zerolog"
)

var ErrMissingBucket = utils.PermError("S3_BUCKET_NAME is required for the s3 data store")

type (
	S3DataStore struct {
		bucket     string
		prefix     string
		downloader *s3manager.Downloader
		uploader   *s3manager.Uploader
	}
)

func NewS3DataStore(ctx context.Context, bucket, prefix string) (*S3DataStore, error) {
	if bucket == "" {
		return nil, ErrMissingBucket
	}

	s3Config := &aws.Config{
		Region:      aws.String(utils.AWS_DEFAULT_REGION),
		Credentials: credentials.NewEnvCredentials(),
	}
	if utils.S3_ENDPOINT != "" {
		s3Config.Endpoint = aws.String(utils.S3_ENDPOINT)
		// minio and friends
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	s3Session, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("error making new session: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("bucket", bucket).Str("prefix", prefix).Msg("created s3 data store")

	return &S3DataStore{
		bucket:     bucket,
		prefix:     prefix,
		downloader: s3manager.NewDownloader(s3Session),
		uploader:   s3manager.NewUploader(s3Session),
	}, nil
}

func joinKey(prefix, name string) string {
	return strings.TrimPrefix(path.Join(prefix, name), "/")
}

func (s *S3DataStore) key(name string) string {
	return joinKey(s.prefix, name)
}

// Open downloads the whole object before returning, the datasets are small.
func (s *S3DataStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	logger := zerolog.Ctx(ctx)
	buf := &aws.WriteAtBuffer{}

	st := time.Now()
	_, err := s.downloader.DownloadWithContext(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("error downloading from s3: %w", err)
	}

	d := time.Since(st)
	logger.Debug().Str("fileName", s.key(name)).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("downloaded file from s3")

	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func (s *S3DataStore) Put(ctx context.Context, name string, r io.Reader) error {
	logger := zerolog.Ctx(ctx)

	st := time.Now()
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("error uploading to s3: %w", err)
	}

	d := time.Since(st)
	logger.Debug().Str("fileName", s.key(name)).Int64("durationNS", d.Nanoseconds()).Str("durationHuman", d.String()).Msg("uploaded file to s3")
	return nil
}

func (s *S3DataStore) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

func (s *S3DataStore) Shutdown(context.Context) error {
	return nil
}
