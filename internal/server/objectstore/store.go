// Package objectstore presigns uploads and downloads against an
// S3-compatible bucket (Cloudflare R2 in production).
package objectstore

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/logging"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// DisabledMessage is logged once per process when storage is unconfigured.
const DisabledMessage = "R2 is not configured; uploads are disabled."

// Status reports whether storage is usable and, if not, which variables
// are missing.
type Status struct {
	Enabled bool     `json:"enabled"`
	Missing []string `json:"missing"`
}

// Presigned is a signed request the client performs directly against the
// bucket.
type Presigned struct {
	URL       string      `json:"url"`
	Method    string      `json:"method"`
	Header    http.Header `json:"header,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type Store struct {
	cfg    Config
	logger logging.Logger

	warnOnce sync.Once

	mu      sync.Mutex
	presign *s3.PresignClient
}

func New(cfg Config, logger logging.Logger) *Store {
	return &Store{cfg: cfg, logger: logger}
}

// Status never fails. A disabled store is an expected state.
func (s *Store) Status(ctx context.Context) Status {
	missing := s.cfg.Missing()
	if len(missing) > 0 {
		s.warnOnce.Do(func() {
			s.logger.Warn(ctx, DisabledMessage, "missing", missing)
		})
		return Status{Enabled: false, Missing: missing}
	}
	return Status{Enabled: true, Missing: []string{}}
}

func (s *Store) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presign != nil {
		return s.presign, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.AccessKeyID,
			s.cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.Endpoint)
		o.UsePathStyle = s.cfg.UsePathStyle
	})

	s.presign = newS3PresignClient(client)
	return s.presign, nil
}

// PresignPut signs a PUT of key valid for common.PresignValidity.
func (s *Store) PresignPut(ctx context.Context, key string) (*Presigned, error) {
	if !s.Status(ctx).Enabled {
		return nil, common.ErrStorageDisabled
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	expires := now().Add(common.PresignValidity)
	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(common.PresignValidity))
	if err != nil {
		return nil, err
	}

	return &Presigned{URL: req.URL, Method: req.Method, Header: req.SignedHeader, ExpiresAt: expires}, nil
}

// PresignGet signs a GET of key valid for common.PresignValidity.
func (s *Store) PresignGet(ctx context.Context, key string) (*Presigned, error) {
	if !s.Status(ctx).Enabled {
		return nil, common.ErrStorageDisabled
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, err
	}

	expires := now().Add(common.PresignValidity)
	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(common.PresignValidity))
	if err != nil {
		return nil, err
	}

	return &Presigned{URL: req.URL, Method: req.Method, Header: req.SignedHeader, ExpiresAt: expires}, nil
}
