package r2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/HaiFongPan/ndview/internal/config"
)

// ObjectAPI is the subset of the S3 API the image store needs
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client wraps the S3 client for R2 operations
type Client struct {
	s3Client *s3.Client
	config   *appconfig.R2Config
}

// NewClient creates a new R2 client from configuration
func NewClient(cfg *appconfig.R2Config) (*Client, error) {
	if err := appconfig.ValidateR2(cfg); err != nil {
		return nil, fmt.Errorf("r2 config validation failed: %w", err)
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.AccessKeySecret,
			"",
		)),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint(cfg))
	})

	return &Client{
		s3Client: s3Client,
		config:   cfg,
	}, nil
}

func endpoint(cfg *appconfig.R2Config) string {
	if cfg.Endpoint != "" && cfg.Endpoint != "auto" {
		return cfg.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
}
