package infra

import (
	"context"
	"fmt"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client loads AWS configuration from the environment and returns an
// S3 client for the given region.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	if region == "" {
		return nil, fmt.Errorf("s3 region is required")
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg), nil
}
