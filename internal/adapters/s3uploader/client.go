package s3uploader

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewClient builds an S3 client for region using the default AWS SDK
// credential chain (environment, shared config, instance role).
func NewClient(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("s3uploader: load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}
