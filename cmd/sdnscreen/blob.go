package main

import (
	"context"
	"fmt"

	"sdnscreen/internal/blob/s3"
	"sdnscreen/internal/config"
)

func openBlob(ctx context.Context, cfg *config.ProjectConfig) (*s3.Store, error) {
	if cfg.Blob.Bucket == "" {
		return nil, fmt.Errorf("blob.bucket is not configured")
	}
	return s3.New(ctx, s3.Config{
		Region:    cfg.Blob.Region,
		Bucket:    cfg.Blob.Bucket,
		Endpoint:  cfg.Blob.Endpoint,
		PathStyle: cfg.Blob.PathStyle,
	})
}
