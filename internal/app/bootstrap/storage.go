package bootstrap

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/wolfman30/aika-health/internal/config"
	"github.com/wolfman30/aika-health/internal/uploads"
	"github.com/wolfman30/aika-health/pkg/logging"
)

// BuildPhotoStore returns an S3 store when PHOTO_BUCKET is set, otherwise a
// local directory store under UPLOAD_DIR.
func BuildPhotoStore(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (uploads.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	if bucket := strings.TrimSpace(cfg.PhotoBucket); bucket != "" {
		if awsCfg == nil {
			return nil, fmt.Errorf("bootstrap: aws config required for bucket %q", bucket)
		}
		client := s3.NewFromConfig(*awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		logger.Info("photo uploads stored in s3", "bucket", bucket)
		return uploads.NewS3Store(client, bucket, logger.Logger), nil
	}

	store, err := uploads.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	logger.Info("photo uploads stored on disk", "dir", cfg.UploadDir)
	return store, nil
}
