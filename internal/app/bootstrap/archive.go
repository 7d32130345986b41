package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/wolfman30/agency-chat/internal/archive"
	"github.com/wolfman30/agency-chat/internal/chatbot"
	appconfig "github.com/wolfman30/agency-chat/internal/config"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// BuildArchivingTranscripts wraps the transcript store with the S3 archive
// when ARCHIVE_BUCKET is set.
func BuildArchivingTranscripts(ctx context.Context, store chatbot.TranscriptStore, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (chatbot.TranscriptStore, error) {
	if cfg == nil || cfg.ArchiveBucket == "" {
		return store, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if loadAWS == nil {
		return nil, fmt.Errorf("bootstrap: archive requires an aws config loader")
	}
	awsCfg, err := loadAWS(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.AWSEndpointOverride != ""
	})
	logger.Info("transcript archive enabled", "bucket", cfg.ArchiveBucket)
	return archive.NewArchivingStore(store, archive.NewStore(client, cfg.ArchiveBucket, logger), logger), nil
}
