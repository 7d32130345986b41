package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/agency-chat/internal/config"
	"github.com/wolfman30/agency-chat/internal/leads"
	"github.com/wolfman30/agency-chat/internal/notify"
	"github.com/wolfman30/agency-chat/pkg/logging"
)

// BuildEmailSender selects the outbound email provider. Unknown or "stub"
// providers log instead of sending.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewStubEmailSender(logger), nil
	}

	from := notify.Sender{Email: cfg.NotifyFromEmail, Name: cfg.NotifyFromName}
	switch cfg.EmailProvider {
	case "sendgrid":
		sender, err := notify.NewSendGridSender(cfg.SendGridAPIKey, from, logger)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		return sender, nil
	case "ses":
		if loadAWS == nil {
			return nil, fmt.Errorf("bootstrap: ses requires an aws config loader")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		sender, err := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), from, logger)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		return sender, nil
	default:
		if cfg.EmailProvider != "" && cfg.EmailProvider != "stub" {
			logger.Warn("unknown email provider; using stub sender", "provider", cfg.EmailProvider)
		}
		return notify.NewStubEmailSender(logger), nil
	}
}

// BuildLeadNotifier returns the lead notifier, or nil when no inbox is configured.
func BuildLeadNotifier(sender notify.EmailSender, cfg *appconfig.Config, logger *logging.Logger) leads.Notifier {
	if sender == nil || cfg == nil || strings.TrimSpace(cfg.LeadNotifyEmail) == "" {
		return nil
	}
	return notify.NewLeadNotifier(sender, strings.Split(cfg.LeadNotifyEmail, ","), logger)
}
