package bootstrap

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/aika-health/internal/config"
	"github.com/wolfman30/aika-health/internal/notify"
	"github.com/wolfman30/aika-health/pkg/logging"
)

// BuildEmailSender prefers SendGrid, then SES, and falls back to a logging stub.
func BuildEmailSender(cfg *appconfig.Config, awsCfg *aws.Config, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || strings.TrimSpace(cfg.EmailFrom) == "" {
		return notify.NewStubEmailSender(logger), "stub"
	}

	from := notify.From{Email: cfg.EmailFrom, Name: cfg.EmailFromName}
	if sender := notify.NewSendGridSender(cfg.SendGridAPIKey, from, logger); sender != nil {
		return sender, "sendgrid"
	}

	if cfg.SESEnabled && awsCfg != nil {
		client := sesv2.NewFromConfig(*awsCfg)
		return notify.NewSESSender(client, from, logger), "ses"
	}

	return notify.NewStubEmailSender(logger), "stub"
}
