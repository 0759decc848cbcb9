package app

import (
	"fmt"

	"github.com/veridian-legal/discovery-backend/internal/clients/gcp"
	"github.com/veridian-legal/discovery-backend/internal/clients/openai"
	"github.com/veridian-legal/discovery-backend/internal/clients/sendgrid"
	"github.com/veridian-legal/discovery-backend/internal/clients/twilio"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

type Clients struct {
	OpenAI   openai.Client
	Twilio   twilio.Client
	SendGrid sendgrid.Client
	Bucket   gcp.BucketService
	Document gcp.DocumentService
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("wiring external clients")

	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("openai client: %w", err)
	}
	sms, err := twilio.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("twilio client: %w", err)
	}
	mail, err := sendgrid.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("sendgrid client: %w", err)
	}
	bucket, err := gcp.NewBucketService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("bucket service: %w", err)
	}
	doc, err := gcp.NewDocumentService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("document service: %w", err)
	}

	return Clients{
		OpenAI:   ai,
		Twilio:   sms,
		SendGrid: mail,
		Bucket:   bucket,
		Document: doc,
	}, nil
}
