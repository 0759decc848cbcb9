package gcp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/veridian-legal/discovery-backend/internal/pkg/ctxutil"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

// DocumentService runs Document AI OCR over an uploaded discovery file and
// returns the raw text layer. Structured understanding of that text is the
// extraction service's job, not this client's.
type DocumentService interface {
	ProcessBytes(ctx context.Context, data []byte, mimeType string) (string, error)
	Close() error
}

type documentService struct {
	log       *logger.Logger
	docClient *documentai.DocumentProcessorClient

	projectID    string
	location     string
	processorID  string
	processorVer string
}

func NewDocumentService(log *logger.Logger) (DocumentService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	slog := log.With("service", "gcp.Document")

	projectID := strings.TrimSpace(os.Getenv("GCP_PROJECT_ID"))
	processorID := strings.TrimSpace(os.Getenv("DOCUMENTAI_PROCESSOR_ID"))
	if projectID == "" || processorID == "" {
		return nil, fmt.Errorf("missing GCP_PROJECT_ID or DOCUMENTAI_PROCESSOR_ID")
	}

	location := strings.TrimSpace(os.Getenv("DOCUMENTAI_LOCATION"))
	if location == "" {
		location = "us"
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)

	docOpts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), docOpts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}

	slog.Info("Document AI initialized", "endpoint", endpoint)

	return &documentService{
		log:          slog,
		docClient:    c,
		projectID:    projectID,
		location:     location,
		processorID:  processorID,
		processorVer: strings.TrimSpace(os.Getenv("DOCUMENTAI_PROCESSOR_VERSION")),
	}, nil
}

func (s *documentService) ProcessBytes(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	if len(data) == 0 {
		return "", nil
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	req := &documentaipb.ProcessRequest{
		Name: s.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}

	resp, err := s.docClient.ProcessDocument(ctx, req)
	if err != nil {
		return "", fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	if resp == nil || resp.Document == nil {
		return "", nil
	}
	return resp.Document.GetText(), nil
}

func (s *documentService) Close() error {
	if s == nil || s.docClient == nil {
		return nil
	}
	return s.docClient.Close()
}

func (s *documentService) processorName() string {
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", s.projectID, s.location, s.processorID)
	if s.processorVer != "" {
		return base + "/processorVersions/" + s.processorVer
	}
	return base
}
