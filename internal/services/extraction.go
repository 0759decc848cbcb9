package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/veridian-legal/discovery-backend/internal/clients/gcp"
	"github.com/veridian-legal/discovery-backend/internal/clients/openai"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/services/prompts"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

// ExtractedDocument is the structured result of running one uploaded
// discovery file through OCR plus structured extraction. Fields the document
// does not state stay zero; extraction never fabricates values.
type ExtractedDocument struct {
	DocumentType     string
	PropoundingParty string
	RespondingParty  string
	CaseNumber       string
	SetNumber        string
	ServiceDate      *time.Time
	ResponseDeadline *time.Time
	Questions        []types.DiscoveryQuestion
}

type ExtractionService interface {
	Extract(ctx context.Context, category string, data []byte, mimeType string) (*ExtractedDocument, error)
}

type extractionService struct {
	log *logger.Logger
	doc gcp.DocumentService
	ai  openai.Client
}

func NewExtractionService(log *logger.Logger, doc gcp.DocumentService, ai openai.Client) ExtractionService {
	return &extractionService{
		log: log.With("service", "ExtractionService"),
		doc: doc,
		ai:  ai,
	}
}

func (s *extractionService) Extract(ctx context.Context, category string, data []byte, mimeType string) (*ExtractedDocument, error) {
	if len(data) == 0 {
		return nil, &ExtractionError{Category: category, Cause: fmt.Errorf("empty file")}
	}
	if !types.ValidCategory(category) {
		return nil, &ExtractionError{Category: category, Cause: fmt.Errorf("unknown category")}
	}

	text, err := s.doc.ProcessBytes(ctx, data, mimeType)
	if err != nil {
		return nil, &ExtractionError{Category: category, Cause: fmt.Errorf("ocr: %w", err)}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Category: category, Cause: fmt.Errorf("document has no text layer")}
	}

	system, user := prompts.ExtractionPrompt(category, text)
	obj, err := s.ai.GenerateJSON(ctx, system, user, "discovery_extraction", prompts.ExtractionSchema())
	if err != nil {
		return nil, &ExtractionError{Category: category, Cause: fmt.Errorf("structured extraction: %w", err)}
	}

	out, err := decodeExtraction(obj)
	if err != nil {
		return nil, &ExtractionError{Category: category, Cause: err}
	}
	if len(out.Questions) == 0 {
		return nil, &ExtractionError{Category: category, Cause: fmt.Errorf("no requests found in document")}
	}

	s.log.Info("extraction complete",
		"category", category,
		"questions", len(out.Questions),
		"case_number", out.CaseNumber)
	return out, nil
}

func decodeExtraction(obj map[string]any) (*ExtractedDocument, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("re-encode extraction output: %w", err)
	}
	var payload struct {
		DocumentType     string `json:"document_type"`
		PropoundingParty string `json:"propounding_party"`
		RespondingParty  string `json:"responding_party"`
		CaseNumber       string `json:"case_number"`
		SetNumber        string `json:"set_number"`
		ServiceDate      string `json:"service_date"`
		ResponseDeadline string `json:"response_deadline"`
		Questions        []struct {
			Number int    `json:"number"`
			Text   string `json:"text"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode extraction output: %w", err)
	}

	out := &ExtractedDocument{
		DocumentType:     strings.TrimSpace(payload.DocumentType),
		PropoundingParty: strings.TrimSpace(payload.PropoundingParty),
		RespondingParty:  strings.TrimSpace(payload.RespondingParty),
		CaseNumber:       strings.TrimSpace(payload.CaseNumber),
		SetNumber:        strings.TrimSpace(payload.SetNumber),
		ServiceDate:      parseExtractedDate(payload.ServiceDate),
		ResponseDeadline: parseExtractedDate(payload.ResponseDeadline),
	}
	for _, q := range payload.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		out.Questions = append(out.Questions, types.DiscoveryQuestion{Number: q.Number, Text: text})
	}
	return out, nil
}

func parseExtractedDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "01/02/2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
