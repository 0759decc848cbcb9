package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veridian-legal/discovery-backend/internal/types"
)

func TestExtractDecodesStructuredOutput(t *testing.T) {
	log := testLogger(t)
	ai := &fakeAI{jsonOut: []map[string]any{{
		"document_type":     "Requests for Admission",
		"propounding_party": "Plaintiff Jane Doe",
		"responding_party":  "Defendant Acme Corp",
		"case_number":       "23STCV01234",
		"set_number":        "One",
		"service_date":      "2026-03-02",
		"response_deadline": "04/06/2026",
		"questions": []any{
			map[string]any{"number": 1, "text": "Admit the contract was signed."},
			map[string]any{"number": 2, "text": "Admit payment was not made."},
		},
	}}}
	svc := NewExtractionService(log, &fakeDocAI{text: "REQUESTS FOR ADMISSION..."}, ai)

	got, err := svc.Extract(context.Background(), types.CategoryRequestsForAdmission, []byte("%PDF"), "application/pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.DocumentType != "Requests for Admission" || got.CaseNumber != "23STCV01234" {
		t.Fatalf("header fields = %q / %q", got.DocumentType, got.CaseNumber)
	}
	if got.ServiceDate == nil || !got.ServiceDate.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("service date = %v", got.ServiceDate)
	}
	if got.ResponseDeadline == nil || !got.ResponseDeadline.Equal(time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("response deadline = %v", got.ResponseDeadline)
	}
	if len(got.Questions) != 2 || got.Questions[1].Number != 2 {
		t.Fatalf("questions = %+v", got.Questions)
	}
}

func TestExtractFailureModes(t *testing.T) {
	log := testLogger(t)

	goodOutput := map[string]any{
		"questions": []any{map[string]any{"number": 1, "text": "Admit it."}},
	}

	cases := []struct {
		name     string
		category string
		data     []byte
		doc      *fakeDocAI
		ai       *fakeAI
	}{
		{
			name:     "empty file",
			category: types.CategoryFormInterrogatories,
			data:     nil,
			doc:      &fakeDocAI{text: "text"},
			ai:       &fakeAI{jsonOut: []map[string]any{goodOutput}},
		},
		{
			name:     "unknown category",
			category: "deposition_notice",
			data:     []byte("x"),
			doc:      &fakeDocAI{text: "text"},
			ai:       &fakeAI{jsonOut: []map[string]any{goodOutput}},
		},
		{
			name:     "ocr failure",
			category: types.CategoryFormInterrogatories,
			data:     []byte("x"),
			doc:      &fakeDocAI{err: errors.New("processor unavailable")},
			ai:       &fakeAI{jsonOut: []map[string]any{goodOutput}},
		},
		{
			name:     "no text layer",
			category: types.CategoryFormInterrogatories,
			data:     []byte("x"),
			doc:      &fakeDocAI{text: "   "},
			ai:       &fakeAI{jsonOut: []map[string]any{goodOutput}},
		},
		{
			name:     "generation failure",
			category: types.CategoryFormInterrogatories,
			data:     []byte("x"),
			doc:      &fakeDocAI{text: "text"},
			ai:       &fakeAI{jsonErr: errors.New("rate limited")},
		},
		{
			name:     "zero extracted questions",
			category: types.CategoryFormInterrogatories,
			data:     []byte("x"),
			doc:      &fakeDocAI{text: "text"},
			ai:       &fakeAI{jsonOut: []map[string]any{{"questions": []any{}}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewExtractionService(log, tc.doc, tc.ai)
			_, err := svc.Extract(context.Background(), tc.category, tc.data, "application/pdf")
			var extErr *ExtractionError
			if !errors.As(err, &extErr) {
				t.Fatalf("err = %v, want *ExtractionError", err)
			}
			if extErr.Category != tc.category {
				t.Fatalf("category = %q, want %q", extErr.Category, tc.category)
			}
		})
	}
}

func TestExtractNeverFabricatesMissingFields(t *testing.T) {
	log := testLogger(t)
	ai := &fakeAI{jsonOut: []map[string]any{{
		"document_type":     "",
		"service_date":      "",
		"response_deadline": "sometime soon",
		"questions": []any{
			map[string]any{"number": 1, "text": "Admit it."},
			map[string]any{"number": 2, "text": "   "},
		},
	}}}
	svc := NewExtractionService(log, &fakeDocAI{text: "text"}, ai)

	got, err := svc.Extract(context.Background(), types.CategorySpecialInterrogatories, []byte("x"), "application/pdf")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got.DocumentType != "" || got.ServiceDate != nil {
		t.Fatalf("fabricated fields: type=%q date=%v", got.DocumentType, got.ServiceDate)
	}
	// Unparseable dates stay unset rather than guessed.
	if got.ResponseDeadline != nil {
		t.Fatalf("response deadline = %v, want nil", got.ResponseDeadline)
	}
	// Blank question text is dropped.
	if len(got.Questions) != 1 {
		t.Fatalf("questions = %+v", got.Questions)
	}
}

func TestParseExtractedDate(t *testing.T) {
	cases := []struct {
		in   string
		want *time.Time
	}{
		{"2026-01-15", timePtr(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))},
		{"01/15/2026", timePtr(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))},
		{"January 15, 2026", timePtr(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))},
		{"  2026-01-15  ", timePtr(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))},
		{"", nil},
		{"15th of January", nil},
	}
	for _, tc := range cases {
		got := parseExtractedDate(tc.in)
		if (got == nil) != (tc.want == nil) {
			t.Fatalf("parseExtractedDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if got != nil && !got.Equal(*tc.want) {
			t.Fatalf("parseExtractedDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }
