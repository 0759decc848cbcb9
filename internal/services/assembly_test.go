package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/veridian-legal/discovery-backend/internal/types"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestRenderResponses(t *testing.T) {
	caseID := uuid.New()

	cases := []struct {
		name         string
		sets         []*types.ObjectionSet
		wantResolved int
		wantReady    bool
		wantContains []string
	}{
		{
			name: "selected objection renders option text",
			sets: []*types.ObjectionSet{
				{
					CaseID:          caseID,
					RequestIndex:    0,
					RequestText:     "Admit that the light was red.",
					OptionVagueness: strPtr("Objection. The request is vague."),
					SelectedOption:  intPtr(0),
				},
			},
			wantResolved: 1,
			wantReady:    true,
			wantContains: []string{
				"REQUEST NO. 1:\nAdmit that the light was red.",
				"RESPONSE TO REQUEST NO. 1:\nObjection. The request is vague.",
			},
		},
		{
			name: "direct answer wins over a lingering option selection",
			sets: []*types.ObjectionSet{
				{
					CaseID:          caseID,
					RequestIndex:    0,
					RequestText:     "State your name.",
					OptionVagueness: strPtr("Objection."),
					SelectedOption:  intPtr(0),
					DirectAnswer:    strPtr("Responding party's name is Jordan Smith."),
					UseDirectAnswer: true,
				},
			},
			wantResolved: 1,
			wantReady:    true,
			wantContains: []string{"RESPONSE TO REQUEST NO. 1:\nResponding party's name is Jordan Smith."},
		},
		{
			name: "unresolved request gets the placeholder and blocks readiness",
			sets: []*types.ObjectionSet{
				{
					CaseID:         caseID,
					RequestIndex:   0,
					RequestText:    "Request one.",
					OptionExpert:   strPtr("Objection. Calls for expert opinion."),
					SelectedOption: intPtr(2),
				},
				{
					CaseID:       caseID,
					RequestIndex: 1,
					RequestText:  "Request two.",
				},
			},
			wantResolved: 1,
			wantReady:    false,
			wantContains: []string{"RESPONSE TO REQUEST NO. 2:\n[No response selected.]"},
		},
		{
			name: "selection pointing at an empty slot is unresolved",
			sets: []*types.ObjectionSet{
				{
					CaseID:         caseID,
					RequestIndex:   0,
					RequestText:    "Request one.",
					SelectedOption: intPtr(1),
				},
			},
			wantResolved: 0,
			wantReady:    false,
			wantContains: []string{"[No response selected.]"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RenderResponses(tc.sets)
			if got.Total != len(tc.sets) {
				t.Fatalf("total = %d, want %d", got.Total, len(tc.sets))
			}
			if got.Resolved != tc.wantResolved {
				t.Fatalf("resolved = %d, want %d", got.Resolved, tc.wantResolved)
			}
			if got.Ready != tc.wantReady {
				t.Fatalf("ready = %v, want %v", got.Ready, tc.wantReady)
			}
			for _, want := range tc.wantContains {
				if !strings.Contains(got.Text, want) {
					t.Fatalf("text missing %q:\n%s", want, got.Text)
				}
			}
		})
	}
}

func TestRenderResponsesOrdersByRequestIndex(t *testing.T) {
	sets := []*types.ObjectionSet{
		{RequestIndex: 2, RequestText: "third", DirectAnswer: strPtr("c"), UseDirectAnswer: true},
		{RequestIndex: 0, RequestText: "first", DirectAnswer: strPtr("a"), UseDirectAnswer: true},
		{RequestIndex: 1, RequestText: "second", DirectAnswer: strPtr("b"), UseDirectAnswer: true},
	}

	got := RenderResponses(sets)
	first := strings.Index(got.Text, "REQUEST NO. 1:")
	second := strings.Index(got.Text, "REQUEST NO. 2:")
	third := strings.Index(got.Text, "REQUEST NO. 3:")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing request headers:\n%s", got.Text)
	}
	if !(first < second && second < third) {
		t.Fatalf("requests out of order: %d %d %d", first, second, third)
	}

	// Input order must not matter.
	again := RenderResponses([]*types.ObjectionSet{sets[1], sets[2], sets[0]})
	if again.Text != got.Text {
		t.Fatal("identical selections produced different text")
	}
}

func TestAssembleRequiresObjectionSets(t *testing.T) {
	log := testLogger(t)
	svc := NewAssemblyService(log, nil, newFakeObjectionRepo())

	_, err := svc.Assemble(context.Background(), uuid.New())
	if !IsValidationError(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAssembleRendersPersistedSets(t *testing.T) {
	log := testLogger(t)
	repo := newFakeObjectionRepo()
	caseID := uuid.New()

	ctx := context.Background()
	if _, err := repo.Upsert(txless(ctx), &types.ObjectionSet{
		CaseID:          caseID,
		RequestIndex:    0,
		RequestText:     "Admit liability.",
		DirectAnswer:    strPtr("Denied."),
		UseDirectAnswer: true,
	}); err != nil {
		t.Fatalf("seed objection set: %v", err)
	}

	svc := NewAssemblyService(log, nil, repo)
	got, err := svc.Assemble(ctx, caseID)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !got.Ready || got.Resolved != 1 {
		t.Fatalf("ready = %v resolved = %d, want ready with 1 resolved", got.Ready, got.Resolved)
	}
	if !strings.Contains(got.Text, "Denied.") {
		t.Fatalf("text missing direct answer:\n%s", got.Text)
	}
}
