package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/veridian-legal/discovery-backend/internal/clients/sendgrid"
	"github.com/veridian-legal/discovery-backend/internal/clients/twilio"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

func txless(ctx context.Context) dbctx.Context { return dbctx.Context{Ctx: ctx} }

func testLogger(tb interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

// ---- case + client repos ----

type fakeCaseRepo struct {
	mu    sync.Mutex
	cases map[uuid.UUID]*types.Case
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: map[uuid.UUID]*types.Case{}}
}

func (r *fakeCaseRepo) Create(_ dbctx.Context, c *types.Case) (*types.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.cases[c.ID] = &cp
	return c, nil
}

func (r *fakeCaseRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCaseRepo) List(_ dbctx.Context) ([]*types.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Case
	for _, c := range r.cases {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCaseRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "title":
			c.Title = v.(string)
		case "case_type":
			c.CaseType = v.(string)
		case "client_id":
			id := v.(uuid.UUID)
			c.ClientID = &id
		}
	}
	return nil
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[uuid.UUID]*types.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[uuid.UUID]*types.Client{}}
}

func (r *fakeClientRepo) Create(_ dbctx.Context, c *types.Client) (*types.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.clients[c.ID] = &cp
	return c, nil
}

func (r *fakeClientRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) List(_ dbctx.Context) ([]*types.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.Client
	for _, c := range r.clients {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// ---- discovery document repo ----

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]*types.DiscoveryDocument
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: map[uuid.UUID]*types.DiscoveryDocument{}}
}

func (r *fakeDocumentRepo) Upsert(_ dbctx.Context, doc *types.DiscoveryDocument) (*types.DiscoveryDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.CaseID == doc.CaseID && d.Category == doc.Category {
			doc.ID = d.ID
			cp := *doc
			r.docs[d.ID] = &cp
			return doc, nil
		}
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return doc, nil
}

func (r *fakeDocumentRepo) GetByCaseAndCategory(_ dbctx.Context, caseID uuid.UUID, category string) (*types.DiscoveryDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.CaseID == caseID && d.Category == category {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) ListByCase(_ dbctx.Context, caseID uuid.UUID) ([]*types.DiscoveryDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.DiscoveryDocument
	for _, d := range r.docs {
		if d.CaseID == caseID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (r *fakeDocumentRepo) DeleteByCaseAndCategory(_ dbctx.Context, caseID uuid.UUID, category string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.docs {
		if d.CaseID == caseID && d.Category == category {
			delete(r.docs, id)
		}
	}
	return nil
}

func (r *fakeDocumentRepo) CountByCase(_ dbctx.Context, caseID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.docs {
		if d.CaseID == caseID {
			n++
		}
	}
	return n, nil
}

func (r *fakeDocumentRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "document_type":
			d.DocumentType = v.(string)
		case "propounding_party":
			d.PropoundingParty = v.(string)
		case "responding_party":
			d.RespondingParty = v.(string)
		case "case_number":
			d.CaseNumber = v.(string)
		case "set_number":
			d.SetNumber = v.(string)
		case "service_date":
			d.ServiceDate, _ = v.(*time.Time)
		case "response_deadline":
			d.ResponseDeadline, _ = v.(*time.Time)
		case "questions":
			d.Questions = v.(datatypes.JSON)
		}
	}
	return nil
}

// ---- questionnaire question repo ----

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions map[uuid.UUID]*types.QuestionnaireQuestion
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[uuid.UUID]*types.QuestionnaireQuestion{}}
}

func (r *fakeQuestionRepo) CreateBatch(_ dbctx.Context, qs []*types.QuestionnaireQuestion) ([]*types.QuestionnaireQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range qs {
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		cp := *q
		r.questions[q.ID] = &cp
	}
	return qs, nil
}

func (r *fakeQuestionRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.QuestionnaireQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuestionRepo) ListByCase(_ dbctx.Context, caseID uuid.UUID) ([]*types.QuestionnaireQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.QuestionnaireQuestion
	for _, q := range r.questions {
		if q.CaseID == caseID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeQuestionRepo) CountByCase(_ dbctx.Context, caseID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, q := range r.questions {
		if q.CaseID == caseID {
			n++
		}
	}
	return n, nil
}

func (r *fakeQuestionRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.questions[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "current_text":
			q.CurrentText = v.(string)
		case "edited":
			q.Edited = v.(bool)
		}
	}
	return nil
}

func (r *fakeQuestionRepo) AttachQuestionnaire(_ dbctx.Context, caseID uuid.UUID, questionnaireID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.questions {
		if q.CaseID == caseID {
			id := questionnaireID
			q.QuestionnaireID = &id
		}
	}
	return nil
}

// ---- questionnaire repo ----

type fakeQuestionnaireRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.ClientQuestionnaire
}

func newFakeQuestionnaireRepo() *fakeQuestionnaireRepo {
	return &fakeQuestionnaireRepo{rows: map[uuid.UUID]*types.ClientQuestionnaire{}}
}

func (r *fakeQuestionnaireRepo) Create(_ dbctx.Context, q *types.ClientQuestionnaire) (*types.ClientQuestionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	cp := *q
	r.rows[q.ID] = &cp
	return q, nil
}

func (r *fakeQuestionnaireRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.ClientQuestionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuestionnaireRepo) GetByCase(_ dbctx.Context, caseID uuid.UUID) (*types.ClientQuestionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.rows {
		if q.CaseID == caseID {
			cp := *q
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeQuestionnaireRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.rows[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			q.Status = v.(string)
		case "completed_questions":
			switch n := v.(type) {
			case int:
				q.CompletedQuestions = n
			case int64:
				q.CompletedQuestions = int(n)
			}
		case "completed_at":
			t := v.(time.Time)
			q.CompletedAt = &t
		case "last_reminded_at":
			t := v.(time.Time)
			q.LastRemindedAt = &t
		}
	}
	return nil
}

func (r *fakeQuestionnaireRepo) ClaimCompletionNotify(_ dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.rows[id]
	if !ok || q.CompletionNotifiedAt != nil {
		return false, nil
	}
	q.CompletionNotifiedAt = &at
	return true, nil
}

func (r *fakeQuestionnaireRepo) ReleaseCompletionNotify(_ dbctx.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.rows[id]; ok {
		q.CompletionNotifiedAt = nil
	}
	return nil
}

func (r *fakeQuestionnaireRepo) ListDueForReminder(_ dbctx.Context, sentBefore, remindedBefore time.Time) ([]*types.ClientQuestionnaire, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.ClientQuestionnaire
	for _, q := range r.rows {
		if q.Status == types.QuestionnaireStatusCompleted {
			continue
		}
		if !q.SentAt.Before(sentBefore) {
			continue
		}
		if q.LastRemindedAt != nil && !q.LastRemindedAt.Before(remindedBefore) {
			continue
		}
		cp := *q
		out = append(out, &cp)
	}
	return out, nil
}

// ---- response repo ----

type fakeResponseRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.QuestionResponse
}

func newFakeResponseRepo() *fakeResponseRepo {
	return &fakeResponseRepo{rows: map[uuid.UUID]*types.QuestionResponse{}}
}

func (r *fakeResponseRepo) CreateBatch(_ dbctx.Context, rs []*types.QuestionResponse) ([]*types.QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range rs {
		if resp.ID == uuid.Nil {
			resp.ID = uuid.New()
		}
		cp := *resp
		r.rows[resp.ID] = &cp
	}
	return rs, nil
}

func (r *fakeResponseRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *resp
	return &cp, nil
}

func (r *fakeResponseRepo) GetByQuestion(_ dbctx.Context, questionnaireID uuid.UUID, questionID uuid.UUID) (*types.QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.rows {
		if resp.QuestionnaireID == questionnaireID && resp.QuestionID == questionID {
			cp := *resp
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeResponseRepo) ListByQuestionnaire(_ dbctx.Context, questionnaireID uuid.UUID) ([]*types.QuestionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.QuestionResponse
	for _, resp := range r.rows {
		if resp.QuestionnaireID == questionnaireID {
			cp := *resp
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeResponseRepo) CountAnswered(_ dbctx.Context, questionnaireID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, resp := range r.rows {
		if resp.QuestionnaireID == questionnaireID && resp.Answer != nil && *resp.Answer != "" {
			n++
		}
	}
	return n, nil
}

func (r *fakeResponseRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.rows[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "answer":
			a := v.(string)
			resp.Answer = &a
		case "answered_at":
			t := v.(time.Time)
			resp.AnsweredAt = &t
		}
	}
	return nil
}

func (r *fakeResponseRepo) UpdateQuestionText(_ dbctx.Context, questionnaireID uuid.UUID, questionID uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.rows {
		if resp.QuestionnaireID == questionnaireID && resp.QuestionID == questionID {
			resp.QuestionText = text
		}
	}
	return nil
}

// ---- strategy repos ----

type fakeNarrativeRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.CaseNarrative
}

func newFakeNarrativeRepo() *fakeNarrativeRepo {
	return &fakeNarrativeRepo{rows: map[uuid.UUID]*types.CaseNarrative{}}
}

func (r *fakeNarrativeRepo) ReplaceForCase(_ dbctx.Context, caseID uuid.UUID, batch []*types.CaseNarrative) ([]*types.CaseNarrative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.rows {
		if n.CaseID == caseID {
			delete(r.rows, id)
		}
	}
	for _, n := range batch {
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		cp := *n
		r.rows[n.ID] = &cp
	}
	return batch, nil
}

func (r *fakeNarrativeRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.CaseNarrative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNarrativeRepo) ListByCase(_ dbctx.Context, caseID uuid.UUID) ([]*types.CaseNarrative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.CaseNarrative
	for _, n := range r.rows {
		if n.CaseID == caseID {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeNarrativeRepo) GetSelected(_ dbctx.Context, caseID uuid.UUID) (*types.CaseNarrative, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.CaseID == caseID && n.Selected {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeNarrativeRepo) SelectOnly(_ dbctx.Context, caseID uuid.UUID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.CaseID == caseID {
			n.Selected = n.ID == id
		}
	}
	return nil
}

func (r *fakeNarrativeRepo) CountByCase(_ dbctx.Context, caseID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.rows {
		if n.CaseID == caseID {
			count++
		}
	}
	return count, nil
}

type fakeObjectionRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.ObjectionSet
}

func newFakeObjectionRepo() *fakeObjectionRepo {
	return &fakeObjectionRepo{rows: map[uuid.UUID]*types.ObjectionSet{}}
}

func (r *fakeObjectionRepo) Upsert(_ dbctx.Context, set *types.ObjectionSet) (*types.ObjectionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.CaseID == set.CaseID && s.RequestIndex == set.RequestIndex {
			set.ID = s.ID
			cp := *set
			r.rows[s.ID] = &cp
			return set, nil
		}
	}
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	cp := *set
	r.rows[set.ID] = &cp
	return set, nil
}

func (r *fakeObjectionRepo) GetByCaseAndRequest(_ dbctx.Context, caseID uuid.UUID, requestIndex int) (*types.ObjectionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.CaseID == caseID && s.RequestIndex == requestIndex {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeObjectionRepo) ListByCase(_ dbctx.Context, caseID uuid.UUID) ([]*types.ObjectionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*types.ObjectionSet
	for _, s := range r.rows {
		if s.CaseID == caseID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestIndex < out[j].RequestIndex })
	return out, nil
}

func (r *fakeObjectionRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "option_vagueness":
			t := v.(string)
			s.OptionVagueness = &t
		case "option_prematurity":
			t := v.(string)
			s.OptionPrematurity = &t
		case "option_expert":
			t := v.(string)
			s.OptionExpert = &t
		case "direct_answer":
			t := v.(string)
			s.DirectAnswer = &t
		case "use_direct_answer":
			s.UseDirectAnswer = v.(bool)
		case "selected_option":
			n := v.(int)
			s.SelectedOption = &n
		}
	}
	return nil
}

func (r *fakeObjectionRepo) DeleteByCase(_ dbctx.Context, caseID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.rows {
		if s.CaseID == caseID {
			delete(r.rows, id)
		}
	}
	return nil
}

// ---- workflow state repo ----

type fakeStateRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.WorkflowState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{rows: map[uuid.UUID]*types.WorkflowState{}}
}

func (r *fakeStateRepo) GetByCase(_ dbctx.Context, caseID uuid.UUID) (*types.WorkflowState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.CaseID == caseID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeStateRepo) Upsert(_ dbctx.Context, state *types.WorkflowState) (*types.WorkflowState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.CaseID == state.CaseID {
			state.ID = s.ID
			cp := *state
			r.rows[s.ID] = &cp
			return state, nil
		}
	}
	if state.ID == uuid.Nil {
		state.ID = uuid.New()
	}
	cp := *state
	r.rows[state.ID] = &cp
	return state, nil
}

func (r *fakeStateRepo) UpdateStage(_ dbctx.Context, caseID uuid.UUID, stage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.rows {
		if s.CaseID == caseID {
			s.Stage = stage
		}
	}
	return nil
}

// ---- external client fakes ----

// fakeAI scripts generation behavior per call. failOn substrings make the
// matching call fail.
type fakeAI struct {
	mu       sync.Mutex
	jsonOut  []map[string]any
	jsonIdx  int
	textFn   func(system, user string) (string, error)
	calls    []string
	jsonErr  error
	textErrs map[string]error
}

func (f *fakeAI) GenerateJSON(_ context.Context, system, user, schemaName string, _ map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "json:"+schemaName)
	if f.jsonErr != nil {
		return nil, f.jsonErr
	}
	if f.jsonIdx >= len(f.jsonOut) {
		return nil, errors.New("no scripted output")
	}
	out := f.jsonOut[f.jsonIdx]
	f.jsonIdx++
	return out, nil
}

func (f *fakeAI) GenerateText(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	textFn := f.textFn
	for sub, err := range f.textErrs {
		if strings.Contains(user, sub) {
			f.calls = append(f.calls, "text:fail")
			f.mu.Unlock()
			return "", err
		}
	}
	f.calls = append(f.calls, "text")
	f.mu.Unlock()
	if textFn != nil {
		return textFn(system, user)
	}
	return "generated", nil
}

type fakeNotifier struct {
	mu           sync.Mutex
	sent         int
	reminders    int
	completed    int
	reminderErr  error
	completedErr error
}

func (n *fakeNotifier) QuestionnaireSent(_ context.Context, _ *types.Client, _ *types.Case, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent++
	return nil
}

func (n *fakeNotifier) QuestionnaireReminder(_ context.Context, _ *types.Client, _ *types.Case, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.reminderErr != nil {
		return n.reminderErr
	}
	n.reminders++
	return nil
}

func (n *fakeNotifier) QuestionnaireCompleted(_ context.Context, _ *types.Client, _ *types.Case) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.completedErr != nil {
		return n.completedErr
	}
	n.completed++
	return nil
}

func (n *fakeNotifier) counts() (sent, reminders, completed int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent, n.reminders, n.completed
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}}
}

func (b *fakeBucket) UploadFile(_ context.Context, key string, file io.Reader, _ string) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *fakeBucket) DownloadFile(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (b *fakeBucket) CopyObject(_ context.Context, srcKey, dstKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[srcKey]
	if !ok {
		return fmt.Errorf("object %s not found", srcKey)
	}
	b.objects[dstKey] = data
	return nil
}

func (b *fakeBucket) DeleteFile(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *fakeBucket) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for k := range b.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type fakeDocAI struct {
	text string
	err  error
}

func (d *fakeDocAI) ProcessBytes(_ context.Context, _ []byte, _ string) (string, error) {
	return d.text, d.err
}

func (d *fakeDocAI) Close() error { return nil }

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeSMS) SendSMS(_ context.Context, to string, body string) (*twilio.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, to+": "+body)
	return &twilio.Message{}, nil
}

func (s *fakeSMS) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeMail struct {
	mu   sync.Mutex
	sent []sendgrid.SendEmailRequest
	err  error
}

func (m *fakeMail) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, req)
	return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

func (m *fakeMail) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}
