package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/data/repos/strategy"
	"github.com/veridian-legal/discovery-backend/internal/pkg/dbctx"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

const noResponsePlaceholder = "[No response selected.]"

// AssemblyResult is the on-demand response document. It is never persisted;
// upstream selections are the source of truth and the text is always
// reproducible from them.
type AssemblyResult struct {
	Text     string `json:"text"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
	Ready    bool   `json:"ready"`
}

// AssemblyService renders the final response text. Assembly never fails on
// unresolved requests; readiness gates only the finalize action.
type AssemblyService interface {
	Assemble(ctx context.Context, caseID uuid.UUID) (*AssemblyResult, error)
}

type assemblyService struct {
	log           *logger.Logger
	db            *gorm.DB
	objectionRepo strategy.ObjectionSetRepo
}

func NewAssemblyService(log *logger.Logger, db *gorm.DB, objectionRepo strategy.ObjectionSetRepo) AssemblyService {
	return &assemblyService{
		log:           log.With("service", "AssemblyService"),
		db:            db,
		objectionRepo: objectionRepo,
	}
}

func (s *assemblyService) Assemble(ctx context.Context, caseID uuid.UUID) (*AssemblyResult, error) {
	var sets []*types.ObjectionSet
	err := runInTx(s.db, ctx, func(dbc dbctx.Context) error {
		var err error
		sets, err = s.objectionRepo.ListByCase(dbc, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, NewValidationError("no responses to assemble")
	}
	return RenderResponses(sets), nil
}

// RenderResponses is the pure assembly step: identical selections always
// produce identical text, in original request order.
func RenderResponses(sets []*types.ObjectionSet) *AssemblyResult {
	ordered := make([]*types.ObjectionSet, len(sets))
	copy(ordered, sets)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].RequestIndex < ordered[j].RequestIndex
	})

	var b strings.Builder
	resolved := 0
	for i, set := range ordered {
		if i > 0 {
			b.WriteString("\n\n")
		}
		n := set.RequestIndex + 1
		fmt.Fprintf(&b, "REQUEST NO. %d:\n%s\n\n", n, set.RequestText)
		fmt.Fprintf(&b, "RESPONSE TO REQUEST NO. %d:\n", n)
		if set.Resolved() {
			resolved++
			if set.UseDirectAnswer {
				b.WriteString(*set.DirectAnswer)
			} else {
				b.WriteString(*set.Option(*set.SelectedOption))
			}
		} else {
			b.WriteString(noResponsePlaceholder)
		}
	}

	return &AssemblyResult{
		Text:     b.String(),
		Total:    len(ordered),
		Resolved: resolved,
		Ready:    resolved == len(ordered),
	}
}
