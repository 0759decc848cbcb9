package app

import (
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/data/repos/cases"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/discovery"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/questionnaire"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/strategy"
	"github.com/veridian-legal/discovery-backend/internal/data/repos/workflow"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
)

type Repos struct {
	Case          cases.CaseRepo
	Client        cases.ClientRepo
	Document      discovery.DocumentRepo
	Question      questionnaire.QuestionRepo
	Questionnaire questionnaire.QuestionnaireRepo
	Response      questionnaire.ResponseRepo
	Narrative     strategy.NarrativeRepo
	ObjectionSet  strategy.ObjectionSetRepo
	WorkflowState workflow.StateRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("wiring repos")
	return Repos{
		Case:          cases.NewCaseRepo(db, log),
		Client:        cases.NewClientRepo(db, log),
		Document:      discovery.NewDocumentRepo(db, log),
		Question:      questionnaire.NewQuestionRepo(db, log),
		Questionnaire: questionnaire.NewQuestionnaireRepo(db, log),
		Response:      questionnaire.NewResponseRepo(db, log),
		Narrative:     strategy.NewNarrativeRepo(db, log),
		ObjectionSet:  strategy.NewObjectionSetRepo(db, log),
		WorkflowState: workflow.NewStateRepo(db, log),
	}
}
