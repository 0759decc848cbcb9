package db

import (
	"gorm.io/gorm"

	"github.com/veridian-legal/discovery-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Core case + client records
		&types.Client{},
		&types.Case{},

		// Discovery intake
		&types.DiscoveryDocument{},

		// Questionnaire flow
		&types.QuestionnaireQuestion{},
		&types.ClientQuestionnaire{},
		&types.QuestionResponse{},

		// Strategy + response generation
		&types.CaseNarrative{},
		&types.ObjectionSet{},

		// Workflow position
		&types.WorkflowState{},
	)
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
