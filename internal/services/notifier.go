package services

import (
	"context"
	"fmt"

	"github.com/veridian-legal/discovery-backend/internal/clients/sendgrid"
	"github.com/veridian-legal/discovery-backend/internal/clients/twilio"
	"github.com/veridian-legal/discovery-backend/internal/pkg/envutil"
	"github.com/veridian-legal/discovery-backend/internal/pkg/logger"
	"github.com/veridian-legal/discovery-backend/internal/types"
)

// NotificationService sends the engine's side notifications. Client-facing
// messages go over SMS; the firm's completion alert goes over email, with an
// optional SMS copy. Callers treat failures as warnings; the only caller that
// acts on a returned error is the completion path, which releases its
// notification claim so a later save can retry.
type NotificationService interface {
	QuestionnaireSent(ctx context.Context, client *types.Client, kase *types.Case, portalURL string) error
	QuestionnaireReminder(ctx context.Context, client *types.Client, kase *types.Case, portalURL string) error
	QuestionnaireCompleted(ctx context.Context, client *types.Client, kase *types.Case) error
}

type notificationService struct {
	log  *logger.Logger
	sms  twilio.Client
	mail sendgrid.Client

	fromEmail   string
	lawyerEmail string
	lawyerPhone string
}

func NewNotificationService(log *logger.Logger, sms twilio.Client, mail sendgrid.Client) NotificationService {
	return &notificationService{
		log:         log.With("service", "NotificationService"),
		sms:         sms,
		mail:        mail,
		fromEmail:   envutil.String("NOTIFY_FROM_EMAIL", "noreply@veridian.legal"),
		lawyerEmail: envutil.String("LAWYER_NOTIFY_EMAIL", ""),
		lawyerPhone: envutil.String("LAWYER_NOTIFY_PHONE", ""),
	}
}

func (s *notificationService) QuestionnaireSent(ctx context.Context, client *types.Client, kase *types.Case, portalURL string) error {
	if client == nil || client.Phone == "" {
		return fmt.Errorf("client has no phone number")
	}
	body := fmt.Sprintf(
		"Hi %s, your legal team needs your input on %s. Please answer your questionnaire here: %s",
		client.Name, kase.Title, portalURL,
	)
	if _, err := s.sms.SendSMS(ctx, client.Phone, body); err != nil {
		s.log.Warn("questionnaire-sent SMS failed", "case_id", kase.ID, "error", err)
		return err
	}
	return nil
}

func (s *notificationService) QuestionnaireReminder(ctx context.Context, client *types.Client, kase *types.Case, portalURL string) error {
	if client == nil || client.Phone == "" {
		return fmt.Errorf("client has no phone number")
	}
	body := fmt.Sprintf(
		"Hi %s, a reminder from your legal team: your questionnaire for %s is still waiting. %s",
		client.Name, kase.Title, portalURL,
	)
	if _, err := s.sms.SendSMS(ctx, client.Phone, body); err != nil {
		s.log.Warn("reminder SMS failed", "case_id", kase.ID, "error", err)
		return err
	}
	return nil
}

// QuestionnaireCompleted alerts the firm that the client finished. Email is
// the primary channel; the SMS copy is skipped unless a firm phone number is
// configured. Either channel succeeding counts as delivered.
func (s *notificationService) QuestionnaireCompleted(ctx context.Context, client *types.Client, kase *types.Case) error {
	clientName := "The client"
	if client != nil {
		clientName = client.Name
	}

	var delivered bool
	if s.lawyerEmail != "" {
		_, err := s.mail.Send(ctx, sendgrid.SendEmailRequest{
			From:    sendgrid.EmailAddress{Email: s.fromEmail, Name: "Discovery Workflow"},
			To:      []sendgrid.EmailAddress{{Email: s.lawyerEmail}},
			Subject: fmt.Sprintf("Questionnaire completed: %s", kase.Title),
			Text: fmt.Sprintf(
				"%s has completed the discovery questionnaire for %s (case no. %s). The responses are ready for strategy review.",
				clientName, kase.Title, kase.CaseNumber,
			),
		})
		if err != nil {
			s.log.Warn("completion email failed", "case_id", kase.ID, "error", err)
		} else {
			delivered = true
		}
	}
	if s.lawyerPhone != "" {
		body := fmt.Sprintf("%s completed the questionnaire for %s. Responses are ready for review.", clientName, kase.Title)
		if _, err := s.sms.SendSMS(ctx, s.lawyerPhone, body); err != nil {
			s.log.Warn("completion SMS failed", "case_id", kase.ID, "error", err)
		} else {
			delivered = true
		}
	}

	if !delivered {
		return fmt.Errorf("no completion notification delivered")
	}
	return nil
}
