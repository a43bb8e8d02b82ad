package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "chorequest/internal/config"
)

// EmailService sends transactional mail through SES. When no sender address
// is configured it runs disabled and logs what it would have sent, which is
// the mode used in development and tests.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	baseURL   string
	enabled   bool
}

func NewEmailService(cfg *appconfig.Config) (*EmailService, error) {
	svc := &EmailService{
		fromEmail: cfg.SESFromEmail,
		fromName:  cfg.SESFromName,
		baseURL:   cfg.AppBaseURL,
	}
	if cfg.SESFromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not set")
		return svc, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	svc.client = sesv2.NewFromConfig(awsCfg)
	svc.enabled = true
	return svc, nil
}

// SendInvitationEmail mails a family invitation with its accept link.
func (s *EmailService) SendInvitationEmail(ctx context.Context, toEmail, inviterName, familyName, code string) error {
	acceptURL := fmt.Sprintf("%s/invitations/%s", s.baseURL, code)
	subject := fmt.Sprintf("%s invited you to join %s", inviterName, familyName)
	textBody := fmt.Sprintf(
		"%s has invited you to help track chores for %s.\n\nAccept the invitation here: %s\n\nThis invitation expires in 7 days.",
		inviterName, familyName, acceptURL,
	)
	htmlBody := fmt.Sprintf(
		`<p>%s has invited you to help track chores for <strong>%s</strong>.</p>
<p><a href="%s">Accept the invitation</a></p>
<p>This invitation expires in 7 days.</p>`,
		inviterName, familyName, acceptURL,
	)

	if !s.enabled {
		log.Printf("Email disabled, skipping invitation to %s (code %s)", toEmail, code)
		return nil
	}

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(textBody)},
					Html: &types.Content{Data: aws.String(htmlBody)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	log.Printf("Sent invitation email to %s", toEmail)
	return nil
}
