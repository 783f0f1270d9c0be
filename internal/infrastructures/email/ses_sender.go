package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

type Sender interface {
	SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error
}

// SESV2Sender sends mail through AWS SES v2. Credentials come from the default
// AWS chain (env, shared config, instance role).
type SESV2Sender struct {
	log       *zap.Logger
	client    *sesv2.Client
	fromEmail string
}

func NewSESV2Sender(ctx context.Context, log *zap.Logger, region, fromEmail string) (*SESV2Sender, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("email sender address is empty")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESV2Sender{
		log:       log,
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
	}, nil
}

func (s *SESV2Sender) SendEmail(ctx context.Context, to, subject, plainTextContent, htmlContent string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(plainTextContent),
						Charset: aws.String("UTF-8"),
					},
					Html: &types.Content{
						Data:    aws.String(htmlContent),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		s.log.Warn("failed to send email via ses", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("ses send email: %w", err)
	}

	s.log.Info("email sent", zap.String("to", to))
	return nil
}
