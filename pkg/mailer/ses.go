// Package mailer sends ColisApp notification mail through Amazon SES v2.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

var ErrNoRecipient = errors.New("mail has no recipient")

// Message is a plain-text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer is implemented by every mail transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendEmailAPI is the subset of the SES v2 client we use.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends mail from a verified sender identity.
type SES struct {
	client SendEmailAPI
	from   string
}

// NewSES loads the default AWS credential chain for region.
func NewSES(ctx context.Context, region, from string) (*SES, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("mailer.NewSES: %w", err)
	}
	return &SES{client: sesv2.NewFromConfig(cfg), from: from}, nil
}

func NewSESWithClient(client SendEmailAPI, from string) *SES {
	return &SES{client: client, from: from}
}

func (s *SES) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("mailer.Send: %w", err)
	}
	return nil
}

// Nop drops every message. Used when MAIL_FROM is not configured.
type Nop struct{}

func (Nop) Send(context.Context, Message) error { return nil }
