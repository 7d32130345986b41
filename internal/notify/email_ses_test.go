package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (s *stubSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.input = in
	if s.err != nil {
		return nil, s.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	api := &stubSES{}
	sender, err := NewSESSender(api, Sender{Email: "bot@agency.example"}, nil)
	require.NoError(t, err)

	err = sender.Send(context.Background(), EmailMessage{
		To:       []string{"sales@agency.example", "owner@agency.example"},
		Subject:  "New lead",
		Text:     "Name: Sam",
		HTML:     "<b>Sam</b>",
		ReplyTo:  "sam@example.com",
		Category: leadCategory,
	})
	require.NoError(t, err)

	in := api.input
	require.NotNil(t, in)
	assert.Equal(t, DefaultFromName+" <bot@agency.example>", aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"sales@agency.example", "owner@agency.example"}, in.Destination.ToAddresses)
	assert.Equal(t, []string{"sam@example.com"}, in.ReplyToAddresses)
	assert.Equal(t, "New lead", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Equal(t, "Name: Sam", aws.ToString(in.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<b>Sam</b>", aws.ToString(in.Content.Simple.Body.Html.Data))
	require.Len(t, in.EmailTags, 1)
	assert.Equal(t, leadCategory, aws.ToString(in.EmailTags[0].Value))
}

func TestSESSender_NoReplyToWithoutLeadEmail(t *testing.T) {
	api := &stubSES{}
	sender, err := NewSESSender(api, Sender{Email: "bot@agency.example"}, nil)
	require.NoError(t, err)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: []string{"sales@agency.example"}, Subject: "x", Text: "y"}))
	assert.Empty(t, api.input.ReplyToAddresses)
	assert.Empty(t, api.input.EmailTags)
	assert.Nil(t, api.input.Content.Simple.Body.Html)
}

func TestSESSender_SendError(t *testing.T) {
	sender, err := NewSESSender(&stubSES{err: errors.New("throttled")}, Sender{Email: "bot@agency.example"}, nil)
	require.NoError(t, err)
	assert.Error(t, sender.Send(context.Background(), EmailMessage{To: []string{"sales@agency.example"}, Subject: "x", Text: "y"}))
}

func TestNewSESSender_NilClient(t *testing.T) {
	_, err := NewSESSender(nil, Sender{}, nil)
	assert.Error(t, err)
}
