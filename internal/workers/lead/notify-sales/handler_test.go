package notifysales

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiox-platform/internal/common/config"
	"raiox-platform/internal/common/logger"
)

type mockEmailSender struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, input)
	return &ses.SendEmailOutput{}, nil
}

type mockSMSPublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSMSPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, input)
	return &sns.PublishOutput{}, nil
}

func testNotifications() config.NotificationConfig {
	var n config.NotificationConfig
	n.Email.Enabled = true
	n.Email.FromEmail = "noreply@example.com"
	n.Email.SalesTeam = []string{"sales@example.com"}
	n.SMS.Enabled = true
	n.SMS.Recipients = []string{"+5511999990000", "+5511888880000"}
	return n
}

func setupHandler(t *testing.T, n config.NotificationConfig) (*Handler, *mockEmailSender, *mockSMSPublisher) {
	email := &mockEmailSender{}
	sms := &mockSMSPublisher{}
	h := NewHandler(LoadConfig(n), email, sms, logger.NewTestLogger(t))
	return h, email, sms
}

func hotLead() *Input {
	return &Input{
		LeadID:  "lead-123",
		Name:    "Maria Silva",
		Email:   "maria@example.com",
		Variant: "immigration",
		Score:   82,
		Tier:    "hot",
	}
}

func TestExecute_HotLeadUsesBothChannels(t *testing.T) {
	h, email, sms := setupHandler(t, testNotifications())

	output, err := h.Execute(context.Background(), hotLead())
	require.NoError(t, err)

	assert.True(t, output.Notified)
	assert.Equal(t, []string{"email", "sms"}, output.Channels)
	require.Len(t, email.inputs, 1)
	assert.Equal(t, []string{"sales@example.com"}, email.inputs[0].Destination.ToAddresses)
	assert.Len(t, sms.inputs, 2, "one publish per recipient")
}

func TestExecute_WarmLeadSMSOnly(t *testing.T) {
	h, email, sms := setupHandler(t, testNotifications())

	input := hotLead()
	input.Tier = "warm"
	input.Score = 55

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []string{"sms"}, output.Channels)
	assert.Empty(t, email.inputs)
	assert.NotEmpty(t, sms.inputs)
}

func TestExecute_WarmLeadSkippedWhenHotOnly(t *testing.T) {
	n := testNotifications()
	n.SMS.HotLeadsOnly = true
	h, _, sms := setupHandler(t, n)

	input := hotLead()
	input.Tier = "warm"

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, output.Notified)
	assert.Empty(t, sms.inputs)
}

func TestExecute_ColdLeadSkipped(t *testing.T) {
	h, email, sms := setupHandler(t, testNotifications())

	input := hotLead()
	input.Tier = "cold"
	input.Score = 20

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.False(t, output.Notified)
	assert.Empty(t, output.Channels)
	assert.Empty(t, email.inputs)
	assert.Empty(t, sms.inputs)
}

func TestExecute_DisabledChannelsSkipped(t *testing.T) {
	n := testNotifications()
	n.Email.Enabled = false
	n.SMS.Enabled = false
	h, _, _ := setupHandler(t, n)

	output, err := h.Execute(context.Background(), hotLead())
	require.NoError(t, err)
	assert.False(t, output.Notified)
}

func TestExecute_EmailFailurePropagates(t *testing.T) {
	h, email, _ := setupHandler(t, testNotifications())
	email.err = assert.AnError

	_, err := h.Execute(context.Background(), hotLead())
	assert.Error(t, err)
}

func TestExecute_MissingLeadID(t *testing.T) {
	h, _, _ := setupHandler(t, testNotifications())

	input := hotLead()
	input.LeadID = ""
	_, err := h.Execute(context.Background(), input)
	assert.Error(t, err)
}
