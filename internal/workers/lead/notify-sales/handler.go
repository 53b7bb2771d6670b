// internal/workers/lead/notify-sales/handler.go
package notifysales

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"raiox-platform/internal/common/aws"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/metrics"
)

const TaskType = "notify-sales"

type Handler struct {
	config *Config
	email  aws.EmailSender
	sms    aws.SMSPublisher
	logger logger.Logger
}

func NewHandler(config *Config, email aws.EmailSender, sms aws.SMSPublisher, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "NOTIFICATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute fans out per lead tier: hot leads page the sales team on both
// channels, warm leads get the SMS-only nudge, cold leads are skipped.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LeadID == "" {
		return nil, fmt.Errorf("leadId is required")
	}

	output := &Output{LeadID: input.LeadID, Channels: []string{}}

	switch input.Tier {
	case "hot":
		if h.emailEnabled() {
			if err := h.sendEmails(ctx, input); err != nil {
				return nil, fmt.Errorf("send email: %w", err)
			}
			output.Channels = append(output.Channels, "email")
		}
		if h.smsEnabled() {
			if err := h.sendSMS(ctx, input); err != nil {
				return nil, fmt.Errorf("send sms: %w", err)
			}
			output.Channels = append(output.Channels, "sms")
		}
	case "warm":
		if h.smsEnabled() && !h.config.Notifications.SMS.HotLeadsOnly {
			if err := h.sendSMS(ctx, input); err != nil {
				return nil, fmt.Errorf("send sms: %w", err)
			}
			output.Channels = append(output.Channels, "sms")
		}
	default:
		h.logger.Debug("cold lead, no notification", map[string]interface{}{"leadId": input.LeadID})
	}

	output.Notified = len(output.Channels) > 0
	h.logger.Info("sales notification done", map[string]interface{}{
		"leadId":   input.LeadID,
		"tier":     input.Tier,
		"channels": output.Channels,
	})
	return output, nil
}

func (h *Handler) emailEnabled() bool {
	n := h.config.Notifications.Email
	return n.Enabled && h.email != nil && len(n.SalesTeam) > 0
}

func (h *Handler) smsEnabled() bool {
	n := h.config.Notifications.SMS
	return n.Enabled && h.sms != nil && len(n.Recipients) > 0
}

func (h *Handler) sendEmails(ctx context.Context, input *Input) error {
	subject := fmt.Sprintf("[raiox] Lead %s — %s (%d/100)", input.Tier, input.Name, input.Score)
	body := fmt.Sprintf(
		"Novo lead %s no funil %s.\n\nNome: %s\nEmail: %s\nPontuação: %d/100\n",
		input.Tier, input.Variant, input.Name, input.Email, input.Score)

	_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: h.config.Notifications.Email.SalesTeam,
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
		Source: awssdk.String(h.config.Notifications.Email.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	message := fmt.Sprintf("raiox: lead %s %s, %d/100 (%s)", input.Tier, input.Name, input.Score, input.Email)

	for _, recipient := range h.config.Notifications.SMS.Recipients {
		_, err := h.sms.Publish(ctx, &sns.PublishInput{
			PhoneNumber: awssdk.String(recipient),
			Message:     awssdk.String(message),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
