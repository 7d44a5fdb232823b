package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/config"
	"github.com/pythonegrove/codesamples/internal/email"
	"github.com/pythonegrove/codesamples/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeEmailDelivery = "email:deliver"
)

const (
	emailQueue    = "critical"
	emailMaxRetry = 5
	emailTimeout  = time.Minute
)

// EmailTaskPayload is the data of an email:deliver task.
type EmailTaskPayload struct {
	To         string            `json:"to"`
	ReplyTo    string            `json:"reply_to,omitempty"`
	TemplateID string            `json:"template_id"`
	Locale     string            `json:"locale,omitempty"`
	Data       map[string]string `json:"data"`
	RequestID  string            `json:"request_id,omitempty"` // Information request to flag as sent
}

// NewEmailTask builds an email:deliver task.
func NewEmailTask(payload EmailTaskPayload) (*asynq.Task, error) {
	if payload.To == "" || payload.TemplateID == "" {
		return nil, fmt.Errorf("email task needs a recipient and a template")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	return asynq.NewTask(TypeEmailDelivery, data,
		asynq.Queue(emailQueue),
		asynq.MaxRetry(emailMaxRetry),
		asynq.Timeout(emailTimeout),
	), nil
}

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// NewClient creates an asynq client sharing the connection settings of rdb.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// IEmailDispatcher hands emails to the background worker.
type IEmailDispatcher interface {
	DispatchEmail(ctx context.Context, payload EmailTaskPayload) error
}

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqDispatcher implements IEmailDispatcher with an asynq client.
type AsynqDispatcher struct {
	client Enqueuer
}

// NewAsynqDispatcher creates a dispatcher enqueuing on client.
func NewAsynqDispatcher(client Enqueuer) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

// DispatchEmail enqueues an email:deliver task.
func (d *AsynqDispatcher) DispatchEmail(ctx context.Context, payload EmailTaskPayload) error {
	task, err := NewEmailTask(payload)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	log.Printf("Enqueued email task %s (Template: %s)", info.ID, payload.TemplateID)
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg                  *config.Config
	emailSender          email.Sender
	emailTemplateService services.IEmailTemplateService
	enquiryService       services.IEnquiryService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	emailTemplateService services.IEmailTemplateService,
	enquiryService services.IEnquiryService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:                  cfg,
		emailSender:          emailSender,
		emailTemplateService: emailTemplateService,
		enquiryService:       enquiryService,
	}
}

// NewServer configures an asynq server and its handlers. The caller starts and stops it.
func NewServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				emailQueue: 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Error: %v", task.Type(), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	log.Println("Registered background task handlers.")
	return srv, mux
}

// --- Task Handlers ---

// HandleEmailDeliveryTask renders and sends an email, then flags its information request as sent.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task has no recipient: %w", asynq.SkipRetry)
	}

	if payload.RequestID != "" && p.enquiryService != nil {
		req, err := p.enquiryService.FindByID(ctx, payload.RequestID)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return fmt.Errorf("information request %s no longer exists: %w", payload.RequestID, asynq.SkipRetry)
		case err != nil:
			return fmt.Errorf("failed to load information request %s: %w", payload.RequestID, err)
		case req.Sent:
			log.Printf("Information request %s already sent, skipping redelivery", payload.RequestID)
			return nil
		}
	}

	locale := payload.Locale
	if locale == "" {
		locale = p.cfg.DefaultLocale
	}
	if locale == "" {
		locale = "en-US"
	}

	rendered, err := p.emailTemplateService.Render(ctx, payload.TemplateID, locale, payload.Data)
	if err != nil {
		log.Printf("Error rendering email template %s/%s: %v", payload.TemplateID, locale, err)
		return fmt.Errorf("email template %s unusable: %v: %w", payload.TemplateID, err, asynq.SkipRetry)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@example.com"
		log.Printf("Warning: SmtpFromAddress not configured, using fallback %s for email to %s", fromAddress, payload.To)
	}

	msg := email.Message{
		From:       fromAddress,
		To:         []string{payload.To},
		ReplyTo:    payload.ReplyTo,
		Subject:    rendered.Subject,
		Body:       rendered.Body,
		TemplateID: payload.TemplateID,
	}
	if err := p.emailSender.Send(ctx, msg.To, rendered.Subject, msg.Bytes()); err != nil {
		log.Printf("Email sending failed, will retry: %v", err)
		return err
	}

	if payload.RequestID != "" && p.enquiryService != nil {
		// The mail is out; a failed flag update must not trigger a resend.
		if err := p.enquiryService.MarkSent(ctx, payload.RequestID); err != nil {
			log.Printf("Failed to mark information request %s sent: %v", payload.RequestID, err)
		}
	}

	log.Printf("Email task processed successfully: Template=%s", payload.TemplateID)
	return nil
}
