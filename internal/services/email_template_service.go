package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/models"
)

// RequestInformationTemplate is the template used to forward contact form submissions.
const RequestInformationTemplate = "request_information"

// Default email templates used as fallback when not found in database
var defaultEmailTemplates = map[string]models.EmailTemplate{
	RequestInformationTemplate: {
		TemplateID: RequestInformationTemplate,
		Locale:     "en-US",
		Subject:    "Information request for listing {{.listing_id}}",
		Body: `{{.name}} <{{.email}}> asked about listing {{.listing_id}}{{if .listing_title}} ({{.listing_title}}){{end}}.
{{if .phone}}
Phone: {{.phone}}
{{end}}
{{.message}}
`,
	},
}

// RenderedEmail is a template executed against its data.
type RenderedEmail struct {
	Subject string
	Body    string
}

// IEmailTemplateService defines the interface for email template operations.
type IEmailTemplateService interface {
	GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error)
	Render(ctx context.Context, templateID, locale string, data map[string]string) (*RenderedEmail, error)
}

// EmailTemplateService handles operations related to email templates
type EmailTemplateService struct {
	db *mongo.Database
}

// NewEmailTemplateService creates a new instance of EmailTemplateService
func NewEmailTemplateService(database *mongo.Database) *EmailTemplateService {
	return &EmailTemplateService{db: database}
}

// GetTemplate retrieves an email template by ID and locale, falling back to the built-in defaults.
func (s *EmailTemplateService) GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error) {
	filter := bson.M{
		"template_id": templateID,
		"locale":      locale,
	}

	var tmpl models.EmailTemplate
	err := s.db.Collection(db.EmailTemplatesCollection).FindOne(ctx, filter).Decode(&tmpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return DefaultTemplate(templateID, locale)
		}
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}
	return &tmpl, nil
}

// Render loads the template and executes subject and body with data.
func (s *EmailTemplateService) Render(ctx context.Context, templateID, locale string, data map[string]string) (*RenderedEmail, error) {
	tmpl, err := s.GetTemplate(ctx, templateID, locale)
	if err != nil {
		return nil, err
	}
	return RenderTemplate(tmpl, data)
}

// DefaultTemplate returns the built-in template for templateID with the locale set to locale.
func DefaultTemplate(templateID, locale string) (*models.EmailTemplate, error) {
	tmpl, ok := defaultEmailTemplates[templateID]
	if !ok {
		return nil, fmt.Errorf("template not found: %s (locale: %s)", templateID, locale)
	}
	if locale != "" {
		tmpl.Locale = locale
	}
	return &tmpl, nil
}

// RenderTemplate executes subject and body of tmpl. Missing keys render empty.
func RenderTemplate(tmpl *models.EmailTemplate, data map[string]string) (*RenderedEmail, error) {
	subject, err := execute(tmpl.TemplateID+":subject", tmpl.Subject, data)
	if err != nil {
		return nil, err
	}
	body, err := execute(tmpl.TemplateID+":body", tmpl.Body, data)
	if err != nil {
		return nil, err
	}
	return &RenderedEmail{Subject: subject, Body: body}, nil
}

func execute(name, src string, data map[string]string) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
