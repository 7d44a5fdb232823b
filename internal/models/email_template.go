package models

// EmailTemplate defines the structure for email templates stored in the DB.
type EmailTemplate struct {
	TemplateID string `bson:"template_id" json:"template_id"` // e.g., "request_information"
	Locale     string `bson:"locale" json:"locale"`           // e.g., "en-US"
	Subject    string `bson:"subject" json:"subject"`         // text/template source
	Body       string `bson:"body" json:"body"`               // text/template source
}
