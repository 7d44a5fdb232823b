package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockEmailTTL is how long a mock email stays readable in Redis.
const MockEmailTTL = 5 * time.Minute

// MockKey returns the Redis key a RedisSender stores an email under.
func MockKey(to, templateID string) string {
	return fmt.Sprintf("mockemail:%s:%s", strings.ToLower(to), templateID)
}

// RedisSender stores emails in Redis instead of sending them. Used with MOCK_SERVICES.
type RedisSender struct {
	client *redis.Client
	from   string
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, from string) *RedisSender {
	return &RedisSender{client: client, from: from}
}

// Send stores the email as JSON under MockKey for the first recipient.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	templateID, body := "unknown", string(rawMessage)
	if msg, err := mail.ReadMessage(bytes.NewReader(rawMessage)); err == nil {
		if id := msg.Header.Get(TemplateHeader); id != "" {
			templateID = id
		}
		if b, err := io.ReadAll(msg.Body); err == nil {
			body = string(b)
		}
	}

	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}

	jsonData, err := json.Marshal(map[string]interface{}{
		"to":          strings.Join(to, ", "),
		"from":        s.from,
		"subject":     subject,
		"body":        body,
		"template_id": templateID,
		"sent_at":     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := MockKey(primaryTo, templateID)
	if err := s.client.Set(ctx, key, jsonData, MockEmailTTL).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (To: %s, Subject: %s)", key, strings.Join(to, ", "), subject)
	return nil
}
