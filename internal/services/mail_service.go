package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// Mailer is the transactional email sink. Delivery is best-effort: callers
// log a returned error and carry on, they never fail the operation over it.
type Mailer interface {
	Send(to, subject, body string) error
	SendToAdmin(subject, body string) error
}

// MailService delivers mail through an HTTP transactional email API.
type MailService struct {
	apiURL  string
	apiKey  string
	from    string
	adminTo string
}

// NewMailService creates a new MailService.
func NewMailService(apiURL, apiKey, from, adminTo string) *MailService {
	return &MailService{
		apiURL:  apiURL,
		apiKey:  apiKey,
		from:    from,
		adminTo: adminTo,
	}
}

type mailMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send posts one message to the mail API.
func (s *MailService) Send(to, subject, body string) error {
	if s.apiURL == "" {
		log.Println("[MAIL] Mail API not configured, skipping send")
		return nil
	}

	msg := mailMessage{
		From:    s.from,
		To:      to,
		Subject: subject,
		Text:    body,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[MAIL] Failed to send message to %s: %v", to, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("[MAIL] Unexpected status sending to %s: %d", to, resp.StatusCode)
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	log.Printf("[MAIL] Sent %q to %s", subject, to)
	return nil
}

// SendToAdmin sends a message to the configured admin address.
func (s *MailService) SendToAdmin(subject, body string) error {
	if s.adminTo == "" {
		log.Println("[MAIL] Admin address not configured")
		return nil
	}
	return s.Send(s.adminTo, subject, body)
}
