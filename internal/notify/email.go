package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const acceptedContent = "Your application has been approved."

// EmailSender отправляет события во внешний email-сервис по HTTP
type EmailSender struct {
	baseURL string
	client  *http.Client
}

func NewEmailSender(baseURL string, timeout time.Duration) *EmailSender {
	return &EmailSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *EmailSender) Name() string {
	return "email"
}

type acceptedEmail struct {
	ApplicantEmail string `json:"applicant_email"`
	ApplicantName  string `json:"applicant_name"`
	ParentName     string `json:"parent_name"`
	PostTitle      string `json:"post_title"`
	PosterEmail    string `json:"poster_email"`
	PosterPhone    string `json:"poster_phone"`
	Content        string `json:"content"`
}

type paidEmail struct {
	ParentEmail string `json:"parent_email"`
	ParentName  string `json:"parent_name"`
	PostTitle   string `json:"post_title"`
}

func (s *EmailSender) Send(ctx context.Context, event Event) error {
	var (
		path    string
		payload interface{}
	)

	switch event.Kind {
	case KindApplicationAccepted:
		path = "/send-email"
		payload = acceptedEmail{
			ApplicantEmail: event.Recipient.Email,
			ApplicantName:  event.Recipient.Name,
			ParentName:     event.Context[CtxPosterName],
			PostTitle:      event.Context[CtxPostTitle],
			PosterEmail:    event.Context[CtxPosterEmail],
			PosterPhone:    event.Context[CtxPosterPhone],
			Content:        acceptedContent,
		}
	case KindApplicationPaid:
		path = "/send-parent-notify"
		payload = paidEmail{
			ParentEmail: event.Recipient.Email,
			ParentName:  event.Recipient.Name,
			PostTitle:   event.Context[CtxPostTitle],
		}
	default:
		return fmt.Errorf("unsupported event kind %q", event.Kind)
	}

	if event.Recipient.Email == "" {
		return fmt.Errorf("recipient %s has no email", event.Recipient.UserID)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post email: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("email service responded %d", resp.StatusCode)
	}

	return nil
}
