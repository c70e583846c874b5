package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"golang.org/x/time/rate"
)

// Sender delivers approved report emails through the Resend API. Calls are
// rate limited so a big monthly batch stays inside the provider's quota.
type Sender struct {
	client  *resend.Client
	limiter *rate.Limiter
	from    string
	logger  *slog.Logger
}

// BatchResult summarizes a batch send. A single rejected message never
// aborts the batch; its error is recorded and the loop moves on.
type BatchResult struct {
	Sent   int
	Failed int
	Errors []string
}

// NewSender builds a sender. perSecond caps outgoing API calls; values
// below 1 fall back to 1.
func NewSender(apiKey, from string, perSecond int, logger *slog.Logger) *Sender {
	if perSecond < 1 {
		perSecond = 1
	}
	return &Sender{
		client:  resend.NewClient(apiKey),
		limiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		from:    from,
		logger:  logger,
	}
}

// Send delivers one email and returns the provider message id.
func (s *Sender) Send(ctx context.Context, msg *Email) (string, error) {
	if msg.RecipientEmail == "" {
		return "", fmt.Errorf("no recipient address for %q", msg.Subject)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.RecipientEmail},
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		Text:    msg.TextBody,
	})
	if err != nil {
		return "", fmt.Errorf("send %q to %s: %w", msg.Subject, msg.RecipientEmail, err)
	}

	s.logger.Info("email sent",
		slog.String("to", msg.RecipientEmail),
		slog.String("subject", msg.Subject),
		slog.String("id", sent.Id),
	)
	return sent.Id, nil
}

// SendBatch delivers a set of approved emails, collecting per-message
// failures instead of stopping.
func (s *Sender) SendBatch(ctx context.Context, msgs []*Email) *BatchResult {
	result := &BatchResult{}
	for _, msg := range msgs {
		if _, err := s.Send(ctx, msg); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			s.logger.Error("batch send failure", slog.Any("error", err))
			continue
		}
		result.Sent++
	}
	s.logger.Info("batch send complete",
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed),
	)
	return result
}
