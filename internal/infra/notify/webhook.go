package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"propfirm_server/internal/domain"
	applogger "propfirm_server/internal/infra/logger"
)

// WebhookNotifier posts transition outcomes and breach events to a configured
// endpoint so the alerting collaborator can fan them out to users. Delivery is
// best-effort; the engine never blocks on it.
type WebhookNotifier struct {
	client *resty.Client
	url    string
}

func NewWebhookNotifier(url string, opts ...func(*resty.Client)) (*WebhookNotifier, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("webhook url is required")
	}

	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2)

	for _, opt := range opts {
		opt(client)
	}

	return &WebhookNotifier{client: client, url: url}, nil
}

type transitionPayload struct {
	Event         string `json:"event"`
	Action        string `json:"action"`
	AccountID     string `json:"accountId"`
	AccountStatus string `json:"accountStatus"`
	PhaseID       string `json:"phaseId,omitempty"`
	PhaseType     string `json:"phaseType,omitempty"`
	OccurredAt    string `json:"occurredAt"`
}

type breachPayload struct {
	Event        string `json:"event"`
	PhaseID      string `json:"phaseId"`
	BreachType   string `json:"breachType"`
	BreachAmount string `json:"breachAmount"`
	Equity       string `json:"equity"`
	OccurredAt   string `json:"occurredAt"`
}

func (n *WebhookNotifier) TransitionCompleted(ctx context.Context, result domain.TransitionResult) error {
	payload := transitionPayload{
		Event:         "phase_transition",
		Action:        string(result.Action),
		AccountID:     result.AccountID,
		AccountStatus: string(result.AccountStatus),
		OccurredAt:    result.OccurredAt.Format(time.RFC3339),
	}
	if result.ActivePhase != nil {
		payload.PhaseID = result.ActivePhase.ID.String()
		payload.PhaseType = string(result.ActivePhase.Type)
	} else if result.EndedPhase != nil {
		payload.PhaseID = result.EndedPhase.ID.String()
		payload.PhaseType = string(result.EndedPhase.Type)
	}
	return n.post(ctx, payload)
}

func (n *WebhookNotifier) BreachDetected(ctx context.Context, breach domain.BreachRecord) error {
	return n.post(ctx, breachPayload{
		Event:        "drawdown_breach",
		PhaseID:      breach.PhaseID.String(),
		BreachType:   string(breach.Type),
		BreachAmount: breach.BreachAmount.StringFixed(2),
		Equity:       breach.EquityAtTime.StringFixed(2),
		OccurredAt:   breach.OccurredAt.Format(time.RFC3339),
	})
}

func (n *WebhookNotifier) post(ctx context.Context, payload any) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notification endpoint returned %s", resp.Status())
	}
	return nil
}

// LogNotifier is the fallback emitter when no webhook is configured: outcomes
// land in the structured log only.
type LogNotifier struct{}

func (LogNotifier) TransitionCompleted(_ context.Context, result domain.TransitionResult) error {
	log := applogger.For("notify")
	log.Info().
		Str("action", string(result.Action)).
		Str("account_id", result.AccountID).
		Str("account_status", string(result.AccountStatus)).
		Msg("phase transition")
	return nil
}

func (LogNotifier) BreachDetected(_ context.Context, breach domain.BreachRecord) error {
	log := applogger.For("notify")
	log.Warn().
		Str("phase_id", breach.PhaseID.String()).
		Str("breach_type", string(breach.Type)).
		Str("breach_amount", breach.BreachAmount.StringFixed(2)).
		Msg("drawdown breach")
	return nil
}
