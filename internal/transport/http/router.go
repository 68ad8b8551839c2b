package http

import (
	"context"
	"errors"
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"propfirm_server/internal/domain"
	"propfirm_server/internal/usecase"
)

type AccountService interface {
	CreateAccount(ctx context.Context, in usecase.CreateAccountInput) (domain.Account, domain.Phase, error)
	GetAccount(ctx context.Context, id uuid.UUID) (domain.Account, []domain.Phase, error)
	ListAccounts(ctx context.Context, limit int) ([]domain.Account, error)
	ListBreaches(ctx context.Context, phaseID uuid.UUID) ([]domain.BreachRecord, error)
}

type TransitionService interface {
	Transition(ctx context.Context, accountID uuid.UUID, req domain.TransitionRequest) (domain.TransitionResult, error)
}

type EvaluationService interface {
	RecordTrade(ctx context.Context, phaseID uuid.UUID, trade domain.Trade) (domain.TradeEvaluation, error)
	Drawdown(ctx context.Context, phaseID uuid.UUID, equityOverride *decimal.Decimal) (domain.DrawdownResult, error)
	Progress(ctx context.Context, phaseID uuid.UUID) (domain.ProgressResult, error)
	Metrics(ctx context.Context, phaseID uuid.UUID, limit int) (domain.RiskMetrics, error)
	PayoutEligibility(ctx context.Context, phaseID uuid.UUID) (domain.PayoutEligibility, error)
	Violations(ctx context.Context, phaseID uuid.UUID) (domain.ViolationReport, error)
}

type PayoutService interface {
	RequestPayout(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, notes string) (domain.Payout, error)
	CancelPayout(ctx context.Context, payoutID uuid.UUID) error
	ListPayouts(ctx context.Context, accountID uuid.UUID) ([]domain.Payout, error)
}

type Router struct {
	app         *fiber.App
	accounts    AccountService
	transitions TransitionService
	evaluation  EvaluationService
	payouts     PayoutService
}

func New(accounts AccountService, transitions TransitionService, evaluation EvaluationService, payouts PayoutService) *Router {
	app := fiber.New()

	r := &Router{
		app:         app,
		accounts:    accounts,
		transitions: transitions,
		evaluation:  evaluation,
		payouts:     payouts,
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Post("/accounts", r.createAccount)
	v1.Get("/accounts", r.listAccounts)
	v1.Get("/accounts/:account_id", r.getAccount)
	v1.Post("/accounts/:account_id/transitions", r.transitionPhase)
	v1.Post("/accounts/:account_id/payouts", r.requestPayout)
	v1.Get("/accounts/:account_id/payouts", r.listPayouts)
	v1.Delete("/payouts/:payout_id", r.cancelPayout)

	v1.Post("/phases/:phase_id/trades", r.recordTrade)
	v1.Get("/phases/:phase_id/drawdown", r.getDrawdown)
	v1.Get("/phases/:phase_id/progress", r.getProgress)
	v1.Get("/phases/:phase_id/metrics", r.getMetrics)
	v1.Get("/phases/:phase_id/payout-eligibility", r.getPayoutEligibility)
	v1.Get("/phases/:phase_id/breaches", r.listBreaches)
	v1.Get("/phases/:phase_id/violations", r.getViolations)

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return r
}

func (r *Router) App() *fiber.App {
	return r.app
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// mapError translates the engine's error taxonomy onto HTTP statuses.
// ConcurrencyConflict carries a retryable hint for the client layer.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case domain.IsValidation(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case domain.IsPrecondition(err):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := c.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

type PhaseLimitRequest struct {
	ProfitTargetPercent  decimal.Decimal `json:"profitTargetPercent"`
	DailyDrawdownPercent decimal.Decimal `json:"dailyDrawdownPercent"`
	MaxDrawdownPercent   decimal.Decimal `json:"maxDrawdownPercent"`
	MinTradingDays       int             `json:"minTradingDays"`
	MaxTradingDays       int             `json:"maxTradingDays"`
}

type CreateAccountRequest struct {
	UserID           string                       `json:"userId"`
	Name             string                       `json:"name"`
	StartingBalance  decimal.Decimal              `json:"startingBalance"`
	TrailingDrawdown bool                         `json:"trailingDrawdown"`
	Limits           map[string]PhaseLimitRequest `json:"limits"`
}

type TransitionRequestBody struct {
	Action      string `json:"action"`
	PhaseType   string `json:"phaseType,omitempty"`
	CarryEquity bool   `json:"carryEquity,omitempty"`
	Note        string `json:"note,omitempty"`
}

type TradeRequest struct {
	ExecutionID string          `json:"executionId"`
	Symbol      string          `json:"symbol"`
	Side        string          `json:"side"`
	Quantity    decimal.Decimal `json:"quantity"`
	EntryPrice  decimal.Decimal `json:"entryPrice"`
	ExitPrice   decimal.Decimal `json:"exitPrice"`
	EntryTime   time.Time       `json:"entryTime"`
	ExitTime    time.Time       `json:"exitTime"`
	PnL         decimal.Decimal `json:"pnl"`
	Commission  decimal.Decimal `json:"commission"`
	Fees        decimal.Decimal `json:"fees"`
}

type PayoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
}

// createAccount godoc
// @Summary Create an evaluation account with its first phase
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account configuration"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /accounts [post]
func (r *Router) createAccount(c *fiber.Ctx) error {
	var payload CreateAccountRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	limits := make(map[domain.PhaseType]domain.PhaseLimits, len(payload.Limits))
	for phaseType, l := range payload.Limits {
		t := domain.PhaseType(phaseType)
		if !t.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown phase type "+phaseType)
		}
		limits[t] = domain.PhaseLimits{
			ProfitTargetPercent:  l.ProfitTargetPercent,
			DailyDrawdownPercent: l.DailyDrawdownPercent,
			MaxDrawdownPercent:   l.MaxDrawdownPercent,
			MinTradingDays:       l.MinTradingDays,
			MaxTradingDays:       l.MaxTradingDays,
		}
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	account, phase, err := r.accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		UserID:           payload.UserID,
		Name:             payload.Name,
		StartingBalance:  payload.StartingBalance,
		Limits:           limits,
		TrailingDrawdown: payload.TrailingDrawdown,
	})
	if err != nil {
		return mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"account": account,
		"phase":   phase,
	})
}

// listAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Param limit query int false "Maximum number of accounts"
// @Success 200 {array} domain.Account
// @Router /accounts [get]
func (r *Router) listAccounts(c *fiber.Ctx) error {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	accounts, err := r.accounts.ListAccounts(ctx, limit)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(accounts)
}

// getAccount godoc
// @Summary Get an account with its phase history
// @Tags accounts
// @Produce json
// @Param account_id path string true "Account ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /accounts/{account_id} [get]
func (r *Router) getAccount(c *fiber.Ctx) error {
	accountID, err := parseIDParam(c, "account_id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	account, phases, err := r.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return mapError(c, err)
	}

	return c.JSON(fiber.Map{
		"account": account,
		"phases":  phases,
	})
}

// transitionPhase godoc
// @Summary Execute a phase transition (advance, fail, reset, create)
// @Tags transitions
// @Accept json
// @Produce json
// @Param account_id path string true "Account ID"
// @Param request body TransitionRequestBody true "Transition request"
// @Success 200 {object} domain.TransitionResult
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /accounts/{account_id}/transitions [post]
func (r *Router) transitionPhase(c *fiber.Ctx) error {
	accountID, err := parseIDParam(c, "account_id")
	if err != nil {
		return err
	}

	var payload TransitionRequestBody
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	result, err := r.transitions.Transition(ctx, accountID, domain.TransitionRequest{
		Action:      domain.TransitionAction(payload.Action),
		PhaseType:   domain.PhaseType(payload.PhaseType),
		CarryEquity: payload.CarryEquity,
		Note:        payload.Note,
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(result)
}

// recordTrade godoc
// @Summary Record a closed trade and evaluate the phase
// @Tags trades
// @Accept json
// @Produce json
// @Param phase_id path string true "Phase ID"
// @Param request body TradeRequest true "Trade payload"
// @Success 201 {object} domain.TradeEvaluation
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /phases/{phase_id}/trades [post]
func (r *Router) recordTrade(c *fiber.Ctx) error {
	phaseID, err := parseIDParam(c, "phase_id")
	if err != nil {
		return err
	}

	var payload TradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	eval, err := r.evaluation.RecordTrade(ctx, phaseID, domain.Trade{
		ExecutionID: payload.ExecutionID,
		Symbol:      payload.Symbol,
		Side:        domain.TradeSide(payload.Side),
		Quantity:    payload.Quantity,
		EntryPrice:  payload.EntryPrice,
		ExitPrice:   payload.ExitPrice,
		EntryTime:   payload.EntryTime,
		ExitTime:    payload.ExitTime,
		PnL:         payload.PnL,
		Commission:  payload.Commission,
		Fees:        payload.Fees,
		RawPayload:  c.Body(),
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(eval)
}

// getDrawdown godoc
// @Summary Evaluate drawdown headroom for a phase
// @Tags evaluation
// @Produce json
// @Param phase_id path string true "Phase ID"
// @Param equity query string false "Intraday equity override"
// @Success 200 {object} domain.DrawdownResult
// @Failure 404 {object} map[string]string
// @Router /phases/{phase_id}/drawdown [get]
func (r *Router) getDrawdown(c *fiber.Ctx) error {
	phaseID, err := parseIDParam(c, "phase_id")
	if err != nil {
		return err
	}

	var equityOverride *decimal.Decimal
	if v := c.Query("equity"); v != "" {
		equity, err := decimal.NewFromString(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid equity")
		}
		equityOverride = &equity
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	result, err := r.evaluation.Drawdown(ctx, phaseID, equityOverride)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(result)
}

// getProgress godoc
// @Summary Evaluate profit-target progress for a phase
// @Tags evaluation
// @Produce json
// @Param phase_id path string true "Phase ID"
// @Success 200 {object} domain.ProgressResult
// @Failure 404 {object} map[string]string
// @Router /phases/{phase_id}/progress [get]
func (r *Router) getProgress(c *fiber.Ctx) error {
	phaseID, err := parseIDParam(c, "phase_id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	result, err := r.evaluation.Progress(ctx, phaseID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(result)
}

// getMetrics godoc
// @Summary Aggregate the phase's trade ledger
// @Tags evaluation
// @Produce json
// @Param phase_id path string true "Phase ID"
// @Param limit query int false "Maximum history window"
// @Success 200 {object} domain.RiskMetrics
// @Failure 404 {object} map[string]string
// @Router /phases/{phase_id}/metrics [get]
func (r *Router) getMetrics(c *fiber.Ctx) error {
	phaseID, err := parseIDParam(c, "phase_id")
	if err != nil {
		return err
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	metrics, err := r.evaluation.Metrics(ctx, phaseID, limit)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(metrics)
}

// getPayoutEligibility godoc
// @Summary Evaluate payout eligibility for a funded phase
// @Tags payouts
// @Produce json
// @Param phase_id path string true "Phase ID"
// @Success 200 {object} domain.PayoutEligibility
// @Failure 404 {object} map[string]string
// @Router /phases/{phase_id}/payout-eligibility [get]
func (r *Router) getPayoutEligibility(c *fiber.Ctx) error {
	phaseID, err := parseIDParam(c, "phase_id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	eligibility, err := r.evaluation.PayoutEligibility(ctx, phaseID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(eligibility)
}

// listBreaches godoc
// @Summary List the phase's breach audit trail
// @Tags evaluation
// @Produce json
// @Param phase_id path string true "Phase ID"
// @Success 200 {array} domain.BreachRecord
// @Failure 404 {object} map[string]string
// @Router /phases/{phase_id}/breaches [get]
func (r *Router) listBreaches(c *fiber.Ctx) error {
	phaseID, err := parseIDParam(c, "phase_id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	breaches, err := r.accounts.ListBreaches(ctx, phaseID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(breaches)
}

// getViolations godoc
// @Summary Replay the phase's trade history against its limits
// @Tags evaluation
// @Produce json
// @Param phase_id path string true "Phase ID"
// @Success 200 {object} domain.ViolationReport
// @Failure 404 {object} map[string]string
// @Router /phases/{phase_id}/violations [get]
func (r *Router) getViolations(c *fiber.Ctx) error {
	phaseID, err := parseIDParam(c, "phase_id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	report, err := r.evaluation.Violations(ctx, phaseID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(report)
}

// requestPayout godoc
// @Summary Request a payout against the funded phase
// @Tags payouts
// @Accept json
// @Produce json
// @Param account_id path string true "Account ID"
// @Param request body PayoutRequest true "Payout request"
// @Success 201 {object} domain.Payout
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /accounts/{account_id}/payouts [post]
func (r *Router) requestPayout(c *fiber.Ctx) error {
	accountID, err := parseIDParam(c, "account_id")
	if err != nil {
		return err
	}

	var payload PayoutRequest
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	payout, err := r.payouts.RequestPayout(ctx, accountID, payload.Amount, payload.Notes)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payout)
}

// listPayouts godoc
// @Summary List payouts for an account
// @Tags payouts
// @Produce json
// @Param account_id path string true "Account ID"
// @Success 200 {array} domain.Payout
// @Failure 404 {object} map[string]string
// @Router /accounts/{account_id}/payouts [get]
func (r *Router) listPayouts(c *fiber.Ctx) error {
	accountID, err := parseIDParam(c, "account_id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 5*time.Second)
	defer cancel()

	payouts, err := r.payouts.ListPayouts(ctx, accountID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(payouts)
}

// cancelPayout godoc
// @Summary Delete a pending payout
// @Tags payouts
// @Produce json
// @Param payout_id path string true "Payout ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /payouts/{payout_id} [delete]
func (r *Router) cancelPayout(c *fiber.Ctx) error {
	payoutID, err := parseIDParam(c, "payout_id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	if err := r.payouts.CancelPayout(ctx, payoutID); err != nil {
		return mapError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
