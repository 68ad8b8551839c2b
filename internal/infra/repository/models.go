package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"propfirm_server/internal/domain"
)

type AccountModel struct {
	ID               string          `gorm:"column:id;type:varchar(36);primaryKey"`
	UserID           string          `gorm:"column:user_id;not null;index"`
	Name             *string         `gorm:"column:name"`
	StartingBalance  decimal.Decimal `gorm:"column:starting_balance;type:numeric(20,8);not null"`
	TrailingDrawdown bool            `gorm:"column:trailing_drawdown;not null"`
	Status           string          `gorm:"column:status;not null"`
	Archived         bool            `gorm:"column:archived;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

type AccountPhaseLimitModel struct {
	ID                   int64           `gorm:"column:id"`
	AccountID            string          `gorm:"column:account_id;type:varchar(36);not null;uniqueIndex:idx_account_phase_type"`
	PhaseType            string          `gorm:"column:phase_type;not null;uniqueIndex:idx_account_phase_type"`
	ProfitTargetPercent  decimal.Decimal `gorm:"column:profit_target_percent;type:numeric(10,4);not null"`
	DailyDrawdownPercent decimal.Decimal `gorm:"column:daily_drawdown_percent;type:numeric(10,4);not null"`
	MaxDrawdownPercent   decimal.Decimal `gorm:"column:max_drawdown_percent;type:numeric(10,4);not null"`
	MinTradingDays       int             `gorm:"column:min_trading_days;not null"`
	MaxTradingDays       int             `gorm:"column:max_trading_days;not null"`
	CreatedAt            time.Time       `gorm:"column:created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (AccountPhaseLimitModel) TableName() string {
	return "account_phase_limits"
}

func toAccountModel(account domain.Account) AccountModel {
	return AccountModel{
		ID:               account.ID.String(),
		UserID:           account.UserID,
		Name:             stringPointerOrNil(account.Name),
		StartingBalance:  account.StartingBalance,
		TrailingDrawdown: account.TrailingDrawdown,
		Status:           string(account.Status),
		Archived:         account.Archived,
	}
}

func toLimitModels(account domain.Account) []AccountPhaseLimitModel {
	models := make([]AccountPhaseLimitModel, 0, len(account.Limits))
	for phaseType, limits := range account.Limits {
		models = append(models, AccountPhaseLimitModel{
			AccountID:            account.ID.String(),
			PhaseType:            string(phaseType),
			ProfitTargetPercent:  limits.ProfitTargetPercent,
			DailyDrawdownPercent: limits.DailyDrawdownPercent,
			MaxDrawdownPercent:   limits.MaxDrawdownPercent,
			MinTradingDays:       limits.MinTradingDays,
			MaxTradingDays:       limits.MaxTradingDays,
		})
	}
	return models
}

func (m AccountModel) toDomain(limits []AccountPhaseLimitModel) domain.Account {
	limitMap := make(map[domain.PhaseType]domain.PhaseLimits, len(limits))
	for _, l := range limits {
		limitMap[domain.PhaseType(l.PhaseType)] = domain.PhaseLimits{
			ProfitTargetPercent:  l.ProfitTargetPercent,
			DailyDrawdownPercent: l.DailyDrawdownPercent,
			MaxDrawdownPercent:   l.MaxDrawdownPercent,
			MinTradingDays:       l.MinTradingDays,
			MaxTradingDays:       l.MaxTradingDays,
		}
	}

	return domain.Account{
		ID:               parseUUID(m.ID),
		UserID:           m.UserID,
		Name:             stringValueOrEmpty(m.Name),
		StartingBalance:  m.StartingBalance,
		Limits:           limitMap,
		TrailingDrawdown: m.TrailingDrawdown,
		Status:           domain.AccountStatus(m.Status),
		Archived:         m.Archived,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type PhaseModel struct {
	ID               string          `gorm:"column:id;type:varchar(36);primaryKey"`
	AccountID        string          `gorm:"column:account_id;type:varchar(36);not null;index"`
	PhaseType        string          `gorm:"column:phase_type;not null"`
	Status           string          `gorm:"column:status;not null;index"`
	StartingBalance  decimal.Decimal `gorm:"column:starting_balance;type:numeric(20,8);not null"`
	CurrentBalance   decimal.Decimal `gorm:"column:current_balance;type:numeric(20,8);not null"`
	CurrentEquity    decimal.Decimal `gorm:"column:current_equity;type:numeric(20,8);not null"`
	HighWaterMark    decimal.Decimal `gorm:"column:high_water_mark;type:numeric(20,8);not null"`
	ProfitTarget     decimal.Decimal `gorm:"column:profit_target;type:numeric(20,8);not null"`
	DailyDrawdown    decimal.Decimal `gorm:"column:daily_drawdown;type:numeric(20,8);not null"`
	MaxDrawdown      decimal.Decimal `gorm:"column:max_drawdown;type:numeric(20,8);not null"`
	MinTradingDays   int             `gorm:"column:min_trading_days;not null"`
	MaxTradingDays   int             `gorm:"column:max_trading_days;not null"`
	TrailingDrawdown bool            `gorm:"column:trailing_drawdown;not null"`
	StartedAt        time.Time       `gorm:"column:started_at;not null"`
	EndedAt          *time.Time      `gorm:"column:ended_at"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (PhaseModel) TableName() string {
	return "phases"
}

func toPhaseModel(phase domain.Phase) PhaseModel {
	return PhaseModel{
		ID:               phase.ID.String(),
		AccountID:        phase.AccountID.String(),
		PhaseType:        string(phase.Type),
		Status:           string(phase.Status),
		StartingBalance:  phase.StartingBalance,
		CurrentBalance:   phase.CurrentBalance,
		CurrentEquity:    phase.CurrentEquity,
		HighWaterMark:    phase.HighWaterMark,
		ProfitTarget:     phase.ProfitTarget,
		DailyDrawdown:    phase.DailyDrawdown,
		MaxDrawdown:      phase.MaxDrawdown,
		MinTradingDays:   phase.MinTradingDays,
		MaxTradingDays:   phase.MaxTradingDays,
		TrailingDrawdown: phase.TrailingDrawdown,
		StartedAt:        phase.StartedAt,
		EndedAt:          phase.EndedAt,
	}
}

func (m PhaseModel) toDomain() domain.Phase {
	return domain.Phase{
		ID:               parseUUID(m.ID),
		AccountID:        parseUUID(m.AccountID),
		Type:             domain.PhaseType(m.PhaseType),
		Status:           domain.PhaseStatus(m.Status),
		StartingBalance:  m.StartingBalance,
		CurrentBalance:   m.CurrentBalance,
		CurrentEquity:    m.CurrentEquity,
		HighWaterMark:    m.HighWaterMark,
		ProfitTarget:     m.ProfitTarget,
		DailyDrawdown:    m.DailyDrawdown,
		MaxDrawdown:      m.MaxDrawdown,
		MinTradingDays:   m.MinTradingDays,
		MaxTradingDays:   m.MaxTradingDays,
		TrailingDrawdown: m.TrailingDrawdown,
		StartedAt:        m.StartedAt,
		EndedAt:          m.EndedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type TradeModel struct {
	ID          int64           `gorm:"column:id"`
	PhaseID     string          `gorm:"column:phase_id;type:varchar(36);not null;index"`
	ExecutionID *string         `gorm:"column:execution_id"`
	Symbol      string          `gorm:"column:symbol;not null"`
	Side        string          `gorm:"column:side;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(20,8);not null"`
	EntryPrice  decimal.Decimal `gorm:"column:entry_price;type:numeric(20,8);not null"`
	ExitPrice   decimal.Decimal `gorm:"column:exit_price;type:numeric(20,8);not null"`
	EntryTime   time.Time       `gorm:"column:entry_time"`
	ExitTime    time.Time       `gorm:"column:exit_time;not null;index"`
	CloseDay    string          `gorm:"column:close_day;not null;index"`
	PnL         decimal.Decimal `gorm:"column:pnl;type:numeric(20,8);not null"`
	Commission  decimal.Decimal `gorm:"column:commission;type:numeric(20,8);not null"`
	Fees        decimal.Decimal `gorm:"column:fees;type:numeric(20,8);not null"`
	RawPayload  datatypes.JSON  `gorm:"column:raw_payload"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (TradeModel) TableName() string {
	return "trades"
}

func toTradeModel(trade domain.Trade) TradeModel {
	return TradeModel{
		PhaseID:     trade.PhaseID.String(),
		ExecutionID: stringPointerOrNil(trade.ExecutionID),
		Symbol:      trade.Symbol,
		Side:        string(trade.Side),
		Quantity:    trade.Quantity,
		EntryPrice:  trade.EntryPrice,
		ExitPrice:   trade.ExitPrice,
		EntryTime:   trade.EntryTime,
		ExitTime:    trade.ExitTime,
		CloseDay:    trade.CloseDay(),
		PnL:         trade.PnL,
		Commission:  trade.Commission,
		Fees:        trade.Fees,
		RawPayload:  jsonOrEmpty(trade.RawPayload),
	}
}

func (m TradeModel) toDomain() domain.Trade {
	return domain.Trade{
		ID:          m.ID,
		PhaseID:     parseUUID(m.PhaseID),
		ExecutionID: stringValueOrEmpty(m.ExecutionID),
		Symbol:      m.Symbol,
		Side:        domain.TradeSide(m.Side),
		Quantity:    m.Quantity,
		EntryPrice:  m.EntryPrice,
		ExitPrice:   m.ExitPrice,
		EntryTime:   m.EntryTime,
		ExitTime:    m.ExitTime,
		PnL:         m.PnL,
		Commission:  m.Commission,
		Fees:        m.Fees,
		RawPayload:  copyJSON(m.RawPayload),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type DailyAnchorModel struct {
	ID             int64           `gorm:"column:id"`
	PhaseID        string          `gorm:"column:phase_id;type:varchar(36);not null;uniqueIndex:idx_anchor_phase_day"`
	AnchorDate     string          `gorm:"column:anchor_date;not null;uniqueIndex:idx_anchor_phase_day"`
	OpeningBalance decimal.Decimal `gorm:"column:opening_balance;type:numeric(20,8);not null"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
}

func (DailyAnchorModel) TableName() string {
	return "daily_anchors"
}

func toAnchorModel(anchor domain.DailyAnchor) DailyAnchorModel {
	return DailyAnchorModel{
		PhaseID:        anchor.PhaseID.String(),
		AnchorDate:     anchor.AnchorDate,
		OpeningBalance: anchor.OpeningBalance,
	}
}

func (m DailyAnchorModel) toDomain() domain.DailyAnchor {
	return domain.DailyAnchor{
		ID:             m.ID,
		PhaseID:        parseUUID(m.PhaseID),
		AnchorDate:     m.AnchorDate,
		OpeningBalance: m.OpeningBalance,
		CreatedAt:      m.CreatedAt,
	}
}

type BreachRecordModel struct {
	ID           int64           `gorm:"column:id"`
	PhaseID      string          `gorm:"column:phase_id;type:varchar(36);not null;index"`
	BreachType   string          `gorm:"column:breach_type;not null"`
	BreachAmount decimal.Decimal `gorm:"column:breach_amount;type:numeric(20,8);not null"`
	EquityAtTime decimal.Decimal `gorm:"column:equity_at_breach;type:numeric(20,8);not null"`
	AccountSize  decimal.Decimal `gorm:"column:account_size_at_breach;type:numeric(20,8);not null"`
	OccurredAt   time.Time       `gorm:"column:occurred_at;not null"`
	Note         *string         `gorm:"column:note"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
}

func (BreachRecordModel) TableName() string {
	return "breach_records"
}

func toBreachModel(breach domain.BreachRecord) BreachRecordModel {
	return BreachRecordModel{
		PhaseID:      breach.PhaseID.String(),
		BreachType:   string(breach.Type),
		BreachAmount: breach.BreachAmount,
		EquityAtTime: breach.EquityAtTime,
		AccountSize:  breach.AccountSize,
		OccurredAt:   breach.OccurredAt,
		Note:         stringPointerOrNil(breach.Note),
	}
}

func (m BreachRecordModel) toDomain() domain.BreachRecord {
	return domain.BreachRecord{
		ID:           m.ID,
		PhaseID:      parseUUID(m.PhaseID),
		Type:         domain.BreachType(m.BreachType),
		BreachAmount: m.BreachAmount,
		EquityAtTime: m.EquityAtTime,
		AccountSize:  m.AccountSize,
		OccurredAt:   m.OccurredAt,
		Note:         stringValueOrEmpty(m.Note),
		CreatedAt:    m.CreatedAt,
	}
}

type PayoutModel struct {
	ID          string          `gorm:"column:id;type:varchar(36);primaryKey"`
	AccountID   string          `gorm:"column:account_id;type:varchar(36);not null;index"`
	PhaseID     string          `gorm:"column:phase_id;type:varchar(36);not null;index"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(20,8);not null"`
	Status      string          `gorm:"column:status;not null"`
	RequestedAt time.Time       `gorm:"column:requested_at;not null"`
	PaidAt      *time.Time      `gorm:"column:paid_at"`
	Notes       *string         `gorm:"column:notes"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

func (PayoutModel) TableName() string {
	return "payouts"
}

func toPayoutModel(payout domain.Payout) PayoutModel {
	return PayoutModel{
		ID:          payout.ID.String(),
		AccountID:   payout.AccountID.String(),
		PhaseID:     payout.PhaseID.String(),
		Amount:      payout.Amount,
		Status:      string(payout.Status),
		RequestedAt: payout.RequestedAt,
		PaidAt:      payout.PaidAt,
		Notes:       stringPointerOrNil(payout.Notes),
	}
}

func (m PayoutModel) toDomain() domain.Payout {
	return domain.Payout{
		ID:          parseUUID(m.ID),
		AccountID:   parseUUID(m.AccountID),
		PhaseID:     parseUUID(m.PhaseID),
		Amount:      m.Amount,
		Status:      domain.PayoutStatus(m.Status),
		RequestedAt: m.RequestedAt,
		PaidAt:      m.PaidAt,
		Notes:       stringValueOrEmpty(m.Notes),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func stringPointerOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func stringValueOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func jsonOrEmpty(data []byte) datatypes.JSON {
	if len(data) == 0 {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(append([]byte(nil), data...))
}

func copyJSON(data datatypes.JSON) []byte {
	if len(data) == 0 {
		return nil
	}
	cpy := make([]byte, len(data))
	copy(cpy, data)
	return cpy
}
