package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mossfall/grottobot/internal/catalog"
	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/event"
	"github.com/mossfall/grottobot/internal/logger"
	"github.com/mossfall/grottobot/internal/metrics"
	"github.com/mossfall/grottobot/internal/repository"
)

// InventoryService is the slice of the inventory surface the ledger needs:
// live multipliers for earn actions and item placement for fishing and shop
// purchases.
type InventoryService interface {
	AddItem(ctx context.Context, userID, guildID, itemID, variant string, quantity int) (*domain.AddItemResult, error)
	GetMultiplier(ctx context.Context, userID, guildID string, effectType domain.EffectType) (float64, error)
	GetActiveEffects(ctx context.Context, userID, guildID string) ([]domain.ActiveEffect, error)
}

// AccountSnapshot is the read view of one account with its live effects.
type AccountSnapshot struct {
	Account domain.Account        `json:"account"`
	Effects []domain.ActiveEffect `json:"effects"`
}

// EarnResult reports one cooldown-gated earn action.
type EarnResult struct {
	Amount     int     `json:"amount"`
	Multiplier float64 `json:"multiplier"`
	Balance    int     `json:"balance"`
	Formatted  string  `json:"formatted"`
}

// FishResult reports one fishing attempt. Caught is false on the no-catch
// roll; the cooldown is stamped either way.
type FishResult struct {
	Caught bool                   `json:"caught"`
	Item   *domain.ItemDefinition `json:"item,omitempty"`
	Added  *domain.AddItemResult  `json:"added,omitempty"`
}

// PurchaseResult reports a shop purchase. Quantity may be truncated by the
// stack cap; only the landed copies are charged.
type PurchaseResult struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
	Cost     int    `json:"cost"`
	Capped   bool   `json:"capped"`
	Balance  int    `json:"balance"`
}

// AdminOp selects an administrative balance adjustment.
type AdminOp string

const (
	AdminAdd    AdminOp = "add"
	AdminRemove AdminOp = "remove"
	AdminSet    AdminOp = "set"
)

// Service defines the interface for ledger operations
type Service interface {
	GetAccount(ctx context.Context, userID, guildID string) (*AccountSnapshot, error)
	Credit(ctx context.Context, userID, guildID string, amount int, kind domain.TransactionKind, description string) error
	Transfer(ctx context.Context, fromUserID, toUserID, guildID string, amount int) error
	Deposit(ctx context.Context, userID, guildID string, amount int) (*domain.Account, error)
	Withdraw(ctx context.Context, userID, guildID string, amount int) (*domain.Account, error)
	ClaimDaily(ctx context.Context, userID, guildID string, base int) (*EarnResult, error)
	Work(ctx context.Context, userID, guildID string, base int) (*EarnResult, error)
	Fish(ctx context.Context, userID, guildID string) (*FishResult, error)
	Purchase(ctx context.Context, userID, guildID, itemID, variant string, quantity int) (*PurchaseResult, error)
	Leaderboard(ctx context.Context, guildID string, limit int) ([]domain.LeaderboardEntry, error)
	History(ctx context.Context, userID, guildID string, limit int) ([]domain.Transaction, error)
	AdminAdjust(ctx context.Context, userID, guildID string, op AdminOp, amount int, reason string) (*domain.Account, error)
}

type service struct {
	repo    repository.Ledger
	catalog catalog.Service
	inv     InventoryService
	bus     event.Bus
	rnd     func() float64
	now     func() time.Time
}

// NewService creates a new ledger service
func NewService(repo repository.Ledger, catalogSvc catalog.Service, inv InventoryService, bus event.Bus, rnd func() float64) Service {
	return &service{
		repo:    repo,
		catalog: catalogSvc,
		inv:     inv,
		bus:     bus,
		rnd:     rnd,
		now:     time.Now,
	}
}

func (s *service) GetAccount(ctx context.Context, userID, guildID string) (*AccountSnapshot, error) {
	account, err := s.repo.GetOrCreateAccount(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	effects, err := s.inv.GetActiveEffects(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active effects: %w", err)
	}

	return &AccountSnapshot{Account: *account, Effects: effects}, nil
}

func validateAmount(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}
	return nil
}

func newTransaction(userID, guildID string, kind domain.TransactionKind, amount int, description string, createdAt time.Time) domain.Transaction {
	return domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		GuildID:     guildID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		CreatedAt:   createdAt,
	}
}

// milestoneGrant is a milestone crossed during a balance update, applied
// inside the transaction and announced after commit.
type milestoneGrant struct {
	Threshold int
	RewardXP  int
}

// creditTx applies a positive balance change inside an open transaction.
// The coin multiplier inflates what lands on the balance, but lifetime
// earnings record the pre-multiplier amount.
func (s *service) creditTx(ctx context.Context, tx repository.LedgerTx, userID, guildID string, amount int, coinMult float64, kind domain.TransactionKind, description string) (*domain.Account, []milestoneGrant, error) {
	account, err := tx.GetOrCreateAccount(ctx, userID, guildID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}

	credited := amount
	if coinMult > 1 {
		credited = int(math.Floor(float64(amount) * coinMult))
	}

	account.Balance += credited
	account.TotalEarned += amount

	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, kind, credited, description, s.now())); err != nil {
		return nil, nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	grants, err := s.claimMilestonesTx(ctx, tx, account)
	if err != nil {
		return nil, nil, err
	}

	return account, grants, nil
}

// refund returns coins debited for shop copies that were never delivered.
// It runs in its own transaction after the purchase debit has committed.
func (s *service) refund(ctx context.Context, userID, guildID string, amount int, description string) (*domain.Account, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetOrCreateAccount(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Balance += amount
	account.TotalSpent -= amount

	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, domain.TxShopRefund, amount, description, s.now())); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}

// debitTx applies a negative balance change inside an open transaction.
// Balances never go negative; an overdraw rejects the whole operation.
func (s *service) debitTx(ctx context.Context, tx repository.LedgerTx, userID, guildID string, amount int, kind domain.TransactionKind, description string) (*domain.Account, error) {
	account, err := tx.GetOrCreateAccount(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account.Balance < amount {
		return nil, fmt.Errorf("%w: balance %d, need %d", domain.ErrInsufficientFunds, account.Balance, amount)
	}

	account.Balance -= amount
	account.TotalSpent += amount

	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, kind, -amount, description, s.now())); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	return account, nil
}

// claimMilestonesTx records any newly crossed net-worth milestones. Each
// threshold fires at most once per account, surviving balance oscillation.
func (s *service) claimMilestonesTx(ctx context.Context, tx repository.LedgerTx, account *domain.Account) ([]milestoneGrant, error) {
	var grants []milestoneGrant
	netWorth := account.NetWorth()

	for _, m := range domain.Milestones {
		if netWorth < m.Threshold {
			break
		}
		claimed, err := tx.HasMilestoneClaim(ctx, account.UserID, account.GuildID, m.Threshold)
		if err != nil {
			return nil, fmt.Errorf("failed to check milestone claim: %w", err)
		}
		if claimed {
			continue
		}
		if err := tx.RecordMilestoneClaim(ctx, account.UserID, account.GuildID, m.Threshold); err != nil {
			return nil, fmt.Errorf("failed to record milestone claim: %w", err)
		}
		desc := fmt.Sprintf("Net worth milestone %s reached", domain.FormatCurrency(m.Threshold))
		if err := tx.AppendTransaction(ctx, newTransaction(account.UserID, account.GuildID, domain.TxNetWorthBonus, m.RewardXP, desc, s.now())); err != nil {
			return nil, fmt.Errorf("failed to append milestone transaction: %w", err)
		}
		grants = append(grants, milestoneGrant{Threshold: m.Threshold, RewardXP: m.RewardXP})
	}

	return grants, nil
}

// announceMilestones publishes milestone events after commit. The XP reward
// travels over the bus to the external progression surface.
func (s *service) announceMilestones(ctx context.Context, userID, guildID string, grants []milestoneGrant) {
	log := logger.FromContext(ctx)
	for _, g := range grants {
		log.Info("Milestone reached", "userID", userID, "threshold", g.Threshold, "xp", g.RewardXP)
		if err := s.bus.Publish(ctx, event.NewMilestoneReachedEvent(userID, guildID, int64(g.Threshold), int64(g.RewardXP))); err != nil {
			log.Error("Failed to publish milestone event", "error", err, "threshold", g.Threshold)
		}
		if err := s.bus.Publish(ctx, event.NewXPAwardedEvent(userID, guildID, int64(g.RewardXP), "milestone")); err != nil {
			log.Error("Failed to publish xp event", "error", err, "threshold", g.Threshold)
		}
	}
}

// Credit applies a generic positive balance change with the coin multiplier.
// It also backs instant currency from item use and sell payouts.
func (s *service) Credit(ctx context.Context, userID, guildID string, amount int, kind domain.TransactionKind, description string) error {
	if err := validateAmount(amount); err != nil {
		return err
	}

	coinMult, err := s.inv.GetMultiplier(ctx, userID, guildID, domain.EffectCoinMultiplier)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	_, grants, err := s.creditTx(ctx, tx, userID, guildID, amount, coinMult, kind, description)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.CoinsEarned.WithLabelValues(string(kind)).Add(float64(amount))
	s.announceMilestones(ctx, userID, guildID, grants)
	return nil
}

func (s *service) Transfer(ctx context.Context, fromUserID, toUserID, guildID string, amount int) error {
	log := logger.FromContext(ctx)
	log.Info("Transfer called", "from", fromUserID, "to", toUserID, "guildID", guildID, "amount", amount)

	if err := validateAmount(amount); err != nil {
		return err
	}
	if fromUserID == toUserID {
		return fmt.Errorf("%w: cannot transfer to self", domain.ErrInvalidAmount)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	from, err := tx.GetOrCreateAccount(ctx, fromUserID, guildID)
	if err != nil {
		return fmt.Errorf("failed to get sender account: %w", err)
	}
	if from.Balance < amount {
		return fmt.Errorf("%w: balance %d, need %d", domain.ErrInsufficientFunds, from.Balance, amount)
	}

	to, err := tx.GetOrCreateAccount(ctx, toUserID, guildID)
	if err != nil {
		return fmt.Errorf("failed to get recipient account: %w", err)
	}

	from.Balance -= amount
	to.Balance += amount

	if err := tx.UpdateAccount(ctx, *from); err != nil {
		return fmt.Errorf("failed to update sender: %w", err)
	}
	if err := tx.UpdateAccount(ctx, *to); err != nil {
		return fmt.Errorf("failed to update recipient: %w", err)
	}

	// Transfers move coins, not lifetime statistics: neither side's
	// totals change, and no multiplier applies.
	now := s.now()
	out := newTransaction(fromUserID, guildID, domain.TxTransferOut, -amount, fmt.Sprintf("Transfer to %s", toUserID), now)
	out.Counterparty = toUserID
	in := newTransaction(toUserID, guildID, domain.TxTransferIn, amount, fmt.Sprintf("Transfer from %s", fromUserID), now)
	in.Counterparty = fromUserID

	if err := tx.AppendTransaction(ctx, out); err != nil {
		return fmt.Errorf("failed to append outgoing record: %w", err)
	}
	if err := tx.AppendTransaction(ctx, in); err != nil {
		return fmt.Errorf("failed to append incoming record: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *service) Deposit(ctx context.Context, userID, guildID string, amount int) (*domain.Account, error) {
	return s.moveBetweenBalances(ctx, userID, guildID, amount, domain.TxDeposit)
}

func (s *service) Withdraw(ctx context.Context, userID, guildID string, amount int) (*domain.Account, error) {
	return s.moveBetweenBalances(ctx, userID, guildID, amount, domain.TxWithdraw)
}

// moveBetweenBalances shifts coins between the on-hand balance and the bank.
// Net worth is unchanged, so no milestone evaluation runs.
func (s *service) moveBetweenBalances(ctx context.Context, userID, guildID string, amount int, kind domain.TransactionKind) (*domain.Account, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetOrCreateAccount(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	switch kind {
	case domain.TxDeposit:
		if account.Balance < amount {
			return nil, fmt.Errorf("%w: balance %d, need %d", domain.ErrInsufficientFunds, account.Balance, amount)
		}
		account.Balance -= amount
		account.Bank += amount
	case domain.TxWithdraw:
		if account.Bank < amount {
			return nil, fmt.Errorf("%w: bank %d, need %d", domain.ErrInsufficientFunds, account.Bank, amount)
		}
		account.Bank -= amount
		account.Balance += amount
	default:
		return nil, fmt.Errorf("%w: unsupported kind %s", domain.ErrInvalidAmount, kind)
	}

	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, kind, amount, "", s.now())); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account, nil
}

func (s *service) Leaderboard(ctx context.Context, guildID string, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = domain.DefaultLeaderboardSize
	}
	if limit > domain.MaxLeaderboardSize {
		limit = domain.MaxLeaderboardSize
	}
	entries, err := s.repo.GetLeaderboard(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return entries, nil
}

func (s *service) History(ctx context.Context, userID, guildID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = domain.DefaultHistorySize
	}
	if limit > domain.MaxHistorySize {
		limit = domain.MaxHistorySize
	}
	transactions, err := s.repo.GetTransactions(ctx, userID, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, nil
}

func (s *service) AdminAdjust(ctx context.Context, userID, guildID string, op AdminOp, amount int, reason string) (*domain.Account, error) {
	log := logger.FromContext(ctx)
	log.Info("AdminAdjust called", "userID", userID, "guildID", guildID, "op", op, "amount", amount)

	if amount < 0 || (op != AdminSet && amount == 0) {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidAmount, amount)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetOrCreateAccount(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var kind domain.TransactionKind
	var recorded int
	switch op {
	case AdminAdd:
		account.Balance += amount
		kind, recorded = domain.TxAdminAdd, amount
	case AdminRemove:
		if account.Balance < amount {
			amount = account.Balance
		}
		account.Balance -= amount
		kind, recorded = domain.TxAdminRemove, -amount
	case AdminSet:
		recorded = amount - account.Balance
		account.Balance = amount
		kind = domain.TxAdminSet
	default:
		return nil, fmt.Errorf("%w: unknown op %s", domain.ErrInvalidAmount, op)
	}

	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, kind, recorded, reason, s.now())); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	// Admin credits count toward milestones like any other net-worth change.
	grants, err := s.claimMilestonesTx(ctx, tx, account)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.announceMilestones(ctx, userID, guildID, grants)
	return account, nil
}
