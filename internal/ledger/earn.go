package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/logger"
	"github.com/mossfall/grottobot/internal/metrics"
	"github.com/mossfall/grottobot/internal/repository"
	"github.com/mossfall/grottobot/internal/reward"
)

// earnAction describes one cooldown-gated earn operation. The last/stamp
// accessors isolate which account column carries the cooldown timestamp.
type earnAction struct {
	name     string
	cooldown time.Duration
	multType domain.EffectType
	kind     domain.TransactionKind
	desc     string
	last     func(a *domain.Account) *time.Time
	stamp    func(a *domain.Account, now time.Time)
}

var dailyAction = earnAction{
	name:     domain.ActionDaily,
	cooldown: domain.DailyCooldown,
	multType: domain.EffectDailyMultiplier,
	kind:     domain.TxDaily,
	desc:     "Daily reward",
	last:     func(a *domain.Account) *time.Time { return a.LastDaily },
	stamp:    func(a *domain.Account, now time.Time) { a.LastDaily = &now },
}

var workAction = earnAction{
	name:     domain.ActionWork,
	cooldown: domain.WorkCooldown,
	multType: domain.EffectWorkMultiplier,
	kind:     domain.TxWork,
	desc:     "Work payout",
	last:     func(a *domain.Account) *time.Time { return a.LastWork },
	stamp:    func(a *domain.Account, now time.Time) { a.LastWork = &now },
}

func (s *service) ClaimDaily(ctx context.Context, userID, guildID string, base int) (*EarnResult, error) {
	if base <= 0 {
		base = domain.DefaultDailyAmount
	}
	return s.earn(ctx, userID, guildID, base, dailyAction)
}

func (s *service) Work(ctx context.Context, userID, guildID string, base int) (*EarnResult, error) {
	if base <= 0 {
		base = domain.DefaultWorkAmount
	}
	return s.earn(ctx, userID, guildID, base, workAction)
}

// CanWork is the pure cooldown predicate for the work action. It reads the
// account only and never mutates anything.
func CanWork(account *domain.Account, now time.Time) (bool, time.Duration) {
	return checkCooldown(account.LastWork, domain.WorkCooldown, now)
}

func checkCooldown(last *time.Time, cooldown time.Duration, now time.Time) (bool, time.Duration) {
	if last == nil {
		return true, 0
	}
	elapsed := now.Sub(*last)
	if elapsed >= cooldown {
		return true, 0
	}
	return false, cooldown - elapsed
}

// earn runs one cooldown-gated earn action: cooldown check, action
// multiplier on the base, coin multiplier on what lands, milestone
// evaluation, all in one transaction.
func (s *service) earn(ctx context.Context, userID, guildID string, base int, action earnAction) (*EarnResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Earn action called", "action", action.name, "userID", userID, "guildID", guildID, "base", base)

	mult, err := s.inv.GetMultiplier(ctx, userID, guildID, action.multType)
	if err != nil {
		return nil, err
	}
	coinMult, err := s.inv.GetMultiplier(ctx, userID, guildID, domain.EffectCoinMultiplier)
	if err != nil {
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

	now := s.now()
	if ok, remaining := checkCooldown(action.last(account), action.cooldown, now); !ok {
		metrics.CooldownRejections.WithLabelValues(action.name).Inc()
		return nil, domain.CooldownError{Action: action.name, Remaining: remaining}
	}

	earned := int(math.Floor(float64(base) * mult))
	credited := earned
	if coinMult > 1 {
		credited = int(math.Floor(float64(earned) * coinMult))
	}

	account.Balance += credited
	account.TotalEarned += earned
	action.stamp(account, now)

	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, action.kind, credited, action.desc, now)); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	grants, err := s.claimMilestonesTx(ctx, tx, account)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.CoinsEarned.WithLabelValues(string(action.kind)).Add(float64(credited))
	s.announceMilestones(ctx, userID, guildID, grants)

	log.Info("Earn action completed", "action", action.name, "userID", userID, "credited", credited, "multiplier", mult)

	return &EarnResult{
		Amount:     credited,
		Multiplier: mult,
		Balance:    account.Balance,
		Formatted:  domain.FormatCurrency(credited),
	}, nil
}

func (s *service) Fish(ctx context.Context, userID, guildID string) (*FishResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Fish called", "userID", userID, "guildID", guildID)

	// Equipment scales the cooldown itself, not the payout.
	speedMult, err := s.inv.GetMultiplier(ctx, userID, guildID, domain.EffectFishingSpeed)
	if err != nil {
		return nil, err
	}
	cooldown := time.Duration(float64(domain.FishBaseCooldown) * speedMult)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetOrCreateAccount(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	now := s.now()
	if ok, remaining := checkCooldown(account.LastFish, cooldown, now); !ok {
		metrics.CooldownRejections.WithLabelValues(domain.ActionFish).Inc()
		return nil, domain.CooldownError{Action: domain.ActionFish, Remaining: remaining}
	}

	account.LastFish = &now
	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	// The no-catch roll happens before any pool is built, and the attempt
	// still burns the cooldown.
	if s.rnd() < domain.FishNoCatchChance {
		if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, domain.TxFishing, 0, "Nothing was biting", now)); err != nil {
			return nil, fmt.Errorf("failed to append transaction: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.Info("Fishing attempt came up empty", "userID", userID)
		return &FishResult{Caught: false}, nil
	}

	baitBoost, err := s.inv.GetMultiplier(ctx, userID, guildID, domain.EffectBaitBoost)
	if err != nil {
		return nil, err
	}

	fish, err := s.catalog.GetItemsByType(ctx, guildID, domain.ItemTypeFish)
	if err != nil {
		return nil, fmt.Errorf("failed to load fish catalog: %w", err)
	}

	caught := reward.SelectCatch(fish, domain.BaitSuccessChance, baitBoost, s.rnd)
	if caught == nil {
		if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, domain.TxFishing, 0, "Nothing was biting", now)); err != nil {
			return nil, fmt.Errorf("failed to append transaction: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.Warn("No fish defined in catalog", "guildID", guildID)
		return &FishResult{Caught: false}, nil
	}

	desc := fmt.Sprintf("Caught a %s", caught.Name)
	if err := tx.AppendTransaction(ctx, newTransaction(userID, guildID, domain.TxFishing, 0, desc, now)); err != nil {
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	// The catch lands before the commit: a failed delivery rolls back the
	// cooldown stamp and the audit row with it.
	added, err := s.inv.AddItem(ctx, userID, guildID, caught.ID, "", 1)
	if err != nil {
		return nil, fmt.Errorf("failed to add catch to inventory: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		log.Error("Fishing commit failed after catch delivery", "userID", userID, "itemID", caught.ID, "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.FishCaught.WithLabelValues(string(caught.Rarity)).Inc()
	log.Info("Fish caught", "userID", userID, "itemID", caught.ID, "rarity", caught.Rarity)

	return &FishResult{Caught: true, Item: caught, Added: added}, nil
}

func (s *service) Purchase(ctx context.Context, userID, guildID, itemID, variant string, quantity int) (*PurchaseResult, error) {
	log := logger.FromContext(ctx)
	log.Info("Purchase called", "userID", userID, "guildID", guildID, "itemID", itemID, "quantity", quantity)

	if err := validateAmount(quantity); err != nil {
		return nil, err
	}
	if quantity > domain.MaxTransactionQuantity {
		return nil, fmt.Errorf("%w: quantity %d exceeds maximum %d", domain.ErrInvalidAmount, quantity, domain.MaxTransactionQuantity)
	}

	def, err := s.catalog.GetItem(ctx, guildID, itemID)
	if err != nil {
		return nil, err
	}

	// The full debit commits before any item lands; copies rejected by the
	// stack cap are refunded afterwards. A failure between the two writes
	// leaves the player short coins, never holding unpaid items.
	cost := def.Price * quantity

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	desc := fmt.Sprintf("Bought %dx %s", quantity, def.Name)
	account, err := s.debitTx(ctx, tx, userID, guildID, cost, domain.TxShopPurchase, desc)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	added, err := s.inv.AddItem(ctx, userID, guildID, itemID, variant, quantity)
	if err != nil {
		if _, rerr := s.refund(ctx, userID, guildID, cost, fmt.Sprintf("Refund for %dx %s", quantity, def.Name)); rerr != nil {
			log.Error("Refund failed after undelivered purchase, manual adjustment needed",
				"userID", userID, "guildID", guildID, "itemID", itemID, "amount", cost, "error", rerr)
		}
		return nil, fmt.Errorf("failed to deliver purchase: %w", err)
	}

	balance := account.Balance
	if undelivered := quantity - added.Added; undelivered > 0 {
		refundAmount := def.Price * undelivered
		refunded, rerr := s.refund(ctx, userID, guildID, refundAmount, fmt.Sprintf("Refund for %dx %s (stack full)", undelivered, def.Name))
		if rerr != nil {
			log.Error("Refund failed after capped purchase, manual adjustment needed",
				"userID", userID, "guildID", guildID, "itemID", itemID, "amount", refundAmount, "error", rerr)
		} else {
			balance = refunded.Balance
		}
	}

	landedCost := def.Price * added.Added
	if landedCost > 0 {
		metrics.CoinsSpent.WithLabelValues(string(domain.TxShopPurchase)).Add(float64(landedCost))
	}
	log.Info("Purchase completed", "userID", userID, "itemID", itemID, "quantity", added.Added, "cost", landedCost)

	return &PurchaseResult{
		ItemID:   itemID,
		Quantity: added.Added,
		Cost:     landedCost,
		Capped:   added.Capped,
		Balance:  balance,
	}, nil
}
