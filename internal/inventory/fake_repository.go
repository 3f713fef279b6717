package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/repository"
)

// FakeRepository is an in-memory repository.Inventory for tests. Transactions
// write through to the shared state; Rollback restores the snapshot taken
// at BeginTx, so aborted operations leave no trace.
type FakeRepository struct {
	mu         sync.Mutex
	stacks     map[string]domain.InventoryEntry
	effects    map[string]domain.ActiveEffect
	failUpsert error
}

// NewFakeRepository creates an empty fake inventory repository
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		stacks:  make(map[string]domain.InventoryEntry),
		effects: make(map[string]domain.ActiveEffect),
	}
}

func stackKey(userID, guildID, itemID, variant string) string {
	return fmt.Sprintf("%s|%s|%s|%s", userID, guildID, itemID, variant)
}

func effectKey(userID, guildID string, effectType domain.EffectType) string {
	return fmt.Sprintf("%s|%s|%s", userID, guildID, effectType)
}

// SeedStack inserts a stack directly, bypassing service logic
func (f *FakeRepository) SeedStack(entry domain.InventoryEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stacks[stackKey(entry.UserID, entry.GuildID, entry.ItemID, entry.Variant)] = entry
}

// SeedEffect inserts an active effect directly, bypassing service logic
func (f *FakeRepository) SeedEffect(effect domain.ActiveEffect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effects[effectKey(effect.UserID, effect.GuildID, effect.Type)] = effect
}

func (f *FakeRepository) GetStack(ctx context.Context, userID, guildID, itemID, variant string) (*domain.InventoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.stacks[stackKey(userID, guildID, itemID, variant)]; ok {
		e := entry
		return &e, nil
	}
	return nil, nil
}

func (f *FakeRepository) GetStacks(ctx context.Context, userID, guildID string) ([]domain.InventoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []domain.InventoryEntry
	for _, entry := range f.stacks {
		if entry.UserID == userID && entry.GuildID == guildID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// FailNextUpsert makes the next stack write fail with err.
func (f *FakeRepository) FailNextUpsert(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpsert = err
}

func (f *FakeRepository) UpsertStack(ctx context.Context, entry domain.InventoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failUpsert; err != nil {
		f.failUpsert = nil
		return err
	}
	f.stacks[stackKey(entry.UserID, entry.GuildID, entry.ItemID, entry.Variant)] = entry
	return nil
}

func (f *FakeRepository) DeleteStack(ctx context.Context, userID, guildID, itemID, variant string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stacks, stackKey(userID, guildID, itemID, variant))
	return nil
}

func (f *FakeRepository) DeleteExpiredStacks(ctx context.Context, userID, guildID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, entry := range f.stacks {
		if entry.UserID == userID && entry.GuildID == guildID && entry.Expired(now) {
			delete(f.stacks, key)
		}
	}
	return nil
}

func (f *FakeRepository) GetActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) (*domain.ActiveEffect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if effect, ok := f.effects[effectKey(userID, guildID, effectType)]; ok {
		e := effect
		return &e, nil
	}
	return nil, nil
}

func (f *FakeRepository) GetActiveEffects(ctx context.Context, userID, guildID string) ([]domain.ActiveEffect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var effects []domain.ActiveEffect
	for _, effect := range f.effects {
		if effect.UserID == userID && effect.GuildID == guildID {
			effects = append(effects, effect)
		}
	}
	return effects, nil
}

func (f *FakeRepository) PutActiveEffect(ctx context.Context, effect domain.ActiveEffect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effects[effectKey(effect.UserID, effect.GuildID, effect.Type)] = effect
	return nil
}

func (f *FakeRepository) DeleteActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.effects, effectKey(userID, guildID, effectType))
	return nil
}

func (f *FakeRepository) DeleteExpiredEffects(ctx context.Context, userID, guildID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, effect := range f.effects {
		if effect.UserID == userID && effect.GuildID == guildID && effect.Expired(now) {
			delete(f.effects, key)
		}
	}
	return nil
}

func (f *FakeRepository) BeginTx(ctx context.Context) (repository.InventoryTx, error) {
	return &fakeTx{repo: f, snap: f.snapshot()}, nil
}

// inventorySnapshot captures the repository state at BeginTx for rollback.
type inventorySnapshot struct {
	stacks  map[string]domain.InventoryEntry
	effects map[string]domain.ActiveEffect
}

func (f *FakeRepository) snapshot() *inventorySnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := &inventorySnapshot{
		stacks:  make(map[string]domain.InventoryEntry, len(f.stacks)),
		effects: make(map[string]domain.ActiveEffect, len(f.effects)),
	}
	for k, v := range f.stacks {
		snap.stacks[k] = v
	}
	for k, v := range f.effects {
		snap.effects[k] = v
	}
	return snap
}

func (f *FakeRepository) restore(snap *inventorySnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stacks = snap.stacks
	f.effects = snap.effects
}

type fakeTx struct {
	repo *FakeRepository
	snap *inventorySnapshot
	done bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.done = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.repo.restore(t.snap)
	return nil
}

func (t *fakeTx) GetStack(ctx context.Context, userID, guildID, itemID, variant string) (*domain.InventoryEntry, error) {
	return t.repo.GetStack(ctx, userID, guildID, itemID, variant)
}

func (t *fakeTx) UpsertStack(ctx context.Context, entry domain.InventoryEntry) error {
	return t.repo.UpsertStack(ctx, entry)
}

func (t *fakeTx) DeleteStack(ctx context.Context, userID, guildID, itemID, variant string) error {
	return t.repo.DeleteStack(ctx, userID, guildID, itemID, variant)
}

func (t *fakeTx) GetActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) (*domain.ActiveEffect, error) {
	return t.repo.GetActiveEffect(ctx, userID, guildID, effectType)
}

func (t *fakeTx) PutActiveEffect(ctx context.Context, effect domain.ActiveEffect) error {
	return t.repo.PutActiveEffect(ctx, effect)
}

func (t *fakeTx) DeleteActiveEffect(ctx context.Context, userID, guildID string, effectType domain.EffectType) error {
	return t.repo.DeleteActiveEffect(ctx, userID, guildID, effectType)
}
