package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossfall/grottobot/internal/catalog"
	"github.com/mossfall/grottobot/internal/domain"
	"github.com/mossfall/grottobot/internal/event"
	"github.com/mossfall/grottobot/internal/inventory"
	"github.com/mossfall/grottobot/internal/ledger"
)

const (
	testUser  = "user-1"
	testOther = "user-2"
	testGuild = "guild-1"
)

// testEnv wires the real services over the in-package fakes so handlers are
// exercised end to end, decoding included.
type testEnv struct {
	ledgerRepo *ledger.FakeRepository
	catRepo    *catalog.FakeRepository
	ledgerSvc  ledger.Service
	invSvc     inventory.Service
	catalogSvc catalog.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	InitValidator()

	ledgerRepo := ledger.NewFakeRepository()
	invRepo := inventory.NewFakeRepository()
	catRepo := catalog.NewFakeRepository()
	bus := event.NewMemoryBus()

	rnd := func() float64 { return 0.5 }
	catalogSvc := catalog.NewService(catRepo)
	invSvc := inventory.NewService(invRepo, catalogSvc, bus, rnd)
	ledgerSvc := ledger.NewService(ledgerRepo, catalogSvc, invSvc, bus, rnd)
	invSvc.SetCrediter(ledgerSvc)

	return &testEnv{
		ledgerRepo: ledgerRepo,
		catRepo:    catRepo,
		ledgerSvc:  ledgerSvc,
		invSvc:     invSvc,
		catalogSvc: catalogSvc,
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleClaimDaily(t *testing.T) {
	env := newTestEnv(t)
	h := HandleClaimDaily(env.ledgerSvc)

	rec := postJSON(t, h, EarnRequest{UserID: testUser, GuildID: testGuild})
	require.Equal(t, http.StatusOK, rec.Code)

	var result ledger.EarnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.DefaultDailyAmount, result.Amount)
	assert.Equal(t, domain.DefaultDailyAmount, result.Balance)

	// Second claim inside the window is rejected with a retry hint.
	rec = postJSON(t, h, EarnRequest{UserID: testUser, GuildID: testGuild})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var cooldown CooldownResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cooldown))
	assert.Equal(t, "daily", cooldown.Action)
	assert.Greater(t, cooldown.RetrySeconds, 0)
}

func TestHandleClaimDaily_ValidationError(t *testing.T) {
	env := newTestEnv(t)
	h := HandleClaimDaily(env.ledgerSvc)

	rec := postJSON(t, h, EarnRequest{GuildID: testGuild})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrMsgInvalidRequestSummary, resp.Error)
	assert.Contains(t, resp.Fields, "userid")
}

func TestHandleTransfer_InsufficientFunds(t *testing.T) {
	env := newTestEnv(t)
	env.ledgerRepo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 10})

	rec := postJSON(t, HandleTransfer(env.ledgerSvc), TransferRequest{
		FromUserID: testUser, ToUserID: testOther, GuildID: testGuild, Amount: 100,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrMsgNotEnoughMoneyError, resp.Error)
}

func TestHandleTransfer_Success(t *testing.T) {
	env := newTestEnv(t)
	env.ledgerRepo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 300})

	rec := postJSON(t, HandleTransfer(env.ledgerSvc), TransferRequest{
		FromUserID: testUser, ToUserID: testOther, GuildID: testGuild, Amount: 100,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Transfer completed"}`, rec.Body.String())
}

func TestHandleGetAccount_MissingParam(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/?user_id="+testUser, nil)
	rec := httptest.NewRecorder()
	HandleGetAccount(env.ledgerSvc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "guild_id")
}

func TestHandleGetAccount(t *testing.T) {
	env := newTestEnv(t)
	env.ledgerRepo.SeedAccount(domain.Account{UserID: testUser, GuildID: testGuild, Balance: 250, Bank: 50})

	req := httptest.NewRequest(http.MethodGet, "/?user_id="+testUser+"&guild_id="+testGuild, nil)
	rec := httptest.NewRecorder()
	HandleGetAccount(env.ledgerSvc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot ledger.AccountSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, 250, snapshot.Account.Balance)
	assert.Equal(t, 50, snapshot.Account.Bank)
}

func TestHandleAddItem(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogItem(t, env, domain.ItemDefinition{
		ID: "iron_ore", Name: "Iron Ore", Type: domain.ItemTypeMaterial,
		Rarity: domain.RarityCommon, Price: 10, MaxQuantity: 99,
	})

	rec := postJSON(t, HandleAddItem(env.invSvc), AddItemRequest{
		UserID: testUser, GuildID: testGuild, ItemID: "iron_ore", Quantity: 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.AddItemResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 3, result.Added)
	assert.False(t, result.Capped)
}

func TestHandleAddItem_UnknownItem(t *testing.T) {
	env := newTestEnv(t)

	rec := postJSON(t, HandleAddItem(env.invSvc), AddItemRequest{
		UserID: testUser, GuildID: testGuild, ItemID: "no_such_item", Quantity: 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrMsgItemNotFoundError, resp.Error)
}

func TestHandleUseItem_NotUsable(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogItem(t, env, domain.ItemDefinition{
		ID: "iron_ore", Name: "Iron Ore", Type: domain.ItemTypeMaterial,
		Rarity: domain.RarityCommon, Price: 10, MaxQuantity: 99,
	})

	rec := postJSON(t, HandleUseItem(env.invSvc), UseItemRequest{
		UserID: testUser, GuildID: testGuild, ItemID: "iron_ore",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrMsgItemNotUsableError, resp.Error)
}

func TestHandleUpsertItem_InvalidRarity(t *testing.T) {
	env := newTestEnv(t)

	rec := postJSON(t, HandleUpsertItem(env.catalogSvc), UpsertItemRequest{
		GuildID: testGuild, ItemID: "weird", Name: "Weird",
		Type: "material", Rarity: "ultra",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "rarity")
}

func seedCatalogItem(t *testing.T, env *testEnv, def domain.ItemDefinition) {
	t.Helper()
	def.GuildID = testGuild
	rec := postJSON(t, HandleUpsertItem(env.catalogSvc), UpsertItemRequest{
		GuildID:       def.GuildID,
		ItemID:        def.ID,
		Name:          def.Name,
		Description:   def.Description,
		Type:          string(def.Type),
		Rarity:        string(def.Rarity),
		Price:         def.Price,
		MaxQuantity:   def.MaxQuantity,
		DurationHours: def.DurationHours,
		EffectType:    string(def.EffectType),
		EffectValue:   def.EffectValue,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}
