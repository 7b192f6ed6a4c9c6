package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/apperr"
)

type fakeEntry struct {
	locked   float64
	consumed float64
	count    int64
}

// fakeRepository keeps the single ledger row per pair in memory and mirrors
// the aggregate queries the service issues against it.
type fakeRepository struct {
	accounts map[int64]*models.BillingAccount
	entries  map[string]*fakeEntry
	err      error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		accounts: make(map[int64]*models.BillingAccount),
		entries:  make(map[string]*fakeEntry),
	}
}

func (r *fakeRepository) key(accountID int64, challengeID string) string {
	return fmt.Sprintf("%d/%s", accountID, challengeID)
}

func (r *fakeRepository) addAccount(id int64, budget *float64) {
	r.accounts[id] = &models.BillingAccount{ID: id, Name: "acct", BudgetAmount: budget}
}

func (r *fakeRepository) GetBillingAccount(id int64) (*models.BillingAccount, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.accounts[id], nil
}

func (r *fakeRepository) CountChallengeEntries(accountID int64, challengeID string) (int64, error) {
	entry, ok := r.entries[r.key(accountID, challengeID)]
	if !ok {
		return 0, nil
	}
	return entry.count, nil
}

func (r *fakeRepository) SumLockedConsumedAmount(accountID int64, challengeID string) (float64, error) {
	entry, ok := r.entries[r.key(accountID, challengeID)]
	if !ok {
		return 0, nil
	}
	return FloatAdd(entry.locked, entry.consumed), nil
}

func (r *fakeRepository) SumConsumedAmount(accountID int64, challengeID string) (float64, error) {
	entry, ok := r.entries[r.key(accountID, challengeID)]
	if !ok {
		return 0, nil
	}
	return entry.consumed, nil
}

func (r *fakeRepository) CreateChallengeBudget(accountID int64, challengeID string, locked, consumed float64) error {
	r.entries[r.key(accountID, challengeID)] = &fakeEntry{locked: locked, consumed: consumed, count: 1}
	return nil
}

func (r *fakeRepository) UpdateChallengeBudget(accountID int64, challengeID string, locked, consumed float64) error {
	entry := r.entries[r.key(accountID, challengeID)]
	entry.locked = locked
	entry.consumed = consumed
	return nil
}

// recordingPublisher captures published payloads.
type recordingPublisher struct {
	payloads []string
}

func (p *recordingPublisher) Publish(payload string) {
	p.payloads = append(p.payloads, payload)
}

func budget(v float64) *float64 {
	return &v
}

func TestLockAmountAccountNotFound(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)

	_, err := svc.LockAmount(42, uuid.NewString(), 10.00)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestLockAmountNegative(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	svc := NewService(repo, nil)

	_, err := svc.LockAmount(1, uuid.NewString(), -1.00)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestLockAmountInsufficientBudget(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	challengeID := uuid.NewString()
	repo.entries[repo.key(1, challengeID)] = &fakeEntry{locked: 35.00, consumed: 25.00, count: 1}

	svc := NewService(repo, nil)

	_, err := svc.LockAmount(1, challengeID, 41.00)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientBudget, apperr.KindOf(err))

	ctx := apperr.BudgetOf(err)
	require.NotNil(t, ctx)
	assert.Equal(t, 100.00, ctx.BudgetAmount)
	assert.Equal(t, 41.00, ctx.RequestedAmount)
	assert.Equal(t, 60.00, ctx.CurrentSum)
}

func TestLockAmountWithinBudgetOverwritesEntry(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	challengeID := uuid.NewString()
	repo.entries[repo.key(1, challengeID)] = &fakeEntry{locked: 35.00, consumed: 25.00, count: 1}

	svc := NewService(repo, nil)

	applied, err := svc.LockAmount(1, challengeID, 40.00)
	require.NoError(t, err)
	assert.Equal(t, 40.00, applied)

	entry := repo.entries[repo.key(1, challengeID)]
	assert.Equal(t, 40.00, entry.locked)
	assert.Equal(t, 0.00, entry.consumed) // consumed is reset on lock
}

func TestLockAmountCreatesFirstEntry(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	challengeID := uuid.NewString()

	svc := NewService(repo, nil)

	_, err := svc.LockAmount(1, challengeID, 40.00)
	require.NoError(t, err)

	entry := repo.entries[repo.key(1, challengeID)]
	require.NotNil(t, entry)
	assert.Equal(t, 40.00, entry.locked)
	assert.Equal(t, 0.00, entry.consumed)
}

func TestLockAmountNilBudgetTreatedAsZero(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, nil)

	svc := NewService(repo, nil)

	_, err := svc.LockAmount(1, uuid.NewString(), 0.01)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientBudget, apperr.KindOf(err))
}

func TestLockAmountMultipleEntriesConflict(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	challengeID := uuid.NewString()
	repo.entries[repo.key(1, challengeID)] = &fakeEntry{count: 2}

	svc := NewService(repo, nil)

	_, err := svc.LockAmount(1, challengeID, 1.00)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestConsumeAmountIgnoresLockedInBudgetCheck(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	challengeID := uuid.NewString()
	// Locked nearly exhausts the budget, but only consumed counts here.
	repo.entries[repo.key(1, challengeID)] = &fakeEntry{locked: 95.00, consumed: 0.00, count: 1}

	svc := NewService(repo, nil)

	applied, err := svc.ConsumeAmount(1, challengeID, 90.00, 5.00)
	require.NoError(t, err)
	assert.Equal(t, 90.00, applied)

	entry := repo.entries[repo.key(1, challengeID)]
	assert.Equal(t, 0.00, entry.locked) // locked is reset on consume
	assert.Equal(t, 90.00, entry.consumed)
}

func TestConsumeAmountInsufficientBudget(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	challengeID := uuid.NewString()
	repo.entries[repo.key(1, challengeID)] = &fakeEntry{consumed: 60.00, count: 1}

	svc := NewService(repo, nil)

	_, err := svc.ConsumeAmount(1, challengeID, 41.00, 0)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientBudget, apperr.KindOf(err))
}

func TestConsumeAmountPublishesEvent(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(7, budget(500.00))
	challengeID := uuid.NewString()

	pub := &recordingPublisher{}
	svc := NewService(repo, pub)

	_, err := svc.ConsumeAmount(7, challengeID, 200.00, 20.00)
	require.NoError(t, err)
	require.Len(t, pub.payloads, 1)

	var event map[string]any
	require.NoError(t, json.Unmarshal([]byte(pub.payloads[0]), &event))
	assert.Equal(t, float64(7), event["billingAccountId"])
	assert.Equal(t, 200.00, event["actualSpent"])
	assert.Equal(t, challengeID, event["challengeId"])
	assert.Equal(t, 20.00, event["markup"])
}

func TestConsumeAmountNoEventOnRejection(t *testing.T) {
	repo := newFakeRepository()
	repo.addAccount(7, budget(10.00))

	pub := &recordingPublisher{}
	svc := NewService(repo, pub)

	_, err := svc.ConsumeAmount(7, uuid.NewString(), 200.00, 0)
	require.Error(t, err)
	assert.Empty(t, pub.payloads)
}

func TestSequentialReplayEnforcesCeiling(t *testing.T) {
	// Single-threaded replay of lock calls must honor the ceiling at every
	// accepted write. Concurrency is deliberately not asserted; the
	// read-compare-write sequence is racy by design.
	repo := newFakeRepository()
	repo.addAccount(1, budget(100.00))
	challengeID := uuid.NewString()

	svc := NewService(repo, nil)

	_, err := svc.LockAmount(1, challengeID, 60.00)
	require.NoError(t, err)

	// Re-validated against the current sum (60) rather than cumulative history.
	_, err = svc.LockAmount(1, challengeID, 41.00)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInsufficientBudget, apperr.KindOf(err))

	// 40 + 60 lands exactly on the ceiling and is accepted; the row is
	// overwritten so the new current sum drops to 40.
	_, err = svc.LockAmount(1, challengeID, 40.00)
	require.NoError(t, err)
	entry := repo.entries[repo.key(1, challengeID)]
	assert.Equal(t, 40.00, entry.locked)
	assert.Equal(t, 0.00, entry.consumed)

	// With the smaller sum, a larger lock now fits again.
	_, err = svc.LockAmount(1, challengeID, 60.00)
	require.NoError(t, err)
}

func TestRepositoryErrorWrappedInternal(t *testing.T) {
	repo := newFakeRepository()
	repo.err = errors.New("connection refused")

	svc := NewService(repo, nil)

	_, err := svc.LockAmount(1, uuid.NewString(), 10.00)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}
