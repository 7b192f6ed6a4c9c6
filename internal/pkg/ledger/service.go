// Package ledger tracks a billing account's budget against the challenges
// drawing on it. The relational store is the single source of truth: every
// operation reads the current sums, validates against the budget and writes
// the single ledger row back. The read-compare-write sequence is not wrapped
// in a transaction, for compatibility with the legacy service; two concurrent calls for
// the same pair can both pass the budget check before either write lands.
package ledger

import (
	"encoding/json"
	"fmt"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/apperr"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/publisher"
)

// ConsumedAmountEvent is the payload published after a successful consume.
// Field names are fixed by the downstream consumer.
type ConsumedAmountEvent struct {
	BillingAccountID int64   `json:"billingAccountId"`
	ActualSpent      float64 `json:"actualSpent"`
	ChallengeID      string  `json:"challengeId"`
	Markup           float64 `json:"markup"`
}

// Service implements the budget ledger operations.
type Service struct {
	repo      Repository
	publisher publisher.Publisher
}

// NewService creates a ledger service from an injected repository and
// publisher.
func NewService(repo Repository, pub publisher.Publisher) *Service {
	if pub == nil {
		pub = publisher.NopPublisher{}
	}
	return &Service{repo: repo, publisher: pub}
}

// NewServiceFromDB creates a ledger service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, pub publisher.Publisher) *Service {
	return NewService(NewRepository(db), pub)
}

// LockAmount reserves budget for a challenge. The existing ledger row, if
// any, is overwritten with the requested lock and a consumed amount of zero.
// Returns the applied amount.
func (s *Service) LockAmount(billingAccountID int64, challengeID string, requestedLockAmount float64) (float64, error) {
	if requestedLockAmount < 0 {
		return 0, apperr.Validation("the lock amount should not be negative")
	}

	budgetAmount, err := s.accountBudget(billingAccountID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CountChallengeEntries(billingAccountID, challengeID)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	sumLockedConsumed, err := s.repo.SumLockedConsumedAmount(billingAccountID, challengeID)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	if FloatAdd(requestedLockAmount, sumLockedConsumed) > budgetAmount {
		return 0, apperr.InsufficientBudget(
			insufficientBudgetMessage(budgetAmount, billingAccountID, "lock", requestedLockAmount, sumLockedConsumed),
			budgetAmount, requestedLockAmount, sumLockedConsumed)
	}

	if err := s.writeEntry(billingAccountID, challengeID, count, requestedLockAmount, 0); err != nil {
		return 0, err
	}
	fiberlog.Debugf("locked %.2f for challenge %s in billing account %d", requestedLockAmount, challengeID, billingAccountID)

	return requestedLockAmount, nil
}

// ConsumeAmount charges actually spent budget for a challenge. Only already
// consumed amounts count against the budget here: a lock is a reservation,
// consumption is the binding charge. The ledger row is overwritten with the
// requested consumption and a locked amount of zero, and a best-effort event
// is published. Returns the applied amount.
func (s *Service) ConsumeAmount(billingAccountID int64, challengeID string, requestedConsumeAmount, markup float64) (float64, error) {
	if requestedConsumeAmount < 0 {
		return 0, apperr.Validation("the consumed amount should not be negative")
	}

	budgetAmount, err := s.accountBudget(billingAccountID)
	if err != nil {
		return 0, err
	}

	count, err := s.repo.CountChallengeEntries(billingAccountID, challengeID)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	sumConsumed, err := s.repo.SumConsumedAmount(billingAccountID, challengeID)
	if err != nil {
		return 0, apperr.Internal(err)
	}

	if FloatAdd(requestedConsumeAmount, sumConsumed) > budgetAmount {
		return 0, apperr.InsufficientBudget(
			insufficientBudgetMessage(budgetAmount, billingAccountID, "consume", requestedConsumeAmount, sumConsumed),
			budgetAmount, requestedConsumeAmount, sumConsumed)
	}

	if err := s.writeEntry(billingAccountID, challengeID, count, 0, requestedConsumeAmount); err != nil {
		return 0, err
	}
	fiberlog.Debugf("consumed %.2f for challenge %s in billing account %d", requestedConsumeAmount, challengeID, billingAccountID)

	s.publishConsumedAmount(billingAccountID, challengeID, requestedConsumeAmount, markup)

	return requestedConsumeAmount, nil
}

// accountBudget loads the account and returns its budget ceiling. A missing
// ceiling is treated as zero.
func (s *Service) accountBudget(billingAccountID int64) (float64, error) {
	account, err := s.repo.GetBillingAccount(billingAccountID)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if account == nil {
		return 0, apperr.NotFound("couldn't find billing account with id %d", billingAccountID)
	}
	if account.BudgetAmount == nil {
		return 0, nil
	}
	return *account.BudgetAmount, nil
}

// writeEntry inserts or overwrites the single ledger row for the pair.
// Note the overwrite resets the other amount to zero instead of preserving
// it, for compatibility with the legacy service.
func (s *Service) writeEntry(billingAccountID int64, challengeID string, count int64, locked, consumed float64) error {
	switch count {
	case 0:
		if err := s.repo.CreateChallengeBudget(billingAccountID, challengeID, locked, consumed); err != nil {
			return apperr.Internal(err)
		}
	case 1:
		if err := s.repo.UpdateChallengeBudget(billingAccountID, challengeID, locked, consumed); err != nil {
			return apperr.Internal(err)
		}
	default:
		return apperr.Conflict("multiple entries are found for challenge %s in billing account %d", challengeID, billingAccountID)
	}
	return nil
}

func (s *Service) publishConsumedAmount(billingAccountID int64, challengeID string, actualSpent, markup float64) {
	payload, err := json.Marshal(ConsumedAmountEvent{
		BillingAccountID: billingAccountID,
		ActualSpent:      actualSpent,
		ChallengeID:      challengeID,
		Markup:           markup,
	})
	if err != nil {
		fiberlog.Errorf("could not encode consumed amount event: %v", err)
		return
	}
	s.publisher.Publish(string(payload))
}

func insufficientBudgetMessage(budget float64, billingAccountID int64, op string, requested, sum float64) string {
	return fmt.Sprintf("insufficient budget amount (%v) for billing account %d: requested %s amount %v, sum of already committed amounts %v",
		budget, billingAccountID, op, requested, sum)
}
