// Package fees maintains a billing account's fee schedule: either a set of
// fixed per-challenge-type fees or a single account-wide percentage, never
// both. Resubmitted schedules are reconciled against the stored rows by id.
package fees

import (
	"encoding/json"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/apperr"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/cache"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/sequence"
)

const (
	challengeTypeCacheKey = "CHALLENGE_TYPE_CACHE_KEY"
	challengeTypeCacheTTL = 10 * time.Minute
)

// Service implements the fee schedule operations.
type Service struct {
	repo  Repository
	seq   sequence.Generator
	cache cache.Cache
}

// NewService creates a fee service from injected collaborators.
func NewService(repo Repository, seq sequence.Generator, c cache.Cache) *Service {
	if c == nil {
		c = cache.Default()
	}
	return &Service{repo: repo, seq: seq, cache: c}
}

// NewServiceFromDB creates a fee service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), sequence.NewGenerator(db), cache.Default())
}

// GetFees returns the billing account's current fee schedule. An active
// percentage row wins; otherwise the non-deleted fixed fee rows are returned,
// enriched with their challenge type data.
func (s *Service) GetFees(billingAccountID int64) (*BillingAccountFees, error) {
	if billingAccountID <= 0 {
		return nil, apperr.Validation("the billing account id must be positive")
	}
	if err := s.checkAccountExists(billingAccountID); err != nil {
		return nil, err
	}

	percentage, err := s.repo.GetChallengeFeePercentage(billingAccountID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if percentage != nil && percentage.Active {
		return &BillingAccountFees{
			ChallengeFeeFixed:      false,
			ChallengeFeePercentage: percentage.Percentage,
		}, nil
	}

	allFees, err := s.repo.GetChallengeFees(billingAccountID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(allFees) == 0 {
		return nil, apperr.NotFound("the challenge fee was not created for the billing account")
	}

	activeFees := make([]models.ChallengeFee, 0, len(allFees))
	for _, fee := range allFees {
		if !fee.Deleted {
			activeFees = append(activeFees, fee)
		}
	}
	if len(activeFees) == 0 {
		return nil, apperr.NotFound("no active challenge fee found for the billing account")
	}

	s.enrichChallengeTypes(activeFees)

	return &BillingAccountFees{
		ChallengeFees:     activeFees,
		ChallengeFeeFixed: true,
	}, nil
}

// CreateFees establishes the initial fee schedule for a billing account.
// Exactly one percentage row is created in either mode; its active flag
// records which mode is in effect.
func (s *Service) CreateFees(billingAccountID int64, accountFees *BillingAccountFees, userID int64) (*BillingAccountFees, error) {
	if billingAccountID <= 0 {
		return nil, apperr.Validation("the billing account id must be positive")
	}
	if err := validateAccountFees(accountFees); err != nil {
		return nil, err
	}
	if err := s.checkAccountExists(billingAccountID); err != nil {
		return nil, err
	}

	err := s.repo.InTransaction(func(tx Repository) error {
		if accountFees.ChallengeFeeFixed {
			exists, err := tx.ChallengeFeeExists(billingAccountID)
			if err != nil {
				return apperr.Internal(err)
			}
			if exists {
				return apperr.Conflict("the challenge fee was already created for the billing account")
			}

			s.enrichChallengeTypes(accountFees.ChallengeFees)
			for i := range accountFees.ChallengeFees {
				fee := &accountFees.ChallengeFees[i]
				id, err := s.seq.NextID(sequence.ChallengeFeeSeq)
				if err != nil {
					return apperr.Internal(err)
				}
				fee.ID = id
				fee.BillingAccountID = billingAccountID
				fee.CreatedBy = userID
				fee.UpdatedBy = userID
				if err := tx.CreateChallengeFee(fee); err != nil {
					return apperr.Internal(err)
				}
			}
		}

		existing, err := tx.GetChallengeFeePercentage(billingAccountID)
		if err != nil {
			return apperr.Internal(err)
		}
		if existing != nil {
			return apperr.Conflict("the challenge fee was already created for the billing account")
		}

		id, err := s.seq.NextID(sequence.ChallengeFeePercentageSeq)
		if err != nil {
			return apperr.Internal(err)
		}
		percentage := &models.ChallengeFeePercentage{
			ID:               id,
			BillingAccountID: billingAccountID,
			Percentage:       accountFees.ChallengeFeePercentage,
			Active:           !accountFees.ChallengeFeeFixed,
			CreatedBy:        userID,
			UpdatedBy:        userID,
		}
		return wrapInternal(tx.CreateChallengeFeePercentage(percentage))
	})
	if err != nil {
		return nil, err
	}
	return accountFees, nil
}

// UpdateFees reconciles a resubmitted fee schedule against the stored one.
// In fixed mode, fee rows referenced by id are updated, unreferenced stored
// rows are soft deleted in one batch, and id-less fees are inserted. In
// percentage mode all stored fixed fees are soft deleted and the existing
// percentage row is re-activated in place.
func (s *Service) UpdateFees(billingAccountID int64, accountFees *BillingAccountFees, userID int64) (*BillingAccountFees, error) {
	if billingAccountID <= 0 {
		return nil, apperr.Validation("the billing account id must be positive")
	}
	if err := validateAccountFees(accountFees); err != nil {
		return nil, err
	}

	existing, err := s.GetFees(billingAccountID)
	if err != nil {
		return nil, err
	}
	oldFees := existing.ChallengeFees

	err = s.repo.InTransaction(func(tx Repository) error {
		if accountFees.ChallengeFeeFixed {
			if err := s.reconcileFixedFees(tx, billingAccountID, oldFees, accountFees.ChallengeFees, userID); err != nil {
				return err
			}
		} else {
			// Switching to percentage mode retires every stored fixed fee.
			if err := tx.DeleteChallengeFees(feeIDs(oldFees), userID); err != nil {
				return apperr.Internal(err)
			}
		}

		percentage, err := tx.GetChallengeFeePercentage(billingAccountID)
		if err != nil {
			return apperr.Internal(err)
		}
		if percentage == nil {
			return apperr.NotFound("the percentage fee does not exist for the billing account %d", billingAccountID)
		}

		percentage.Active = !accountFees.ChallengeFeeFixed
		percentage.Percentage = accountFees.ChallengeFeePercentage
		percentage.UpdatedBy = userID
		return wrapInternal(tx.UpdateChallengeFeePercentage(percentage))
	})
	if err != nil {
		return nil, err
	}
	return accountFees, nil
}

// reconcileFixedFees diffs the incoming fee list against the stored rows by
// id: referenced rows are kept and updated, unreferenced ones are soft
// deleted, id-less entries become new rows.
func (s *Service) reconcileFixedFees(tx Repository, billingAccountID int64, oldFees, newFees []models.ChallengeFee, userID int64) error {
	oldByID := make(map[int64]models.ChallengeFee, len(oldFees))
	for _, fee := range oldFees {
		oldByID[fee.ID] = fee
	}

	matched := make(map[int64]bool, len(newFees))
	for _, fee := range newFees {
		if fee.ID <= 0 {
			continue
		}
		if _, ok := oldByID[fee.ID]; !ok {
			return apperr.NotFound("the challenge fee does not exist for the billing account %d with the id %d", billingAccountID, fee.ID)
		}
		matched[fee.ID] = true
	}

	var toDelete []int64
	for _, fee := range oldFees {
		if !matched[fee.ID] {
			toDelete = append(toDelete, fee.ID)
		}
	}
	if err := tx.DeleteChallengeFees(toDelete, userID); err != nil {
		return apperr.Internal(err)
	}

	s.enrichChallengeTypes(newFees)
	for i := range newFees {
		fee := &newFees[i]
		fee.BillingAccountID = billingAccountID
		fee.UpdatedBy = userID
		if fee.ID <= 0 {
			id, err := s.seq.NextID(sequence.ChallengeFeeSeq)
			if err != nil {
				return apperr.Internal(err)
			}
			fee.ID = id
			fee.CreatedBy = userID
			if err := tx.CreateChallengeFee(fee); err != nil {
				return apperr.Internal(err)
			}
		} else {
			if err := tx.UpdateChallengeFee(fee); err != nil {
				return apperr.Internal(err)
			}
		}
	}
	return nil
}

func (s *Service) checkAccountExists(billingAccountID int64) error {
	exists, err := s.repo.CheckBillingAccountExists(billingAccountID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !exists {
		return apperr.NotFound("the billing account does not exist with the id %d", billingAccountID)
	}
	return nil
}

// enrichChallengeTypes copies description and studio flag from the cached
// challenge type snapshot onto each fee. Fees with an unknown type are left
// unenriched.
func (s *Service) enrichChallengeTypes(challengeFees []models.ChallengeFee) {
	if len(challengeFees) == 0 {
		return
	}
	types, err := s.getChallengeTypes()
	if err != nil {
		fiberlog.Warnf("could not load challenge types for enrichment: %v", err)
		return
	}
	for i := range challengeFees {
		for _, t := range types {
			if t.ChallengeTypeID == challengeFees[i].ChallengeTypeID {
				challengeFees[i].ChallengeTypeDescription = t.Description
				challengeFees[i].Studio = t.Studio
			}
		}
	}
}

// getChallengeTypes returns the challenge type reference list, memoized in
// the cache as a JSON snapshot for ten minutes.
func (s *Service) getChallengeTypes() ([]models.ChallengeType, error) {
	if raw, ok := s.cache.Get(challengeTypeCacheKey); ok {
		if data, ok := raw.([]byte); ok {
			var types []models.ChallengeType
			if err := json.Unmarshal(data, &types); err == nil {
				return types, nil
			}
		}
	}

	types, err := s.repo.GetChallengeTypes()
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(types); err == nil {
		s.cache.Put(challengeTypeCacheKey, data, challengeTypeCacheTTL)
	}
	return types, nil
}

// validateAccountFees enforces fee-mode exclusivity: fixed mode needs fee
// rows and no percentage, percentage mode needs a percentage and no fee rows.
func validateAccountFees(accountFees *BillingAccountFees) error {
	if accountFees == nil {
		return apperr.Validation("the fee schedule should be provided")
	}
	if accountFees.ChallengeFeeFixed {
		if len(accountFees.ChallengeFees) == 0 {
			return apperr.Validation("the challenge fee data should be provided")
		}
		if accountFees.ChallengeFeePercentage != nil {
			return apperr.Validation("the challenge fee percentage should not be provided")
		}
	} else {
		if accountFees.ChallengeFees != nil {
			return apperr.Validation("the challenge fee data should not be provided")
		}
		if accountFees.ChallengeFeePercentage == nil {
			return apperr.Validation("the challenge fee percentage should be provided")
		}
	}
	return nil
}

func feeIDs(fees []models.ChallengeFee) []int64 {
	ids := make([]int64, 0, len(fees))
	for _, fee := range fees {
		ids = append(ids, fee.ID)
	}
	return ids
}

func wrapInternal(err error) error {
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}
