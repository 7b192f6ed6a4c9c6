// Package account manages billing account records and their user
// memberships. Budget and fee logic live in the ledger and fees packages.
package account

import (
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/apperr"
	"github.com/topcoder-platform/tc-billing-account-service/internal/pkg/sequence"
)

// Page is a paged query result.
type Page[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Service implements billing account management.
type Service struct {
	repo Repository
	seq  sequence.Generator
}

// NewService creates an account service from injected collaborators.
func NewService(repo Repository, seq sequence.Generator) *Service {
	return &Service{repo: repo, seq: seq}
}

// NewServiceFromDB creates an account service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), sequence.NewGenerator(db))
}

// SearchBillingAccounts returns a page of all billing accounts.
func (s *Service) SearchBillingAccounts(limit, offset int) (*Page[models.BillingAccount], error) {
	limit, offset = normalizePaging(limit, offset)
	accounts, total, err := s.repo.SearchBillingAccounts(limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Page[models.BillingAccount]{Data: accounts, Total: total, Limit: limit, Offset: offset}, nil
}

// SearchMyBillingAccounts returns a page of the accounts the given user
// belongs to.
func (s *Service) SearchMyBillingAccounts(userID int64, limit, offset int) (*Page[models.BillingAccount], error) {
	limit, offset = normalizePaging(limit, offset)
	accounts, total, err := s.repo.SearchMyBillingAccounts(userID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Page[models.BillingAccount]{Data: accounts, Total: total, Limit: limit, Offset: offset}, nil
}

// GetBillingAccount returns a billing account by id.
func (s *Service) GetBillingAccount(id int64) (*models.BillingAccount, error) {
	account, err := s.repo.GetBillingAccount(id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if account == nil {
		return nil, apperr.NotFound("couldn't find billing account with id %d", id)
	}
	return account, nil
}

// CreateBillingAccount validates and persists a new billing account, links it
// to its client and returns the stored record.
func (s *Service) CreateBillingAccount(account *models.BillingAccount, status string, userID int64) (*models.BillingAccount, error) {
	active, err := activeFlagFromStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.validateClientAndCompany(account); err != nil {
		return nil, err
	}

	id, err := s.seq.NextID(sequence.BillingAccountSeq)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	fiberlog.Debugf("next billing account id: %d", id)

	account.ID = id
	account.Active = active
	account.CreatedBy = userID
	account.UpdatedBy = userID
	if err := s.repo.CreateBillingAccount(account); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.repo.AddBillingAccountToClient(id, account.ClientID, userID); err != nil {
		return nil, apperr.Internal(err)
	}

	return s.GetBillingAccount(id)
}

// UpdateBillingAccount validates and persists changes to an existing billing
// account, re-linking it to the (possibly changed) client.
func (s *Service) UpdateBillingAccount(account *models.BillingAccount, status string, userID int64) (*models.BillingAccount, error) {
	active, err := activeFlagFromStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.validateClientAndCompany(account); err != nil {
		return nil, err
	}
	if _, err := s.GetBillingAccount(account.ID); err != nil {
		return nil, err
	}

	account.Active = active
	account.UpdatedBy = userID
	if err := s.repo.UpdateBillingAccount(account); err != nil {
		return nil, apperr.Internal(err)
	}

	// Replace the client mapping row.
	if err := s.repo.RemoveBillingAccountFromClient(account.ID); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.repo.AddBillingAccountToClient(account.ID, account.ClientID, userID); err != nil {
		return nil, apperr.Internal(err)
	}

	return s.GetBillingAccount(account.ID)
}

// GetBillingAccountUsers returns a page of the users attached to an account.
func (s *Service) GetBillingAccountUsers(billingAccountID int64, limit, offset int) (*Page[models.UserAccount], error) {
	limit, offset = normalizePaging(limit, offset)
	users, total, err := s.repo.GetBillingAccountUsers(billingAccountID, limit, offset)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Page[models.UserAccount]{Data: users, Total: total, Limit: limit, Offset: offset}, nil
}

// AddUserToBillingAccount attaches a Topcoder user to a billing account,
// creating the local user account record on first use.
func (s *Service) AddUserToBillingAccount(billingAccountID, userID, actorID int64) (*models.BillingAccount, error) {
	handle, err := s.repo.GetTCUserHandle(userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if handle == "" {
		return nil, apperr.NotFound("user with the following id doesn't exist %d", userID)
	}

	userAccount, err := s.repo.GetUserAccountByUserID(userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if userAccount == nil {
		id, err := s.seq.NextID(sequence.UserAccountSeq)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		userAccount = &models.UserAccount{ID: id, UserID: userID, Handle: handle, CreatedBy: actorID}
		if err := s.repo.CreateUserAccount(userAccount); err != nil {
			return nil, apperr.Internal(err)
		}
	} else {
		belongs, err := s.repo.CheckUserBelongsToBillingAccount(billingAccountID, userAccount.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if belongs {
			return nil, apperr.Conflict("the user {id: %d, handle: %s} already belongs to this billing account", userID, handle)
		}
	}

	if err := s.repo.AddUserToBillingAccount(billingAccountID, userAccount.ID, actorID); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.GetBillingAccount(billingAccountID)
}

// RemoveUserFromBillingAccount detaches a Topcoder user from a billing
// account.
func (s *Service) RemoveUserFromBillingAccount(billingAccountID, userID int64) error {
	handle, err := s.repo.GetTCUserHandle(userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if handle == "" {
		return apperr.NotFound("user with the following id doesn't exist %d", userID)
	}

	userAccount, err := s.repo.GetUserAccountByUserID(userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if userAccount == nil {
		return apperr.Validation("the user {id: %d, handle: %s} does not even have a user account", userID, handle)
	}

	belongs, err := s.repo.CheckUserBelongsToBillingAccount(billingAccountID, userAccount.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !belongs {
		return apperr.Validation("the user {id: %d, handle: %s} does not belong to this billing account", userID, handle)
	}

	if err := s.repo.RemoveUserFromBillingAccount(billingAccountID, userAccount.ID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *Service) validateClientAndCompany(account *models.BillingAccount) error {
	exists, err := s.repo.CheckCompanyExists(account.CompanyID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !exists {
		return apperr.Validation("the company identified by id = %d does not exist", account.CompanyID)
	}

	exists, err = s.repo.CheckClientExists(account.ClientID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !exists {
		return apperr.Validation("the client identified by id = %d does not exist", account.ClientID)
	}
	return nil
}

func activeFlagFromStatus(status string) (bool, error) {
	switch status {
	case models.StatusActive:
		return true, nil
	case models.StatusInactive:
		return false, nil
	default:
		return false, apperr.Validation("invalid billing account status %q", status)
	}
}

func normalizePaging(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
