package ledger

import (
	"errors"

	"gorm.io/gorm"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
)

// Repository provides DB operations used by the budget ledger service.
type Repository interface {
	GetBillingAccount(id int64) (*models.BillingAccount, error)
	CountChallengeEntries(billingAccountID int64, challengeID string) (int64, error)
	SumLockedConsumedAmount(billingAccountID int64, challengeID string) (float64, error)
	SumConsumedAmount(billingAccountID int64, challengeID string) (float64, error)
	CreateChallengeBudget(billingAccountID int64, challengeID string, locked, consumed float64) error
	UpdateChallengeBudget(billingAccountID int64, challengeID string, locked, consumed float64) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a ledger repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetBillingAccount(id int64) (*models.BillingAccount, error) {
	var account models.BillingAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) CountChallengeEntries(billingAccountID int64, challengeID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ChallengeBudget{}).
		Where("billing_account_id = ? AND challenge_id = ?", billingAccountID, challengeID).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) SumLockedConsumedAmount(billingAccountID int64, challengeID string) (float64, error) {
	var sum float64
	err := r.db.Model(&models.ChallengeBudget{}).
		Select("COALESCE(SUM(locked_amount + consumed_amount), 0)").
		Where("billing_account_id = ? AND challenge_id = ?", billingAccountID, challengeID).
		Scan(&sum).Error
	return sum, err
}

func (r *gormRepository) SumConsumedAmount(billingAccountID int64, challengeID string) (float64, error) {
	var sum float64
	err := r.db.Model(&models.ChallengeBudget{}).
		Select("COALESCE(SUM(consumed_amount), 0)").
		Where("billing_account_id = ? AND challenge_id = ?", billingAccountID, challengeID).
		Scan(&sum).Error
	return sum, err
}

func (r *gormRepository) CreateChallengeBudget(billingAccountID int64, challengeID string, locked, consumed float64) error {
	entry := models.ChallengeBudget{
		BillingAccountID: billingAccountID,
		ChallengeID:      challengeID,
		LockedAmount:     locked,
		ConsumedAmount:   consumed,
	}
	return r.db.Create(&entry).Error
}

func (r *gormRepository) UpdateChallengeBudget(billingAccountID int64, challengeID string, locked, consumed float64) error {
	return r.db.Model(&models.ChallengeBudget{}).
		Where("billing_account_id = ? AND challenge_id = ?", billingAccountID, challengeID).
		Updates(map[string]interface{}{
			"locked_amount":   locked,
			"consumed_amount": consumed,
		}).Error
}
