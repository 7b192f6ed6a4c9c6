package fees

import (
	"errors"

	"gorm.io/gorm"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
)

// Repository provides DB operations used by the fee schedule service.
type Repository interface {
	CheckBillingAccountExists(id int64) (bool, error)
	GetChallengeFees(billingAccountID int64) ([]models.ChallengeFee, error)
	ChallengeFeeExists(billingAccountID int64) (bool, error)
	CreateChallengeFee(fee *models.ChallengeFee) error
	UpdateChallengeFee(fee *models.ChallengeFee) error
	DeleteChallengeFees(ids []int64, userID int64) error
	GetChallengeFeePercentage(billingAccountID int64) (*models.ChallengeFeePercentage, error)
	CreateChallengeFeePercentage(percentage *models.ChallengeFeePercentage) error
	UpdateChallengeFeePercentage(percentage *models.ChallengeFeePercentage) error
	GetChallengeTypes() ([]models.ChallengeType, error)

	// InTransaction runs fn against a repository bound to one transaction.
	InTransaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a fee repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CheckBillingAccountExists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&models.BillingAccount{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) GetChallengeFees(billingAccountID int64) ([]models.ChallengeFee, error) {
	var fees []models.ChallengeFee
	err := r.db.Where("billing_account_id = ?", billingAccountID).Find(&fees).Error
	return fees, err
}

func (r *gormRepository) ChallengeFeeExists(billingAccountID int64) (bool, error) {
	var count int64
	err := r.db.Model(&models.ChallengeFee{}).
		Where("billing_account_id = ?", billingAccountID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) CreateChallengeFee(fee *models.ChallengeFee) error {
	return r.db.Create(fee).Error
}

func (r *gormRepository) UpdateChallengeFee(fee *models.ChallengeFee) error {
	return r.db.Model(&models.ChallengeFee{}).
		Where("id = ?", fee.ID).
		Updates(map[string]interface{}{
			"billing_account_id": fee.BillingAccountID,
			"challenge_type_id":  fee.ChallengeTypeID,
			"fee":                fee.Fee,
			"name":               fee.Name,
			"studio":             fee.Studio,
			"deleted":            fee.Deleted,
			"updated_by":         fee.UpdatedBy,
		}).Error
}

func (r *gormRepository) DeleteChallengeFees(ids []int64, userID int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.ChallengeFee{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"deleted":    true,
			"updated_by": userID,
		}).Error
}

func (r *gormRepository) GetChallengeFeePercentage(billingAccountID int64) (*models.ChallengeFeePercentage, error) {
	var percentage models.ChallengeFeePercentage
	err := r.db.Where("billing_account_id = ?", billingAccountID).First(&percentage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &percentage, nil
}

func (r *gormRepository) CreateChallengeFeePercentage(percentage *models.ChallengeFeePercentage) error {
	return r.db.Create(percentage).Error
}

func (r *gormRepository) UpdateChallengeFeePercentage(percentage *models.ChallengeFeePercentage) error {
	return r.db.Model(&models.ChallengeFeePercentage{}).
		Where("id = ?", percentage.ID).
		Updates(map[string]interface{}{
			"percentage": percentage.Percentage,
			"active":     percentage.Active,
			"updated_by": percentage.UpdatedBy,
		}).Error
}

func (r *gormRepository) GetChallengeTypes() ([]models.ChallengeType, error) {
	var types []models.ChallengeType
	err := r.db.Find(&types).Error
	return types, err
}

func (r *gormRepository) InTransaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
