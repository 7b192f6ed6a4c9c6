package account

import (
	"errors"

	"gorm.io/gorm"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
)

// Repository provides DB operations used by the billing account service.
// Client, company and Topcoder user records are owned by external systems;
// they are only checked for existence here.
type Repository interface {
	SearchBillingAccounts(limit, offset int) ([]models.BillingAccount, int64, error)
	SearchMyBillingAccounts(userID int64, limit, offset int) ([]models.BillingAccount, int64, error)
	GetBillingAccount(id int64) (*models.BillingAccount, error)
	CreateBillingAccount(account *models.BillingAccount) error
	UpdateBillingAccount(account *models.BillingAccount) error
	AddBillingAccountToClient(billingAccountID, clientID, userID int64) error
	RemoveBillingAccountFromClient(billingAccountID int64) error
	CheckClientExists(id int64) (bool, error)
	CheckCompanyExists(id int64) (bool, error)
	GetTCUserHandle(userID int64) (string, error)
	GetUserAccountByUserID(userID int64) (*models.UserAccount, error)
	CreateUserAccount(userAccount *models.UserAccount) error
	CheckUserBelongsToBillingAccount(billingAccountID, userAccountID int64) (bool, error)
	AddUserToBillingAccount(billingAccountID, userAccountID, createdBy int64) error
	RemoveUserFromBillingAccount(billingAccountID, userAccountID int64) error
	GetBillingAccountUsers(billingAccountID int64, limit, offset int) ([]models.UserAccount, int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an account repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) SearchBillingAccounts(limit, offset int) ([]models.BillingAccount, int64, error) {
	var accounts []models.BillingAccount
	var total int64
	if err := r.db.Model(&models.BillingAccount{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Limit(limit).Offset(offset).Order("id").Find(&accounts).Error
	return accounts, total, err
}

func (r *gormRepository) SearchMyBillingAccounts(userID int64, limit, offset int) ([]models.BillingAccount, int64, error) {
	base := r.db.Model(&models.BillingAccount{}).
		Joins("JOIN billing_account_users bau ON bau.billing_account_id = billing_accounts.id").
		Joins("JOIN user_accounts ua ON ua.id = bau.user_account_id").
		Where("ua.user_id = ?", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var accounts []models.BillingAccount
	err := base.Limit(limit).Offset(offset).Order("billing_accounts.id").Find(&accounts).Error
	return accounts, total, err
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

func (r *gormRepository) CreateBillingAccount(account *models.BillingAccount) error {
	return r.db.Create(account).Error
}

func (r *gormRepository) UpdateBillingAccount(account *models.BillingAccount) error {
	return r.db.Model(&models.BillingAccount{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"name":                 account.Name,
			"active":               account.Active,
			"budget_amount":        account.BudgetAmount,
			"payment_terms_id":     account.PaymentTermsID,
			"start_date":           account.StartDate,
			"end_date":             account.EndDate,
			"sales_tax":            account.SalesTax,
			"po_number":            account.PoNumber,
			"description":          account.Description,
			"subscription_number":  account.SubscriptionNumber,
			"company_id":           account.CompanyID,
			"client_id":            account.ClientID,
			"manual_prize_setting": account.ManualPrizeSetting,
			"billable":             account.Billable,
			"updated_by":           account.UpdatedBy,
		}).Error
}

func (r *gormRepository) AddBillingAccountToClient(billingAccountID, clientID, userID int64) error {
	mapping := models.ClientMapping{
		BillingAccountID: billingAccountID,
		ClientID:         clientID,
		CreatedBy:        userID,
	}
	return r.db.Create(&mapping).Error
}

func (r *gormRepository) RemoveBillingAccountFromClient(billingAccountID int64) error {
	return r.db.Where("billing_account_id = ?", billingAccountID).
		Delete(&models.ClientMapping{}).Error
}

func (r *gormRepository) CheckClientExists(id int64) (bool, error) {
	var count int64
	err := r.db.Table("clients").Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) CheckCompanyExists(id int64) (bool, error) {
	var count int64
	err := r.db.Table("companies").Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) GetTCUserHandle(userID int64) (string, error) {
	var handle string
	err := r.db.Table("tc_users").Select("handle").Where("id = ?", userID).Scan(&handle).Error
	return handle, err
}

func (r *gormRepository) GetUserAccountByUserID(userID int64) (*models.UserAccount, error) {
	var userAccount models.UserAccount
	err := r.db.Where("user_id = ?", userID).First(&userAccount).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &userAccount, nil
}

func (r *gormRepository) CreateUserAccount(userAccount *models.UserAccount) error {
	return r.db.Create(userAccount).Error
}

func (r *gormRepository) CheckUserBelongsToBillingAccount(billingAccountID, userAccountID int64) (bool, error) {
	var count int64
	err := r.db.Model(&models.BillingAccountUser{}).
		Where("billing_account_id = ? AND user_account_id = ?", billingAccountID, userAccountID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) AddUserToBillingAccount(billingAccountID, userAccountID, createdBy int64) error {
	link := models.BillingAccountUser{
		BillingAccountID: billingAccountID,
		UserAccountID:    userAccountID,
		CreatedBy:        createdBy,
	}
	return r.db.Create(&link).Error
}

func (r *gormRepository) RemoveUserFromBillingAccount(billingAccountID, userAccountID int64) error {
	return r.db.Where("billing_account_id = ? AND user_account_id = ?", billingAccountID, userAccountID).
		Delete(&models.BillingAccountUser{}).Error
}

func (r *gormRepository) GetBillingAccountUsers(billingAccountID int64, limit, offset int) ([]models.UserAccount, int64, error) {
	base := r.db.Model(&models.UserAccount{}).
		Joins("JOIN billing_account_users bau ON bau.user_account_id = user_accounts.id").
		Where("bau.billing_account_id = ?", billingAccountID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.UserAccount
	err := base.Limit(limit).Offset(offset).Order("user_accounts.id").Find(&users).Error
	return users, total, err
}
