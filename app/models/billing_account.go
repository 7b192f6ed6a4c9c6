package models

import "time"

// Billing account status names accepted by the API. The database stores the
// corresponding active flag, not the name.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// BillingAccount is a client's budget container that challenges draw against.
type BillingAccount struct {
	ID                 int64      `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	Active             bool       `gorm:"not null;default:true" json:"-"`
	BudgetAmount       *float64   `gorm:"type:decimal(12,2);default:null" json:"budget_amount,omitempty"`
	PaymentTermsID     int64      `gorm:"not null;default:0" json:"payment_terms_id"`
	StartDate          *time.Time `gorm:"type:timestamp;default:null" json:"start_date,omitempty"`
	EndDate            *time.Time `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	SalesTax           float64    `gorm:"type:decimal(6,3);default:0" json:"sales_tax"`
	PoNumber           string     `gorm:"type:varchar(100);default:''" json:"po_number"`
	Description        string     `gorm:"type:text" json:"description"`
	SubscriptionNumber string     `gorm:"type:varchar(100);default:''" json:"subscription_number"`
	CompanyID          int64      `gorm:"not null;index" json:"company_id" validate:"required,gt=0"`
	ClientID           int64      `gorm:"not null;index" json:"client_id" validate:"required,gt=0"`
	ManualPrizeSetting bool       `gorm:"not null;default:false" json:"manual_prize_setting"`
	Billable           bool       `gorm:"not null;default:false" json:"billable"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy          int64      `gorm:"not null;default:0" json:"created_by"`
	UpdatedBy          int64      `gorm:"not null;default:0" json:"updated_by"`
}

// Status renders the stored active flag as the API status name.
func (a *BillingAccount) Status() string {
	if a.Active {
		return StatusActive
	}
	return StatusInactive
}

// ClientMapping links a billing account to the owning client. The mapping row
// is replaced whenever the account is updated.
type ClientMapping struct {
	BillingAccountID int64     `gorm:"primaryKey;autoIncrement:false" json:"billing_account_id"`
	ClientID         int64     `gorm:"not null;index" json:"client_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy        int64     `gorm:"not null;default:0" json:"created_by"`
}

// PaymentTerms is reference data describing how an account is invoiced.
type PaymentTerms struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Description string `gorm:"type:varchar(150)" json:"description"`
}
