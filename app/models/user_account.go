package models

import "time"

// UserAccount is the local account record for a Topcoder user that can be
// attached to billing accounts. Created lazily the first time a user is added
// to any billing account.
type UserAccount struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Handle    string    `gorm:"type:varchar(100);not null" json:"handle"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy int64     `gorm:"not null;default:0" json:"created_by"`
}

// BillingAccountUser links a user account to a billing account.
type BillingAccountUser struct {
	BillingAccountID int64     `gorm:"primaryKey;autoIncrement:false" json:"billing_account_id"`
	UserAccountID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_account_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy        int64     `gorm:"not null;default:0" json:"created_by"`
}
