package models

import "time"

// ChallengeFee is a flat per-challenge-type fee of a billing account. Rows are
// soft deleted when a resubmitted fee schedule omits them. Name and Studio are
// enriched from the challenge type lookup; the description is never persisted.
type ChallengeFee struct {
	ID                       int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	BillingAccountID         int64     `gorm:"not null;index" json:"billing_account_id"`
	ChallengeTypeID          int64     `gorm:"not null" json:"challenge_type_id" validate:"required,gt=0"`
	Fee                      float64   `gorm:"type:decimal(10,2);not null;default:0" json:"challenge_fee" validate:"gte=0"`
	Name                     string    `gorm:"type:varchar(150);default:''" json:"name"`
	Studio                   bool      `gorm:"not null;default:false" json:"studio"`
	Deleted                  bool      `gorm:"not null;default:false" json:"deleted"`
	ChallengeTypeDescription string    `gorm:"-" json:"challenge_type_description,omitempty"`
	CreatedAt                time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy                int64     `gorm:"not null;default:0" json:"created_by"`
	UpdatedBy                int64     `gorm:"not null;default:0" json:"updated_by"`
}

// ChallengeFeePercentage is the account-wide percentage fee. Exactly one row
// exists per billing account once either fee mode has been established; Active
// reports whether percentage mode is currently in effect.
type ChallengeFeePercentage struct {
	ID               int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	BillingAccountID int64     `gorm:"not null;uniqueIndex" json:"billing_account_id"`
	Percentage       *float64  `gorm:"type:decimal(6,3);default:null" json:"challenge_fee_percentage"`
	Active           bool      `gorm:"not null;default:false" json:"active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedBy        int64     `gorm:"not null;default:0" json:"created_by"`
	UpdatedBy        int64     `gorm:"not null;default:0" json:"updated_by"`
}

// ChallengeType is read-only reference data owned by the external project
// category service. It is fetched through the repository and memoized in the
// cache for a fixed TTL.
type ChallengeType struct {
	ChallengeTypeID int64  `gorm:"primaryKey" json:"challenge_type_id"`
	Description     string `gorm:"type:varchar(150)" json:"description"`
	Studio          bool   `gorm:"not null;default:false" json:"studio"`
}
