package models

// ChallengeBudget is the per-challenge ledger row of a billing account. At
// most one row may exist per (billing account, challenge) pair; more than one
// is a persistence integrity fault.
type ChallengeBudget struct {
	BillingAccountID int64   `gorm:"primaryKey;autoIncrement:false" json:"billing_account_id"`
	ChallengeID      string  `gorm:"primaryKey;type:varchar(64)" json:"challenge_id"`
	LockedAmount     float64 `gorm:"type:decimal(12,2);not null;default:0" json:"locked_amount"`
	ConsumedAmount   float64 `gorm:"type:decimal(12,2);not null;default:0" json:"consumed_amount"`
}

// TableName keeps the legacy table name used by the budget queries.
func (ChallengeBudget) TableName() string {
	return "project_challenge_budgets"
}
