package fees

import "github.com/topcoder-platform/tc-billing-account-service/app/models"

// BillingAccountFees is a billing account's fee schedule. The two modes are
// mutually exclusive: fixed mode carries per-challenge-type fee rows, and
// percentage mode carries a single account-wide percentage.
type BillingAccountFees struct {
	ChallengeFees          []models.ChallengeFee `json:"challenge_fees,omitempty"`
	ChallengeFeeFixed      bool                  `json:"challenge_fee_fixed"`
	ChallengeFeePercentage *float64              `json:"challenge_fee_percentage,omitempty"`
}
