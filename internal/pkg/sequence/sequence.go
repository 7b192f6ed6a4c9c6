// Package sequence provides the named id sequences used for fee, percentage,
// account and user-account row ids.
package sequence

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/topcoder-platform/tc-billing-account-service/app/models"
)

// Sequence names used across the services.
const (
	ChallengeFeeSeq           = "project_contest_fee_seq"
	ChallengeFeePercentageSeq = "project_contest_fee_percentage_seq"
	BillingAccountSeq         = "project_seq"
	UserAccountSeq            = "user_account_seq"
)

// Generator hands out unique monotonically increasing ids per named sequence.
type Generator interface {
	NextID(sequenceName string) (int64, error)
}

type gormGenerator struct {
	db *gorm.DB
}

// NewGenerator creates a sequence generator backed by the id_sequences table.
func NewGenerator(db *gorm.DB) Generator {
	return &gormGenerator{db: db}
}

func (g *gormGenerator) NextID(sequenceName string) (int64, error) {
	var next int64
	err := g.db.Transaction(func(tx *gorm.DB) error {
		var seq models.IDSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", sequenceName).
			First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.IDSequence{Name: sequenceName, NextID: 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		next = seq.NextID
		return tx.Model(&models.IDSequence{}).
			Where("name = ?", sequenceName).
			Update("next_id", next+1).Error
	})
	return next, err
}
