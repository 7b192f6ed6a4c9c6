package models

// IDSequence backs the named id sequences used for fee, percentage, account
// and user-account ids. MySQL has no native sequences, so each sequence is a
// counter row incremented inside a transaction.
type IDSequence struct {
	Name   string `gorm:"primaryKey;type:varchar(100)" json:"name"`
	NextID int64  `gorm:"not null;default:1" json:"next_id"`
}
