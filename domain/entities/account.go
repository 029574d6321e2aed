package entities

import "time"

// Account holds the settled winnings of a participant
type Account struct {
	ID          int64     `db:"id"`
	Participant string    `db:"participant"`
	Balance     int64     `db:"balance"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
