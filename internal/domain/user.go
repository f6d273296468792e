package domain

import "time"

type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

type User struct {
	ID             uint
	TelegramUserID int64
	Username       string
	Tier           Tier
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}
