package db

import (
	"time"

	"gorm.io/gorm"
)

type userModel struct {
	ID             uint   `gorm:"primaryKey"`
	TelegramUserID int64  `gorm:"uniqueIndex;not null"`
	Username       string `gorm:""`
	Tier           string `gorm:"not null;default:free"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

type alertModel struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"index;not null"`
	Kind          string `gorm:"index:idx_alerts_candidates,priority:2"`
	FiatCode      string `gorm:"index:idx_alerts_candidates,priority:1"`
	MinAmountSats *int64
	MaxAmountSats *int64
	MinPremium    *string
	MaxPremium    *string
	PaymentMethod string
	Platforms     string // comma separated platform names, empty = any
	Enabled       bool   `gorm:"index:idx_alerts_candidates,priority:3"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type orderModel struct {
	ID            uint   `gorm:"primaryKey"`
	OrderID       string `gorm:"uniqueIndex;not null"`
	Kind          string `gorm:"not null"`
	FiatCode      string `gorm:"not null"`
	Status        string `gorm:"not null"`
	AmountSats    int64
	FiatAmount    string
	PaymentMethod string
	PriceMargin   string
	SourceURL     string
	Platform      string
	LastSeenAt    time.Time `gorm:"index"`
	RawSequence   uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type counterModel struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"uniqueIndex:idx_counters_user_day,priority:1;not null"`
	Day    string `gorm:"uniqueIndex:idx_counters_user_day,priority:2;not null"`
	Count  int    `gorm:"not null;default:0"`
}
