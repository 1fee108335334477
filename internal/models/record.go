package models

import "time"

// Perk is a redeemable reward.
type Perk struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TokenCost   int    `json:"token_cost" validate:"gte=0"`
	Available   bool   `json:"available"`
}

// Redemption is one entry of the redemption history.
type Redemption struct {
	ID        string    `json:"id" validate:"required"`
	PerkID    string    `json:"perk_id" validate:"required"`
	PerkTitle string    `json:"perk_title"`
	Tokens    int       `json:"tokens" validate:"gte=0"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Analytics summarises a student's earning and spending.
type Analytics struct {
	TokensEarned   int            `json:"tokens_earned" validate:"gte=0"`
	TokensRedeemed int            `json:"tokens_redeemed" validate:"gte=0"`
	Redemptions    int            `json:"redemptions" validate:"gte=0"`
	ByCategory     map[string]int `json:"by_category,omitempty"`
}
