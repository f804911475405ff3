package domain

import "time"

// ItemCategory distinguishes purchase semantics: cosmetics are owned at most
// once (re-purchase is an idempotent no-op), consumables stack.
type ItemCategory string

const (
	CategoryCosmetic   ItemCategory = "cosmetic"
	CategoryConsumable ItemCategory = "consumable"
)

// Repeatable reports whether an item in this category may be purchased more
// than once.
func (c ItemCategory) Repeatable() bool {
	return c == CategoryConsumable
}

// Item is a purchasable shop entry. Price is in coins and is not applied
// retroactively to past purchases.
type Item struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Price       int64        `json:"price"`
	Category    ItemCategory `json:"category"`
	Icon        string       `json:"icon,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Course is a learning unit. Price is the coin cost to enrol (0 = free) and
// Credits weighs the XP/coin reward granted on completion.
type Course struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Credits   int       `json:"credits"`
	CreatorID string    `json:"creator_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
