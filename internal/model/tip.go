package model

import "time"

// CategoryRandom asks for a tip drawn from the full set instead of a
// single category.
const CategoryRandom = "random"

type Tip struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Tip       string    `json:"tip"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
