package models

import "time"

// Trade direction values.
const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// Trade status values. A trade is CLOSED exactly when an exit price is set.
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// Trade represents one journaled trade attempt or position.
//
// ExitPrice, RiskReward and ClosedAt are pointers because their absence is
// meaningful: a nil ExitPrice means the trade is still open.
type Trade struct {
	ID         uint     `gorm:"primarykey" json:"id" bson:"_id"`
	Symbol     string   `gorm:"not null;index" json:"symbol" bson:"symbol"`
	Direction  string   `gorm:"not null" json:"direction" bson:"direction"` // LONG or SHORT
	EntryPrice float64  `gorm:"not null" json:"entry_price" bson:"entry_price"`
	ExitPrice  *float64 `json:"exit_price" bson:"exit_price"`
	LotSize    float64  `gorm:"not null" json:"lot_size" bson:"lot_size"`

	// Confluence scores (0-100) per chart timeframe.
	WeeklyTF int `gorm:"default:0" json:"weekly_tf" bson:"weekly_tf"`
	DailyTF  int `gorm:"default:0" json:"daily_tf" bson:"daily_tf"`
	H4TF     int `gorm:"default:0" json:"h4_tf" bson:"h4_tf"`
	H1TF     int `gorm:"default:0" json:"h1_tf" bson:"h1_tf"`
	LowerTF  int `gorm:"default:0" json:"lower_tf" bson:"lower_tf"`

	// TotalConfluence is derived from the five timeframe scores and is never
	// set independently.
	TotalConfluence float64 `gorm:"default:0" json:"total_confluence" bson:"total_confluence"`

	RiskReward *float64 `json:"risk_reward" bson:"risk_reward"`
	Notes      string   `json:"notes" bson:"notes"`

	Status string  `gorm:"default:OPEN;index" json:"status" bson:"status"`
	PnL    float64 `gorm:"default:0" json:"pnl" bson:"pnl"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	ClosedAt  *time.Time `json:"closed_at" bson:"closed_at"`
}

// IsClosed reports whether the trade has a realized result.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}
