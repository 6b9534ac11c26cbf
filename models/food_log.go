package models

import (
	"time"

	"gorm.io/gorm"
)

// FoodLog is one confirmed food/beverage entry. Day is the calendar day the
// entry is attributed to (fixed US Eastern reference), independent of
// LoggedAt, the wall-clock time it was recorded.
type FoodLog struct {
	gorm.Model
	UserID   uint      `gorm:"index;not null" json:"userId"`
	Day      time.Time `gorm:"index;not null" json:"day"`
	LoggedAt time.Time `gorm:"index" json:"loggedAt"`

	Item     string   `gorm:"not null" json:"item"`
	MealType *string  `gorm:"size:32" json:"mealType"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `gorm:"size:32" json:"unit"`

	Calories *int     `json:"calories"` // rounded on persist
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Fiber    *float64 `json:"fiber"`
	Sugar    *float64 `json:"sugar"`
	Sodium   *float64 `json:"sodium"`

	Notes *string `gorm:"type:text" json:"notes"`
}
