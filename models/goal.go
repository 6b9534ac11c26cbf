package models

import (
	"gorm.io/gorm"
)

// Goal holds the user's daily targets. Zero or one row per user.
// Gram targets, when derived, follow (targetCalories × split%) / (4 or 9);
// storage does not enforce that relation, the calculator does.
type Goal struct {
	gorm.Model
	UserID         uint    `gorm:"uniqueIndex;not null" json:"userId"`
	TargetCalories *int    `json:"targetCalories"`
	TargetProtein  *int    `json:"targetProtein"`
	TargetCarbs    *int    `json:"targetCarbs"`
	TargetFat      *int    `json:"targetFat"`
	MacroSplit     *string `gorm:"size:32" json:"macroSplit"` // preset name, e.g. "balanced"
}
