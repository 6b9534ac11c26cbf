package models

import (
	"gorm.io/gorm"
)

// User carries the optional bio fields used by the TDEE calculator.
// Single-user deployment: id 1 is upserted on first access when no
// identity is supplied.
type User struct {
	gorm.Model
	Age           *int    `json:"age"`
	BiologicalSex *string `gorm:"size:16" json:"biologicalSex"` // "male" | "female"
	Height        *int    `json:"height"`                       // inches
	Weight        *int    `json:"weight"`                       // pounds
	ActivityLevel *string `gorm:"size:32" json:"activityLevel"`
}
