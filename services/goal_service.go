package services

import (
	"errors"

	"github.com/avandorn1/LLM-food-logging/config"
	"github.com/avandorn1/LLM-food-logging/models"

	"gorm.io/gorm"
)

// GetGoal returns the user's goal, or nil when none has been set.
func GetGoal(userID uint) (*models.Goal, error) {
	var goal models.Goal
	err := config.DB.Where("user_id = ?", userID).First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &goal, nil
}

// UpsertGoal applies the non-nil fields onto the user's goal row, creating it
// when absent. There is at most one Goal per user.
func UpsertGoal(userID uint, in ParsedGoals, macroSplit *string) (*models.Goal, error) {
	var goal models.Goal
	err := config.DB.Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.Goal{UserID: userID}
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if in.TargetCalories != nil {
		goal.TargetCalories = in.TargetCalories
	}
	if in.TargetProtein != nil {
		goal.TargetProtein = in.TargetProtein
	}
	if in.TargetCarbs != nil {
		goal.TargetCarbs = in.TargetCarbs
	}
	if in.TargetFat != nil {
		goal.TargetFat = in.TargetFat
	}
	if macroSplit != nil {
		goal.MacroSplit = macroSplit
	}

	if err := config.DB.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}

// EnsureUser upserts the single-user default (or the supplied id) and returns
// the row. Users are created on first access and never deleted in normal flow.
func EnsureUser(userID uint) (*models.User, error) {
	var user models.User
	err := config.DB.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Model: gorm.Model{ID: userID}}
		if err := config.DB.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserBio applies non-nil bio fields onto the user row.
func UpdateUserBio(userID uint, age, height, weight *int, biologicalSex, activityLevel *string) (*models.User, error) {
	user, err := EnsureUser(userID)
	if err != nil {
		return nil, err
	}
	if age != nil {
		user.Age = age
	}
	if biologicalSex != nil {
		user.BiologicalSex = biologicalSex
	}
	if height != nil {
		user.Height = height
	}
	if weight != nil {
		user.Weight = weight
	}
	if activityLevel != nil {
		user.ActivityLevel = activityLevel
	}
	if err := config.DB.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Totals is a summed macro snapshot for a set of log rows.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// SumLogs folds a day's rows into aggregate totals. Missing nutrition fields
// count as zero.
func SumLogs(logs []models.FoodLog) Totals {
	var t Totals
	for _, l := range logs {
		if l.Calories != nil {
			t.Calories += float64(*l.Calories)
		}
		if l.Protein != nil {
			t.Protein += *l.Protein
		}
		if l.Carbs != nil {
			t.Carbs += *l.Carbs
		}
		if l.Fat != nil {
			t.Fat += *l.Fat
		}
	}
	return t
}

// Remaining computes target minus consumed, signed; display layers clamp to
// zero. An absent goal means zero targets.
func Remaining(goal *models.Goal, consumed Totals) Totals {
	var t Totals
	if goal != nil {
		if goal.TargetCalories != nil {
			t.Calories = float64(*goal.TargetCalories)
		}
		if goal.TargetProtein != nil {
			t.Protein = float64(*goal.TargetProtein)
		}
		if goal.TargetCarbs != nil {
			t.Carbs = float64(*goal.TargetCarbs)
		}
		if goal.TargetFat != nil {
			t.Fat = float64(*goal.TargetFat)
		}
	}
	t.Calories -= consumed.Calories
	t.Protein -= consumed.Protein
	t.Carbs -= consumed.Carbs
	t.Fat -= consumed.Fat
	return t
}
