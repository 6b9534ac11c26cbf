package utils

import (
	"errors"
	"math"
)

// MacroSplit is a named percentage allocation of daily calories across
// protein/carbs/fat.
type MacroSplit struct {
	Name        string `json:"name"`
	Protein     int    `json:"protein"` // percent
	Carbs       int    `json:"carbs"`
	Fat         int    `json:"fat"`
	Description string `json:"description"`
}

var MacroSplits = map[string]MacroSplit{
	"balanced":     {Name: "Balanced", Protein: 25, Carbs: 50, Fat: 25, Description: "Standard balanced approach"},
	"high-protein": {Name: "High Protein", Protein: 35, Carbs: 40, Fat: 25, Description: "Higher protein for muscle building/recovery"},
	"low-carb":     {Name: "Low Carb", Protein: 30, Carbs: 25, Fat: 45, Description: "Reduced carbs, higher fat"},
	"athlete":      {Name: "Athlete", Protein: 30, Carbs: 55, Fat: 15, Description: "Higher carbs for performance"},
	"keto":         {Name: "Keto", Protein: 25, Carbs: 10, Fat: 65, Description: "Very low carb, high fat"},
}

var activityFactors = map[string]float64{
	"sedentary":         1.2,
	"lightly active":    1.375,
	"moderately active": 1.55,
	"very active":       1.725,
	"extra active":      1.9,
}

// Weekly pace → daily calorie adjustment.
var paceAdjustments = map[string]int{
	"lose-slow":       -250,
	"lose-moderate":   -500,
	"lose-aggressive": -750,
	"gain-slow":       375,
}

type BioInput struct {
	Age           int    `json:"age"`
	BiologicalSex string `json:"biologicalSex"`
	Height        int    `json:"height"` // inches
	Weight        int    `json:"weight"` // pounds
	ActivityLevel string `json:"activityLevel"`
}

type Targets struct {
	TargetCalories int    `json:"targetCalories"`
	TargetProtein  int    `json:"targetProtein"`
	TargetCarbs    int    `json:"targetCarbs"`
	TargetFat      int    `json:"targetFat"`
	MacroSplit     string `json:"macroSplit"`
}

// CalculateTargets derives daily calorie and macro gram targets from bio data:
// Harris-Benedict BMR (imperial) × activity factor, optional pace adjustment,
// then the selected split at 4 cal/g for protein and carbs, 9 cal/g for fat.
func CalculateTargets(bio BioInput, splitKey, pace string) (Targets, error) {
	if bio.Age <= 0 || bio.Height <= 0 || bio.Weight <= 0 {
		return Targets{}, errors.New("age, height and weight must be positive")
	}

	var bmr float64
	switch bio.BiologicalSex {
	case "male":
		bmr = 66 + (6.23 * float64(bio.Weight)) + (12.7 * float64(bio.Height)) - (6.8 * float64(bio.Age))
	case "female":
		bmr = 655 + (4.35 * float64(bio.Weight)) + (4.7 * float64(bio.Height)) - (4.7 * float64(bio.Age))
	default:
		return Targets{}, errors.New("biologicalSex must be \"male\" or \"female\"")
	}

	factor, ok := activityFactors[bio.ActivityLevel]
	if !ok {
		return Targets{}, errors.New("unknown activity level")
	}

	calories := int(math.Round(bmr * factor))
	if adj, ok := paceAdjustments[pace]; ok {
		calories += adj
	}

	split, ok := MacroSplits[splitKey]
	if !ok {
		split = MacroSplits["balanced"]
		splitKey = "balanced"
	}

	return Targets{
		TargetCalories: calories,
		TargetProtein:  int(math.Round(float64(calories) * float64(split.Protein) / 100 / 4)),
		TargetCarbs:    int(math.Round(float64(calories) * float64(split.Carbs) / 100 / 4)),
		TargetFat:      int(math.Round(float64(calories) * float64(split.Fat) / 100 / 9)),
		MacroSplit:     splitKey,
	}, nil
}
