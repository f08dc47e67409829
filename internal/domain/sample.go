package domain

import "time"

// SampleExercises returns the starter records shown on a fresh install, front first.
// newID is called once per record.
func SampleExercises(newID func() string, now time.Time) []Exercise {
	added := StoredTime(now)
	return []Exercise{
		{
			ID:          newID(),
			Name:        "Push-ups",
			Description: "Classic upper body exercise targeting chest, shoulders, and triceps",
			Category:    "Strength",
			Difficulty:  DifficultyBeginner,
			Duration:    10,
			DateAdded:   added,
			Calories:    intPtr(100),
			Sets:        intPtr(3),
			Reps:        intPtr(12),
			Equipment:   []string{"Mat (optional)"},
			Instructions: []string{
				"Start in plank position",
				"Lower body until chest nearly touches floor",
				"Push back up to starting position",
				"Keep core tight throughout",
			},
			Tips: []string{"Keep elbows at 45-degree angle", "Maintain straight back"},
		},
		{
			ID:            newID(),
			Name:          "Running",
			Description:   "Cardio exercise for endurance and cardiovascular health",
			Category:      "Cardio",
			Difficulty:    DifficultyIntermediate,
			Duration:      30,
			Completed:     true,
			DateAdded:     added,
			CompletedDate: "2024-01-15",
			Calories:      intPtr(320),
			Distance:      "5.2 km",
			Equipment:     []string{"Running shoes", "Comfortable clothes"},
			Instructions: []string{
				"Warm up for 5 minutes",
				"Start at comfortable pace",
				"Maintain steady breathing",
				"Cool down for 5 minutes",
			},
			Tips: []string{"Stay hydrated", "Use proper running form"},
		},
		{
			ID:          newID(),
			Name:        "Yoga",
			Description: "Improve flexibility and balance",
			Category:    "Flexibility",
			Difficulty:  DifficultyBeginner,
			Duration:    20,
			DateAdded:   added,
		},
	}
}

func intPtr(v int) *int { return &v }
