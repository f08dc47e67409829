package domain

// Summary aggregates completion figures over a snapshot of exercises.
type Summary struct {
	Total             int `json:"total"`
	Completed         int `json:"completed"`
	Pending           int `json:"pending"`
	TotalMinutes      int `json:"totalMinutes"`
	CompletedMinutes  int `json:"completedMinutes"`
	CompletedCalories int `json:"completedCalories"`
}

// Summarize computes a Summary from exercises. TotalMinutes covers every record;
// calories are only counted where recorded.
func Summarize(exercises []Exercise) Summary {
	s := Summary{Total: len(exercises)}
	for _, ex := range exercises {
		s.TotalMinutes += ex.Duration
		if !ex.Completed {
			s.Pending++
			continue
		}
		s.Completed++
		s.CompletedMinutes += ex.Duration
		if ex.Calories != nil {
			s.CompletedCalories += *ex.Calories
		}
	}
	return s
}
