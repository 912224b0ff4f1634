package models

type DeckStat struct {
	DeckID          int64   `json:"deck_id"`
	TotalCards      int     `json:"total_cards"`
	NewCards        int     `json:"new_cards"`
	CardsDue        int     `json:"cards_due"`
	CardsMastered   int     `json:"cards_mastered"`
	CardsStruggling int     `json:"cards_struggling"`
	TotalReviews    int     `json:"total_reviews"`
	OverallAccuracy float64 `json:"overall_accuracy"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgInterval     float64 `json:"avg_interval"`
	BestStreak      int     `json:"best_streak"`
}

type ReviewTimeStat struct {
	AvgTimeSeconds float64         `json:"avg_time_seconds"`
	FastestTime    float64         `json:"fastest_time"`
	SlowestTime    float64         `json:"slowest_time"`
	TimeByQuality  map[int]float64 `json:"time_by_quality"`
}
