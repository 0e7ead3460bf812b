package models

// Document store collections
const (
	LeaguesCollection     = "leagues"
	UsersCollection       = "users"
	MembershipsCollection = "leagues" // nested under users/{uid}
	PredictionsCollection = "predictions"
	MatchesCollection     = "matches"
	TeamsCollection       = "teams"
	RemindersCollection   = "reminders"
)
