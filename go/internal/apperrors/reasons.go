package apperrors

// Sentinels for league membership conflicts. Compare with errors.Is.
var (
	ErrAlreadyParticipant = &Error{Code: CodeConflict, Reason: "already_participant", Message: "User is already a participant"}
	ErrDuplicateRequest   = &Error{Code: CodeConflict, Reason: "duplicate_request", Message: "User has already requested to join this league"}
	ErrLeagueFull         = &Error{Code: CodeConflict, Reason: "league_full", Message: "League has reached maximum capacity"}
	ErrNoSuchRequest      = &Error{Code: CodeNotFound, Reason: "no_such_request", Message: "No pending request found for this user"}
	ErrNotAuthorized      = &Error{Code: CodeNotAuthorized, Reason: "not_creator", Message: "Only the league creator can manage join requests"}
	ErrLeagueNotFound     = &Error{Code: CodeNotFound, Reason: "league_not_found", Message: "League not found"}
	ErrParticipantMissing = &Error{Code: CodeNotFound, Reason: "participant_not_found", Message: "Participant not found in league"}
	ErrPredictionExists   = &Error{Code: CodeConflict, Reason: "prediction_exists", Message: "A prediction for this matchday already exists"}
)

// Because sets a reason-specific message on a copy of a sentinel.
func Because(sentinel *Error, message string) *Error {
	cp := *sentinel
	cp.Message = message
	return &cp
}
