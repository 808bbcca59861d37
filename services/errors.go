package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound        = errors.New("requested resource not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrContestNotFound = errors.New("contest not found")

	// Ошибки валидации календарных сабмитов
	ErrInvalidContestKey      = errors.New("invalid contest key")
	ErrInvalidTimestamp       = errors.New("invalid skyblock date")
	ErrSubmissionTooLate      = errors.New("contests cannot be submitted this late in the year")
	ErrSubmissionWrongCount   = errors.New("invalid number of contests submitted")
	ErrSubmissionWrongYear    = errors.New("all contests must be from the current year")
	ErrSubmissionInvalidCrops = errors.New("all contests must have exactly three distinct valid crops")
	ErrSubmissionDuplicate    = errors.New("already submitted a response")

	// Ошибки внешнего API
	ErrUpstreamFailure = errors.New("upstream request failed")
)
