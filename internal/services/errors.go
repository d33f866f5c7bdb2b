package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the service layer. Handlers map these onto
// HTTP status codes.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDisciplineNotFound = errors.New("discipline not found")
	ErrExamNotFound       = errors.New("exam not found")
	ErrPeriodNotFound     = errors.New("exam period not found")
	ErrRoomNotFound       = errors.New("room not found")

	// ErrDuplicateProposal means the discipline already has a live exam.
	ErrDuplicateProposal = errors.New("discipline already has an active exam proposal")

	// ErrAlreadyDecided means the proposal reached a terminal status before
	// this decision arrived.
	ErrAlreadyDecided = errors.New("exam proposal has already been decided")

	// ErrDateOutsidePeriod means no active examination period covers the
	// proposed date.
	ErrDateOutsidePeriod = errors.New("exam date falls outside every active examination period")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailDomainUnknown = errors.New("email domain is not recognized")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrRoomHasExams       = errors.New("room is assigned to scheduled exams")
	ErrDisciplineHasExams = errors.New("discipline has exams and cannot be deleted")

	// ErrExamNotApproved means a room assignment targeted an exam that is
	// not in APPROVED state.
	ErrExamNotApproved = errors.New("exam is not approved")

	// ErrProfileIncomplete means the student has no group set yet.
	ErrProfileIncomplete = errors.New("student profile is missing the study group")

	ErrImportFileMalformed = errors.New("import file could not be parsed")
)

// PermissionError carries the reason an actor was refused.
type PermissionError struct {
	UserID string
	Action string
	Reason string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s: %s", e.UserID, e.Action, e.Reason)
}

func NewPermissionError(userID, action, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Action: action, Reason: reason}
}
