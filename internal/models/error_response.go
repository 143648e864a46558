package models

import (
	"errors"
	"net/http"
)

type ErrorKind string // Категория ошибки, по которой выбирается HTTP-статус

const (
	NotFoundKind           ErrorKind = "NotFound"
	UnauthorizedKind       ErrorKind = "Unauthorized"
	InvalidInputKind       ErrorKind = "InvalidInput"
	InvalidTransitionKind  ErrorKind = "InvalidTransition"
	ConflictKind           ErrorKind = "Conflict"
	PersistenceFailureKind ErrorKind = "PersistenceFailure"
)

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"kind,omitempty"`
	Code       string    `json:"code,omitempty"`
	Message    string    `json:"reason"`

	cause error
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// NewDomainError создает ошибку определенной категории.
func NewDomainError(kind ErrorKind, code, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusForKind(kind),
		Kind:       kind,
		Code:       code,
		Message:    message,
	}
}

// NewPersistenceFailure оборачивает ошибку хранилища.
func NewPersistenceFailure(cause error) *ErrorResponse {
	e := NewDomainError(PersistenceFailureKind, string(PersistenceFailureKind), "storage operation failed")
	e.cause = cause
	return e
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *ErrorResponse) Unwrap() error {
	return e.cause
}

// Is сравнивает ошибки по коду, чтобы работал errors.Is с эталонными ошибками.
func (e *ErrorResponse) Is(target error) bool {
	t, ok := target.(*ErrorResponse)
	if !ok {
		return false
	}
	if t.Code == "" || e.Code == "" {
		return e == t
	}
	return t.Code == e.Code
}

// WithMessage возвращает копию ошибки с другим сообщением.
func (e *ErrorResponse) WithMessage(message string) *ErrorResponse {
	c := *e
	c.Message = message
	return &c
}

// KindOf возвращает категорию ошибки или пустую строку для посторонних ошибок.
func KindOf(err error) ErrorKind {
	var e *ErrorResponse
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func statusForKind(kind ErrorKind) int {
	switch kind {
	case NotFoundKind:
		return http.StatusNotFound
	case UnauthorizedKind:
		return http.StatusForbidden
	case InvalidInputKind, InvalidTransitionKind:
		return http.StatusBadRequest
	case ConflictKind:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrProjectNotFound  = NewDomainError(NotFoundKind, "ProjectNotFound", "project not found")
	ErrProposalNotFound = NewDomainError(NotFoundKind, "ProposalNotFound", "proposal not found")

	ErrUnauthorized = NewDomainError(UnauthorizedKind, "Unauthorized", "you are not authorized to perform this action")

	ErrInvalidInput       = NewDomainError(InvalidInputKind, "InvalidInput", "invalid input")
	ErrInvalidRating      = NewDomainError(InvalidInputKind, "InvalidRating", "rating must be an integer between 1 and 5")
	ErrFreelancerMismatch = NewDomainError(InvalidInputKind, "FreelancerMismatch", "freelancer is not the one assigned to the project")

	ErrProjectNotOpen       = NewDomainError(InvalidTransitionKind, "ProjectNotOpen", "project is not open for proposals")
	ErrProposalNotPending   = NewDomainError(InvalidTransitionKind, "ProposalNotPending", "proposal is not pending")
	ErrProposalNotAccepted  = NewDomainError(InvalidTransitionKind, "ProposalNotAccepted", "proposal is not accepted")
	ErrNotInProgress        = NewDomainError(InvalidTransitionKind, "NotInProgress", "project is not in progress")
	ErrNoFreelancerAssigned = NewDomainError(InvalidTransitionKind, "NoFreelancerAssigned", "project has no assigned freelancer")
	ErrNoQualifyingProposal = NewDomainError(InvalidTransitionKind, "NoQualifyingProposal", "assigned freelancer has no accepted or completed proposal")
	ErrProjectNotCompleted  = NewDomainError(InvalidTransitionKind, "ProjectNotCompleted", "project is not completed")
	ErrProposalNotDeletable = NewDomainError(InvalidTransitionKind, "ProposalNotDeletable", "only pending proposals can be deleted")

	ErrAlreadyAccepted = NewDomainError(ConflictKind, "AlreadyAccepted", "a proposal has already been accepted for this project")
	ErrDuplicateReview = NewDomainError(ConflictKind, "DuplicateReview", "freelancer has already been reviewed for this project")
)
