package service

import "errors"

// Lifecycle and validation errors returned by the attempt core. These are
// deterministic outcomes of the session state machine, not defects; the
// handlers map them onto stable response codes.
var (
	// ErrDuplicateRegistration is returned when a student registers twice
	// for the same exam. Registration is deliberately not idempotent.
	ErrDuplicateRegistration = errors.New("student is already registered for this exam")

	// ErrNotRegistered is returned when no session exists for the caller.
	ErrNotRegistered = errors.New("no session registered for this exam")

	// ErrExamNotActive is returned when the exam window is not open.
	ErrExamNotActive = errors.New("exam is not currently active")

	// ErrSessionClosed is returned when a session does not accept answer
	// writes: never started, or already finalized.
	ErrSessionClosed = errors.New("session is closed for answers")

	// ErrSessionNotStarted is returned by Submit on a session that was
	// registered but never started.
	ErrSessionNotStarted = errors.New("session was never started")

	// ErrSessionNotCompleted is returned by rank queries on a session
	// that has not been finalized.
	ErrSessionNotCompleted = errors.New("session is not completed")

	// ErrInvalidAnswer is returned when an answer payload does not carry
	// exactly one of a non-empty option set or non-empty text.
	ErrInvalidAnswer = errors.New("answer must carry exactly one of options or text")

	// ErrUnknownQuestion is returned when the question does not belong to
	// the session's exam.
	ErrUnknownQuestion = errors.New("question does not belong to this exam")

	// ErrForbidden is returned when a session does not belong to the
	// authenticated student.
	ErrForbidden = errors.New("session belongs to another student")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("resource not found")
)
