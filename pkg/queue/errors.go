package queue

import "errors"

var (
	// ErrBrokerNil is returned when a nil broker is provided.
	ErrBrokerNil = errors.New("queue: broker cannot be nil")

	// ErrClientNil is returned when a nil client is provided.
	ErrClientNil = errors.New("queue: client cannot be nil")

	// ErrClientClosed is returned when a producer or worker uses a client that is not open.
	ErrClientClosed = errors.New("queue: client is not open")

	// ErrClientAlreadyOpen is returned by a second Open.
	ErrClientAlreadyOpen = errors.New("queue: client already open")

	// ErrPayloadNil is returned when attempting to enqueue a nil payload.
	ErrPayloadNil = errors.New("queue: payload cannot be nil")

	// ErrRecipientRequired is returned when a message has no recipient.
	ErrRecipientRequired = errors.New("queue: recipient id is required")

	// ErrNoMessages is returned when a batch enqueue has nothing to enqueue.
	ErrNoMessages = errors.New("queue: no messages to enqueue")

	// ErrNoJob is returned by Broker.Claim when nothing is ready.
	ErrNoJob = errors.New("queue: no job ready to claim")

	// ErrJobNotFound is returned when a job id is unknown to the broker.
	ErrJobNotFound = errors.New("queue: job not found")

	// ErrJobNotClaimed is returned when completing, retrying or failing a job
	// that is not being processed by the calling worker.
	ErrJobNotClaimed = errors.New("queue: job is not claimed by this worker")

	// ErrDuplicateJob is returned when a job id was already accepted within the dedup window.
	ErrDuplicateJob = errors.New("queue: duplicate job id")

	// ErrHandlerNotFound is returned when no handler is registered for a job.
	ErrHandlerNotFound = errors.New("queue: no handler registered for job")

	// ErrNoHandlers is returned when a worker starts without handlers.
	ErrNoHandlers = errors.New("queue: no job handlers registered")

	// ErrWorkerStarted is returned by a second Start.
	ErrWorkerStarted = errors.New("queue: worker already started")

	// ErrWorkerNotStarted is returned by Stop on an idle worker.
	ErrWorkerNotStarted = errors.New("queue: worker not started")

	// ErrShutdownTimeout is returned by Stop when in-flight jobs outlive the
	// shutdown timeout. Their locks expire and other workers pick them up.
	ErrShutdownTimeout = errors.New("queue: worker shutdown timed out")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The worker records the job as
// failed right away instead of scheduling further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
