package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/yojahny55/gta-6-launch-date-sub001/domain"
	"github.com/yojahny55/gta-6-launch-date-sub001/httperrors"
	"github.com/yojahny55/gta-6-launch-date-sub001/request"
)

type Submitter interface {
	AcceptSubmission(ctx context.Context, payload []byte) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, payload []byte) (*domain.EnqueueResult, error)
}

type acceptedResponse struct {
	Status string `json:"status"`
}

type queuedResponse struct {
	Status   string `json:"status"`
	Id       string `json:"id"`
	Position int64  `json:"position"`
	Message  string `json:"message"`
}

// Submit routes a prediction either to the prediction service or, while the
// daily budget is nearly spent, into the deferred queue. The Exceeded level
// never reaches this handler, CapacityGuard rejects it upstream.
type Submit struct {
	submitter Submitter
	queue     Enqueuer
}

func NewSubmit(submitter Submitter, queue Enqueuer) Submit {
	return Submit{
		submitter: submitter,
		queue:     queue,
	}
}

func (s Submit) Handle(ctx *request.Context) error {
	_, flags, err := ctx.Capacity()
	if err != nil {
		return errors.WithMessage(err, "submit: get capacity state")
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		maxBytesErr := &http.MaxBytesError{}
		if errors.As(err, &maxBytesErr) {
			return httperrors.New(
				http.StatusRequestEntityTooLarge,
				domain.ErrCodeValidation,
				"Your submission is too large.",
				errors.WithMessage(err, "submit: read request body"),
			)
		}
		return errors.WithMessage(err, "submit: read request body")
	}
	if !json.Valid(payload) {
		return httperrors.New(
			http.StatusBadRequest,
			domain.ErrCodeValidation,
			"Your submission must be valid JSON.",
			errors.New("submit: malformed request body"),
		)
	}

	if flags.SubmissionsEnabled {
		err := s.submitter.AcceptSubmission(ctx.Context(), payload)
		if err != nil {
			return errors.WithMessage(err, "submit: accept submission")
		}
		return writeJson(ctx.ResponseWriter(), http.StatusOK, acceptedResponse{Status: "accepted"})
	}

	result, err := s.queue.Enqueue(ctx.Context(), payload)
	if err != nil {
		return errors.WithMessage(err, "submit: enqueue submission")
	}

	return writeJson(ctx.ResponseWriter(), http.StatusAccepted, queuedResponse{
		Status:   "queued",
		Id:       result.Id,
		Position: result.Position,
		Message:  "We're experiencing high traffic. Your submission will be processed shortly.",
	})
}
