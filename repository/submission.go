package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
)

// Submission invokes the prediction service, the external capability that
// owns validation and persistence of user predictions.
type Submission struct {
	cli       *httpcli.Client
	acceptUrl string
	timeout   time.Duration
}

func NewSubmission(cli *httpcli.Client, acceptUrl string, timeout time.Duration) Submission {
	return Submission{
		cli:       cli,
		acceptUrl: acceptUrl,
		timeout:   timeout,
	}
}

func (r Submission) AcceptSubmission(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.cli.Post(r.acceptUrl).
		JsonRequestBody(json.RawMessage(payload)).
		StatusCodeToError().
		Do(ctx)
	if err != nil {
		return errors.WithMessagef(err, "http client invoke: %s", r.acceptUrl)
	}
	return nil
}
