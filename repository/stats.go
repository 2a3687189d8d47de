package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
)

// Stats reads aggregated prediction statistics (weighted median, min/max,
// count) from the prediction service. Computation lives there, this service
// only caches and serves the result.
type Stats struct {
	cli      *httpcli.Client
	statsUrl string
	timeout  time.Duration
}

func NewStats(cli *httpcli.Client, statsUrl string, timeout time.Duration) Stats {
	return Stats{
		cli:      cli,
		statsUrl: statsUrl,
		timeout:  timeout,
	}
}

func (r Stats) FetchStats(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	body := json.RawMessage{}
	_, err := r.cli.Get(r.statsUrl).
		JsonResponseBody(&body).
		StatusCodeToError().
		Do(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "http client invoke: %s", r.statsUrl)
	}
	return body, nil
}
