package caselookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const maxResponseSize = 1 << 20

// A Remote resolves case titles from another registry over HTTP (GET /cases/:id).
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote returns a Lookup querying the registry listening on endpoint.
func NewRemote(endpoint string, timeout time.Duration) *Remote {
	return &Remote{
		endpoint: strings.TrimRight(endpoint, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// CaseTitle implements Lookup.
func (r *Remote) CaseTitle(ctx context.Context, caseID uint32) (string, bool) {
	title, ok, err := r.fetch(ctx, caseID)
	if err != nil {
		logrus.WithError(err).WithField("case_id", caseID).Error("could not fetch case")
		return "", false
	}
	return title, ok
}

func (r *Remote) fetch(ctx context.Context, caseID uint32) (string, bool, error) {
	url := fmt.Sprintf("%s/cases/%d", r.endpoint, caseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, errors.Wrap(err, "could not build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false, errors.Wrap(err, "could not request case")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", false, nil
	default:
		return "", false, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", false, errors.Wrap(err, "could not read response")
	}

	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return "", false, errors.Wrap(err, "could not parse response")
	}

	title := v.Get("title")
	if title == nil || title.Type() != fastjson.TypeString {
		return "", false, errors.New("missing case title")
	}
	return string(title.GetStringBytes()), true, nil
}
