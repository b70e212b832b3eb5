package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Graph API error subcodes used by device login
const (
	subcodeAuthorizationPending = 1349174
	subcodeSlowDown             = 1349172
	subcodeCodeExpired          = 1349152
)

// GraphError is an error object returned by the Graph API
type GraphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`
	Status  int    `json:"-"`
}

// declined reports a device login the user refused. The status endpoint
// answers with the OAuth "access_denied" error or a message saying so.
func (e *GraphError) declined() bool {
	if e.Type == "access_denied" {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "declined") || strings.Contains(msg, "denied")
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api error %d/%d (%s): %s", e.Code, e.Subcode, e.Type, e.Message)
}

// graphClient calls one version of the Graph API
type graphClient struct {
	baseURL    string
	version    string
	httpClient *http.Client
}

func (g *graphClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := g.endpoint(path) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create graph request")
	}
	return g.do(req, out)
}

func (g *graphClient) post(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(path), strings.NewReader(params.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to create graph request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return g.do(req, out)
}

func (g *graphClient) endpoint(path string) string {
	return strings.TrimRight(g.baseURL, "/") + "/" + g.version + "/" + strings.TrimLeft(path, "/")
}

func (g *graphClient) do(req *http.Request, out interface{}) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "graph request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read graph response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error *GraphError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			envelope.Error.Status = resp.StatusCode
			return envelope.Error
		}
		return &GraphError{Message: string(body), Status: resp.StatusCode}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to decode graph response")
	}
	return nil
}
