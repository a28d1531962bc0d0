package azure

import (
	"context"
	"io"
	"net/http"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

type request struct {
	op       string
	method   string
	url      string
	body     io.Reader
	header   map[string]string
	user     string
	password string
}

// do sends req and returns the response body. Only 200 and 201 count as success.
func do(ctx context.Context, client *http.Client, r request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, &models.HttpError{Op: r.op, Method: r.method, URL: r.url, Err: err}
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}
	if r.user != "" {
		req.SetBasicAuth(r.user, r.password)
	}

	utils.Log.Debug(r.op, ": ", r.method, " ", r.url)
	resp, err := client.Do(req)
	if err != nil {
		return nil, &models.HttpError{Op: r.op, Method: r.method, URL: r.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.HttpError{Op: r.op, Method: r.method, URL: r.url, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return body, &models.HttpError{
			Op:         r.op,
			Method:     r.method,
			URL:        r.url,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}
