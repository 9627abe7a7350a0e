/*
Copyright 2026 The Beam Operator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package flinkclient is a thin typed wrapper over the Flink job manager
// REST API and the Flink SQL gateway's statement endpoint. There is no
// generated Go SDK for either surface, so this talks net/http and
// encoding/json directly, one method per operation the reconciler needs.
package flinkclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strings"

	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// JobStatus is the parsed body of a GET /jobs/{id} response. NotFound is
// set instead of returning an error when the job manager answers 404 - a
// missing job is an ordinary outcome the reconciler inspects, not a
// failure.
type JobStatus struct {
	NotFound bool
	State    string
	Errors   []string
}

// Client is the Flink REST + SQL gateway adapter the reconciler depends
// on (interface so controller tests can supply a fake).
type Client interface {
	UploadJar(ctx context.Context, path string) (jarID string, err error)
	RunJob(ctx context.Context, jarID, entryClass, programArgs string) (jobID string, err error)
	GetJob(ctx context.Context, jobID string) (*JobStatus, error)
	CancelJob(ctx context.Context, jobID string) error
	FreeSlots(ctx context.Context) (int, error)
	SubmitStatementSet(ctx context.Context, statement string) (jobID string, err error)
}

// HTTPClient is the production Client implementation.
type HTTPClient struct {
	RestURL       string
	SQLGatewayURL string
	HTTP          *http.Client
}

// NewHTTPClient builds a Client pointed at the given job manager REST base
// URL and SQL gateway base URL.
func NewHTTPClient(restURL, sqlGatewayURL string) *HTTPClient {
	return &HTTPClient{
		RestURL:       strings.TrimSuffix(restURL, "/"),
		SQLGatewayURL: strings.TrimSuffix(sqlGatewayURL, "/"),
		HTTP:          http.DefaultClient,
	}
}

// UploadJar posts the jar at the given local path to POST /jars/upload and
// returns the jarId segment of the response's filename.
func (c *HTTPClient) UploadJar(ctx context.Context, jarPath string) (string, error) {
	f, err := os.Open(jarPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeInternal, "opening jar for upload")
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("jarfile", path.Base(jarPath))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeInternal, "building upload multipart body")
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeInternal, "copying jar into multipart body")
	}
	if err := mw.Close(); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeInternal, "closing multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RestURL+"/jars/upload", &body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "building jar upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, respBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Newf(apperrors.ErrorTypeTransientUpstream, "jar upload returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "parsing jar upload response")
	}
	return path.Base(parsed.Filename), nil
}

// RunJob starts jarID with entryClass and the given program arguments
// string and returns the Flink job id.
func (c *HTTPClient) RunJob(ctx context.Context, jarID, entryClass, programArgs string) (string, error) {
	reqBody, err := json.Marshal(struct {
		EntryClass  string `json:"entryClass"`
		ProgramArgs string `json:"programArgs"`
	}{EntryClass: entryClass, ProgramArgs: programArgs})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeInternal, "encoding run job request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/jars/%s/run", c.RestURL, jarID), bytes.NewReader(reqBody))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "building run job request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, respBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Newf(apperrors.ErrorTypeTransientUpstream, "no job: run returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		JobID string `json:"jobid"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "parsing run job response")
	}
	return parsed.JobID, nil
}

// GetJob fetches the job's current status. A 404 is reported as
// JobStatus{NotFound: true}, not as an error - the reconciler must be able
// to tell "job absent" from "job manager unreachable".
func (c *HTTPClient) GetJob(ctx context.Context, jobID string) (*JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/jobs/%s", c.RestURL, jobID), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "building get job request")
	}

	resp, respBody, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return &JobStatus{NotFound: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Newf(apperrors.ErrorTypeTransientUpstream, "get job returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		State  string   `json:"state"`
		Errors []string `json:"errors,omitempty"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "parsing get job response")
	}
	return &JobStatus{State: parsed.State, Errors: parsed.Errors}, nil
}

// CancelJob requests cancellation of jobID. Callers that treat
// cancellation as best-effort (logging but never failing reconciliation
// on an unreachable server) simply discard the returned error; callers
// that must distinguish "cancel accepted" from "cancel failed" - such as
// the statement-set delete handler, which picks its retry delay based on
// the outcome - use it directly.
func (c *HTTPClient) CancelJob(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		fmt.Sprintf("%s/jobs/%s?mode=cancel", c.RestURL, jobID), nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "building cancel job request")
	}
	resp, _, err := c.do(req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return apperrors.Newf(apperrors.ErrorTypeTransientUpstream, "cancel job returned status %d", resp.StatusCode)
	}
	return nil
}

// FreeSlots returns the job manager's currently available task slots, the
// admission check gating a new job submission.
func (c *HTTPClient) FreeSlots(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RestURL+"/overview", nil)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "building overview request")
	}

	resp, respBody, err := c.do(req)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.Newf(apperrors.ErrorTypeTransientUpstream, "overview returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		SlotsAvailable int `json:"slots-available"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "parsing overview response")
	}
	return parsed.SlotsAvailable, nil
}

// sqlGatewaySession is the literal session segment the SQL gateway
// statement endpoint is submitted under. Sessions are never created or
// rotated; the gateway accepts statements under this fixed name.
const sqlGatewaySession = "session"

// SubmitStatementSet posts statement to the SQL gateway's fixed "session"
// session and returns the resulting job id.
func (c *HTTPClient) SubmitStatementSet(ctx context.Context, statement string) (string, error) {
	reqBody, err := json.Marshal(struct {
		Statement string `json:"statement"`
	}{Statement: statement})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeInternal, "encoding statement set request")
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/statements", c.SQLGatewayURL, sqlGatewaySession)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "building statement set request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, respBody, err := c.do(req)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.Newf(apperrors.ErrorTypeTransientUpstream, "sql gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		JobID string `json:"jobid"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "parsing statement set response")
	}
	return parsed.JobID, nil
}

func (c *HTTPClient) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrorTypeNetwork, "calling flink")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "reading flink response body")
	}
	return resp, body, nil
}
