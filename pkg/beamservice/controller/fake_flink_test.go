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

package controller_test

import (
	"context"

	"github.com/oisp-org/beam-operator/internal/flinkclient"
)

// fakeFlinkClient is a hand-written flinkclient.Client double: scripted
// return values and a call log, no HTTP involved.
type fakeFlinkClient struct {
	uploadJarID   string
	uploadJarErr  error
	runJobID      string
	runJobErr     error
	jobStatus     *flinkclient.JobStatus
	getJobErr     error
	freeSlots     int
	freeSlotsErr  error
	statementJob  string
	statementErr  error
	canceledJobs  []string
	cancelJobErr  error
	uploadedPaths []string
}

func (f *fakeFlinkClient) UploadJar(ctx context.Context, path string) (string, error) {
	f.uploadedPaths = append(f.uploadedPaths, path)
	return f.uploadJarID, f.uploadJarErr
}

func (f *fakeFlinkClient) RunJob(ctx context.Context, jarID, entryClass, programArgs string) (string, error) {
	return f.runJobID, f.runJobErr
}

func (f *fakeFlinkClient) GetJob(ctx context.Context, jobID string) (*flinkclient.JobStatus, error) {
	if f.getJobErr != nil {
		return nil, f.getJobErr
	}
	return f.jobStatus, nil
}

func (f *fakeFlinkClient) CancelJob(ctx context.Context, jobID string) error {
	f.canceledJobs = append(f.canceledJobs, jobID)
	return f.cancelJobErr
}

func (f *fakeFlinkClient) FreeSlots(ctx context.Context) (int, error) {
	return f.freeSlots, f.freeSlotsErr
}

func (f *fakeFlinkClient) SubmitStatementSet(ctx context.Context, statement string) (string, error) {
	return f.statementJob, f.statementErr
}
