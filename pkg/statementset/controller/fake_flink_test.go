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

	tablev1alpha1 "github.com/oisp-org/beam-operator/api/beamsqltable/v1alpha1"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
	"github.com/oisp-org/beam-operator/internal/flinkclient"
)

var errNotFound = apperrors.NewNotFoundError("BeamSqlTable")

// fakeFlinkClient is a hand-written flinkclient.Client double scripted per
// test, with a call log for cancel/submit assertions.
type fakeFlinkClient struct {
	submitJobID  string
	submitErr    error
	submittedSQL []string

	jobStatus *flinkclient.JobStatus
	getJobErr error

	cancelErr    error
	canceledJobs []string
}

func (f *fakeFlinkClient) UploadJar(ctx context.Context, path string) (string, error) { return "", nil }

func (f *fakeFlinkClient) RunJob(ctx context.Context, jarID, entryClass, programArgs string) (string, error) {
	return "", nil
}

func (f *fakeFlinkClient) GetJob(ctx context.Context, jobID string) (*flinkclient.JobStatus, error) {
	if f.getJobErr != nil {
		return nil, f.getJobErr
	}
	return f.jobStatus, nil
}

func (f *fakeFlinkClient) CancelJob(ctx context.Context, jobID string) error {
	f.canceledJobs = append(f.canceledJobs, jobID)
	return f.cancelErr
}

func (f *fakeFlinkClient) FreeSlots(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeFlinkClient) SubmitStatementSet(ctx context.Context, statement string) (string, error) {
	f.submittedSQL = append(f.submittedSQL, statement)
	return f.submitJobID, f.submitErr
}

// fakeTableIndex is a hand-written tableindex.Index double backed by an
// in-memory map keyed "namespace/name".
type fakeTableIndex struct {
	tables map[string]*tablev1alpha1.BeamSqlTable
	err    error
}

func newFakeTableIndex() *fakeTableIndex {
	return &fakeTableIndex{tables: map[string]*tablev1alpha1.BeamSqlTable{}}
}

func (f *fakeTableIndex) put(namespace, name string, table *tablev1alpha1.BeamSqlTable) {
	f.tables[namespace+"/"+name] = table
}

func (f *fakeTableIndex) Get(ctx context.Context, namespace, name string) (*tablev1alpha1.BeamSqlTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	table, ok := f.tables[namespace+"/"+name]
	if !ok {
		return nil, errNotFound
	}
	return table, nil
}

// fakeKafkaChecker is a hand-written kafkacheck.Checker double.
type fakeKafkaChecker struct {
	exists bool
	err    error
}

func (f *fakeKafkaChecker) TopicExists(ctx context.Context, bootstrapServers, topic string) (bool, error) {
	return f.exists, f.err
}
