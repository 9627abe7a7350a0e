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

// Package tableindex is a typed (namespace, name) -> BeamSqlTable reader
// backed by the controller-runtime cache. It holds no state of its own;
// the Kubernetes watch layer owns the cache.
package tableindex

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/client"

	tablev1alpha1 "github.com/oisp-org/beam-operator/api/beamsqltable/v1alpha1"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// Index resolves a BeamSqlTable by namespace and name.
type Index interface {
	Get(ctx context.Context, namespace, name string) (*tablev1alpha1.BeamSqlTable, error)
}

// ClientIndex is the production Index, a thin wrapper over a
// controller-runtime cache-backed client.Client.
type ClientIndex struct {
	Client client.Client
}

// NewClientIndex builds an Index over c.
func NewClientIndex(c client.Client) *ClientIndex {
	return &ClientIndex{Client: c}
}

// Get reads the named BeamSqlTable from the cache. A missing entry is
// reported as a retryable NotFound AppError so the caller's reconcile
// loop requeues instead of treating a momentary informer-sync lag as a
// permanent failure.
func (i *ClientIndex) Get(ctx context.Context, namespace, name string) (*tablev1alpha1.BeamSqlTable, error) {
	var table tablev1alpha1.BeamSqlTable
	key := client.ObjectKey{Namespace: namespace, Name: name}
	if err := i.Client.Get(ctx, key, &table); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeNotFound, "looking up BeamSqlTable %s/%s", namespace, name)
	}
	return &table, nil
}
