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

package controller

import (
	"context"

	statementsetv1alpha1 "github.com/oisp-org/beam-operator/api/beamsqlstatementset/v1alpha1"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// HandleCreateForTest exposes handleCreate to tests outside this package.
func (r *Reconciler) HandleCreateForTest(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	return r.handleCreate(ctx, set)
}

// HandleTimerTickForTest exposes handleTimerTick to tests outside this package.
func (r *Reconciler) HandleTimerTickForTest(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	return r.handleTimerTick(ctx, set)
}

// HandleDeployForTest exposes handleDeploy to tests outside this package.
func (r *Reconciler) HandleDeployForTest(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	return r.handleDeploy(ctx, set)
}

// HandleCheckJobForTest exposes handleCheckJob to tests outside this package.
func (r *Reconciler) HandleCheckJobForTest(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	return r.handleCheckJob(ctx, set)
}

// HandleDeleteForTest exposes handleDelete to tests outside this package.
func (r *Reconciler) HandleDeleteForTest(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	return r.handleDelete(ctx, set)
}
