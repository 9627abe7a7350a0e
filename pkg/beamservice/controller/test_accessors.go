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

	beamservicev1 "github.com/oisp-org/beam-operator/api/beamservice/v1"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// ============================================================================
// TEST ACCESSORS
// These methods expose private reconciler methods for unit testing.
// ============================================================================

// HandleCreateForTest exposes handleCreate for unit tests.
func (r *Reconciler) HandleCreateForTest(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	return r.handleCreate(ctx, svc)
}

// HandleResetForTest exposes handleReset for unit tests.
func (r *Reconciler) HandleResetForTest(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	return r.handleReset(ctx, svc)
}

// HandleDeleteForTest exposes handleDelete for unit tests.
func (r *Reconciler) HandleDeleteForTest(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	return r.handleDelete(ctx, svc)
}

// HandleTimerTickForTest exposes handleTimerTick for unit tests.
func (r *Reconciler) HandleTimerTickForTest(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	return r.handleTimerTick(ctx, svc)
}

// HandleDeployForTest exposes handleDeploy for unit tests.
func (r *Reconciler) HandleDeployForTest(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	return r.handleDeploy(ctx, svc)
}

// HandleJobCreatingForTest exposes handleJobCreating for unit tests.
func (r *Reconciler) HandleJobCreatingForTest(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	return r.handleJobCreating(ctx, svc)
}

// HandleCheckJobForTest exposes handleCheckJob for unit tests.
func (r *Reconciler) HandleCheckJobForTest(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	return r.handleCheckJob(ctx, svc)
}

// ResetTriggeredForTest exposes resetTriggered for unit tests.
func ResetTriggeredForTest(svc *beamservicev1.BeamService) bool {
	return resetTriggered(svc)
}
