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

// Package controller reconciles BeamService: it drives a declarative
// package URL through artifact download, jar upload, and job submission,
// and heals the Flink job if it disappears or fails. It is the only
// writer of BeamService.status.
package controller

import (
	"bytes"
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	beamservicev1 "github.com/oisp-org/beam-operator/api/beamservice/v1"
	"github.com/oisp-org/beam-operator/internal/artifact"
	"github.com/oisp-org/beam-operator/internal/config"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
	"github.com/oisp-org/beam-operator/internal/flinkclient"
	"github.com/oisp-org/beam-operator/internal/template"
	"github.com/oisp-org/beam-operator/pkg/audit"
	"github.com/oisp-org/beam-operator/pkg/beamservice/phase"
	"github.com/oisp-org/beam-operator/pkg/metrics"
)

// jobSubmissionBackoff is the delay before retrying a job submission.
const jobSubmissionBackoff = 5 * time.Second

func nowTime() metav1.Time {
	return metav1.Now()
}

// Reconciler reconciles a BeamService object.
type Reconciler struct {
	Client  client.Client
	Scheme  *runtime.Scheme
	Flink   flinkclient.Client
	Fetcher *artifact.Fetcher
	Config  *config.Config
	Metrics *metrics.Metrics
	Audit   *audit.Helpers
}

// NewReconciler builds a Reconciler from its collaborators.
func NewReconciler(c client.Client, scheme *runtime.Scheme, flink flinkclient.Client, fetcher *artifact.Fetcher, cfg *config.Config, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		Client:  c,
		Scheme:  scheme,
		Flink:   flink,
		Fetcher: fetcher,
		Config:  cfg,
		Metrics: m,
		Audit:   audit.NewHelpers(audit.ServiceName),
	}
}

// Reconcile implements the controller-runtime Reconciler interface.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	start := time.Now()

	var svc beamservicev1.BeamService
	if err := r.Client.Get(ctx, req.NamespacedName, &svc); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	var outcome apperrors.Outcome
	switch {
	case !svc.DeletionTimestamp.IsZero():
		outcome = r.handleDelete(ctx, &svc)
	case svc.Status.CreatedOn == nil:
		outcome = r.handleCreate(ctx, &svc)
	case resetTriggered(&svc):
		outcome = r.handleReset(ctx, &svc)
	default:
		outcome = r.handleTimerTick(ctx, &svc)
	}

	return r.finish(logger, &svc, start, outcome)
}

// finish converts an Outcome into a ctrl.Result, records metrics, and logs
// the result. A successful outcome with no explicit requeue falls back to
// the configured timer interval, giving the periodic-timer semantics
// without a second, component-owned ticker.
func (r *Reconciler) finish(logger logr.Logger, svc *beamservicev1.BeamService, start time.Time, outcome apperrors.Outcome) (ctrl.Result, error) {
	result := metrics.ResultSuccess
	if outcome.Err != nil {
		result = metrics.ResultError
	} else if outcome.Requeue {
		result = metrics.ResultRequeue
	}
	if r.Metrics != nil {
		r.Metrics.ReconcileTotal.WithLabelValues(metrics.KindBeamService, result).Inc()
		r.Metrics.ReconcileDuration.WithLabelValues(metrics.KindBeamService).Observe(time.Since(start).Seconds())
	}

	if outcome.Err != nil {
		if !apperrors.IsRetryable(outcome.Err) {
			logger.Error(outcome.Err, "permanent failure reconciling BeamService", "name", svc.Name, "namespace", svc.Namespace)
			return ctrl.Result{}, nil
		}
		logger.Error(outcome.Err, "retryable failure reconciling BeamService", "name", svc.Name, "namespace", svc.Namespace)
		return ctrl.Result{RequeueAfter: outcome.RequeueAfter}, nil
	}
	if outcome.Requeue {
		return ctrl.Result{RequeueAfter: outcome.RequeueAfter}, nil
	}
	return ctrl.Result{RequeueAfter: r.Config.TimerInterval}, nil
}

// updateStatus stamps UpdatedOn and persists the status subresource.
// Every status-mutating transition goes through here so the stamp is
// never skipped.
func (r *Reconciler) updateStatus(ctx context.Context, svc *beamservicev1.BeamService) error {
	now := nowTime()
	svc.Status.UpdatedOn = &now
	return r.Client.Status().Update(ctx, svc)
}

func resetTriggered(svc *beamservicev1.BeamService) bool {
	if svc.Spec.Reset == nil {
		return svc.Status.LastResetObserved != nil
	}
	if svc.Status.LastResetObserved == nil {
		return true
	}
	return !bytes.Equal(svc.Spec.Reset.Raw, svc.Status.LastResetObserved.Raw)
}

// handleCreate installs the zeroed status a freshly created BeamService
// starts from: every flag false, every pointer nil.
func (r *Reconciler) handleCreate(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	now := nowTime()
	svc.Status = phase.NewStatus(now)
	if err := r.updateStatus(ctx, svc); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "initializing BeamService status"), r.Config.TimerBackoffInterval)
	}
	return apperrors.RequeueAfter(r.Config.TimerInterval)
}

// handleReset implements "On spec.reset field change: cancel the job,
// delete the jar, reset all status."
func (r *Reconciler) handleReset(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	r.cancelAndCleanup(ctx, svc)
	svc.Status = phase.Reset(svc.Status, nowTime())
	svc.Status.LastResetObserved = svc.Spec.Reset
	if err := r.updateStatus(ctx, svc); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting reset status"), r.Config.TimerBackoffInterval)
	}
	return apperrors.RequeueAfter(r.Config.TimerInterval)
}

// handleDelete implements "On delete: cancel the job (if jobId), delete the
// local jar (if jarPath)." BeamService deletion is not finalizer-gated:
// unlike BeamSqlStatementSet, nothing downstream needs confirmation that
// the Flink job actually stopped before Kubernetes removes the resource.
func (r *Reconciler) handleDelete(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	r.cancelAndCleanup(ctx, svc)
	return apperrors.Ok()
}

func (r *Reconciler) cancelAndCleanup(ctx context.Context, svc *beamservicev1.BeamService) {
	if svc.Status.JobID != nil {
		r.Flink.CancelJob(ctx, *svc.Status.JobID)
	}
	if svc.Status.JarPath != nil {
		_ = artifact.Delete(*svc.Status.JarPath)
	}
}

// handleTimerTick evaluates the pure decision for this tick and performs
// whatever I/O the decision calls for.
func (r *Reconciler) handleTimerTick(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	decision := phase.DecideTimerTick(svc.Status)
	switch decision.Kind {
	case phase.FatalUninitialized:
		return apperrors.Fail(apperrors.New(apperrors.ErrorTypeInternal, "BeamService status was never initialized"), 0)

	case phase.StartDeploying:
		svc.Status.Deploying = true
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "marking BeamService deploying"), r.Config.TimerBackoffInterval)
		}
		return r.handleDeploy(ctx, svc)

	case phase.FixDeployingInconsistent:
		svc.Status.Deploying = false
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "fixing inconsistent deploying status"), r.Config.TimerBackoffInterval)
		}
		return apperrors.RequeueAfter(r.Config.TimerInterval)

	case phase.WaitDeploying:
		return apperrors.RequeueAfter(r.Config.TimerInterval)

	case phase.StartJobCreating:
		svc.Status.JobCreating = true
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "marking BeamService job-creating"), r.Config.TimerBackoffInterval)
		}
		return r.handleJobCreating(ctx, svc)

	case phase.FixJobCreatingInconsistent:
		svc.Status.JobCreating = false
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "fixing inconsistent job-creating status"), r.Config.TimerBackoffInterval)
		}
		return apperrors.RequeueAfter(r.Config.TimerInterval)

	case phase.WaitJobCreating:
		return apperrors.RequeueAfter(r.Config.TimerInterval)

	default: // phase.CheckJob
		return r.handleCheckJob(ctx, svc)
	}
}

// handleDeploy is rule D: the deploy handler, triggered by status.deploying
// becoming true.
func (r *Reconciler) handleDeploy(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	logger := log.FromContext(ctx)
	if svc.Status.JarPath != nil {
		_ = artifact.Delete(*svc.Status.JarPath)
		svc.Status.JarPath = nil
	}

	correlationID := uuid.NewString()
	if event, err := r.Audit.BuildArtifactDownloadStartedEvent(correlationID, svc.Namespace, svc.Name, svc.Spec.Package.URL); err == nil {
		audit.Log(logger, event)
	}

	jarPath, err := r.Fetcher.Fetch(ctx, svc.Spec.Package)
	if err != nil {
		return r.deployOrSubmitFailed(ctx, svc, err, r.Config.TimerBackoffTemporaryFailureInterval)
	}
	svc.Status.JarPath = &jarPath

	jarID, err := r.Flink.UploadJar(ctx, jarPath)
	if err != nil {
		if event, berr := r.Audit.BuildArtifactUploadFailedEvent(correlationID, svc.Namespace, svc.Name, err.Error()); berr == nil {
			audit.Log(logger, event)
		}
		return r.deployOrSubmitFailed(ctx, svc, err, r.Config.TimerBackoffTemporaryFailureInterval)
	}
	if event, err := r.Audit.BuildArtifactUploadSucceededEvent(correlationID, svc.Namespace, svc.Name, jarID); err == nil {
		audit.Log(logger, event)
	}

	svc.Status.Deployed = true
	svc.Status.Deploying = false
	svc.Status.JarID = &jarID
	svc.Status.RetryCount = 0
	if err := r.updateStatus(ctx, svc); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting deploy success"), r.Config.TimerBackoffInterval)
	}
	return apperrors.RequeueAfter(r.Config.TimerInterval)
}

// handleJobCreating is rule J: the job-submission handler, triggered by
// status.jobCreating becoming true.
func (r *Reconciler) handleJobCreating(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	free, err := r.Flink.FreeSlots(ctx)
	if err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "checking free slots"), jobSubmissionBackoff)
	}
	if free <= 0 {
		return apperrors.RequeueAfter(jobSubmissionBackoff)
	}

	args, err := template.Render(svc.Spec.Args, svc.Spec.Tokens)
	if err != nil {
		return apperrors.Fail(apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "rendering program arguments"), 0)
	}

	jobID, err := r.Flink.RunJob(ctx, *svc.Status.JarID, svc.Spec.EntryClass, args)
	if err != nil {
		return r.deployOrSubmitFailed(ctx, svc, err, jobSubmissionBackoff)
	}

	correlationID := uuid.NewString()
	if event, err := r.Audit.BuildJobCreatedEvent(correlationID, svc.Namespace, svc.Name, jobID); err == nil {
		audit.Log(log.FromContext(ctx), event)
	}

	svc.Status.JobID = &jobID
	svc.Status.JobCreated = true
	svc.Status.JobCreating = false
	svc.Status.RetryCount = 0
	if err := r.updateStatus(ctx, svc); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting job-created status"), r.Config.TimerBackoffInterval)
	}
	return apperrors.RequeueAfter(r.Config.TimerInterval)
}

// deployOrSubmitFailed applies the shared MAX_RETRY bookkeeping for both
// the deploy and job-submission handlers: retry until the budget is
// exhausted, then fall back to a full reset. A structural validation
// failure (e.g. an unrecognized package URL scheme) never becomes valid by
// retrying, so it bypasses the retry budget entirely and is surfaced as an
// immediate permanent failure.
func (r *Reconciler) deployOrSubmitFailed(ctx context.Context, svc *beamservicev1.BeamService, cause error, backoff time.Duration) apperrors.Outcome {
	if apperrors.IsType(cause, apperrors.ErrorTypeValidation) {
		return apperrors.Fail(cause, 0)
	}

	svc.Status.RetryCount++
	if phase.ShouldResetOnRetryExhaustion(svc.Status.RetryCount, r.Config.MaxRetry) {
		correlationID := uuid.NewString()
		if event, err := r.Audit.BuildRetryExhaustionEvent(correlationID, svc.Namespace, "BeamService", svc.Name, svc.Status.RetryCount, r.Config.MaxRetry, cause.Error()); err == nil {
			audit.Log(log.FromContext(ctx), event)
		}
		if r.Metrics != nil {
			r.Metrics.RetryExhaustionTotal.WithLabelValues(metrics.KindBeamService).Inc()
		}
		svc.Status = phase.Reset(svc.Status, nowTime())
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting retry-exhaustion reset"), r.Config.TimerBackoffInterval)
		}
		return apperrors.RequeueAfter(r.Config.TimerInterval)
	}

	if err := r.updateStatus(ctx, svc); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting retry count"), r.Config.TimerBackoffInterval)
	}
	return apperrors.Fail(cause, backoff)
}

// handleCheckJob is rule 8: the steady-state path, asking Flink about the
// job already believed to be running.
func (r *Reconciler) handleCheckJob(ctx context.Context, svc *beamservicev1.BeamService) apperrors.Outcome {
	job, err := r.Flink.GetJob(ctx, *svc.Status.JobID)
	if err != nil {
		// A network error leaves status untouched; the next tick tries again.
		return apperrors.RequeueAfter(r.Config.TimerInterval)
	}

	decision := phase.DecideJobCheck(*job)
	switch decision.Kind {
	case phase.Redeploy:
		correlationID := uuid.NewString()
		if event, err := r.Audit.BuildJobNotFoundEvent(correlationID, svc.Namespace, svc.Name, *svc.Status.JobID); err == nil {
			audit.Log(log.FromContext(ctx), event)
		}
		svc.Status.Deployed = false
		svc.Status.JobCreated = false
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting redeploy trigger"), r.Config.TimerBackoffInterval)
		}
		return apperrors.RequeueAfter(r.Config.TimerInterval)

	case phase.RestartAfterFailure:
		correlationID := uuid.NewString()
		if event, err := r.Audit.BuildPhaseTransitionEvent(correlationID, svc.Namespace, "BeamService", svc.Name, job.State, decision.State); err == nil {
			audit.Log(log.FromContext(ctx), event)
		}
		r.Flink.CancelJob(ctx, *svc.Status.JobID)
		if svc.Status.JarPath != nil {
			_ = artifact.Delete(*svc.Status.JarPath)
		}
		svc.Status = phase.Reset(svc.Status, nowTime())
		svc.Status.State = &decision.State
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting restart-after-failure reset"), r.Config.TimerBackoffInterval)
		}
		return apperrors.RequeueAfter(r.Config.TimerInterval)

	default: // phase.ObserveState
		svc.Status.State = &decision.State
		if err := r.updateStatus(ctx, svc); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "recording observed job state"), r.Config.TimerBackoffInterval)
		}
		return apperrors.RequeueAfter(r.Config.TimerInterval)
	}
}

// SetupWithManager registers this reconciler with mgr.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&beamservicev1.BeamService{}).
		Complete(r)
}
