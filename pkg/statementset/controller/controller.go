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

// Package controller reconciles BeamSqlStatementSet: resolving its
// referenced BeamSqlTable rows into CREATE TABLE DDL, composing one
// Flink statement set, submitting it to the SQL gateway, and keeping
// status in step with the job's reported state until deletion cancels it.
package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	statementsetv1alpha1 "github.com/oisp-org/beam-operator/api/beamsqlstatementset/v1alpha1"
	"github.com/oisp-org/beam-operator/internal/config"
	"github.com/oisp-org/beam-operator/internal/ddl"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
	"github.com/oisp-org/beam-operator/internal/flinkclient"
	"github.com/oisp-org/beam-operator/internal/kafkacheck"
	"github.com/oisp-org/beam-operator/internal/tableindex"
	"github.com/oisp-org/beam-operator/pkg/audit"
	"github.com/oisp-org/beam-operator/pkg/metrics"
	"github.com/oisp-org/beam-operator/pkg/statementset/phase"
)

// finalizerName blocks actual Kubernetes deletion until the reconciler
// has confirmed the Flink job is canceled.
const finalizerName = "oisp.org/beamsqlstatementset"

// waitingForCancelConfirmation is the delay after a successful cancel
// request, while polling for the job to actually reach CANCELED.
const waitingForCancelConfirmation = 5 * time.Second

// cancelRetryDelay is the delay after a failed cancel attempt or a failed
// confirmation poll.
const cancelRetryDelay = 10 * time.Second

// Reconciler reconciles a BeamSqlStatementSet.
type Reconciler struct {
	Client       client.Client
	Scheme       *runtime.Scheme
	Flink        flinkclient.Client
	TableIndex   tableindex.Index
	KafkaChecker kafkacheck.Checker
	Config       *config.Config
	Metrics      *metrics.Metrics
	Audit        *audit.Helpers
}

// NewReconciler builds a Reconciler. kafkaChecker may be nil when
// Config.VerifyKafkaTopics is false; the deploy handler never dereferences
// it otherwise.
func NewReconciler(c client.Client, scheme *runtime.Scheme, flink flinkclient.Client, tableIndex tableindex.Index, kafkaChecker kafkacheck.Checker, cfg *config.Config, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		Client:       c,
		Scheme:       scheme,
		Flink:        flink,
		TableIndex:   tableIndex,
		KafkaChecker: kafkaChecker,
		Config:       cfg,
		Metrics:      m,
		Audit:        audit.NewHelpers(audit.ServiceName),
	}
}

// Reconcile implements the BeamSqlStatementSet lifecycle: finalizer
// bookkeeping, create, and the state-machine timer tick.
func (r *Reconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("beamsqlstatementset", req.NamespacedName)
	start := time.Now()

	var set statementsetv1alpha1.BeamSqlStatementSet
	if err := r.Client.Get(ctx, req.NamespacedName, &set); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if !set.DeletionTimestamp.IsZero() {
		if !controllerutil.ContainsFinalizer(&set, finalizerName) {
			return ctrl.Result{}, nil
		}
		outcome := r.handleDelete(ctx, &set)
		if outcome.Err == nil && !outcome.Requeue {
			controllerutil.RemoveFinalizer(&set, finalizerName)
			if err := r.Client.Update(ctx, &set); err != nil {
				return ctrl.Result{}, err
			}
			return ctrl.Result{}, nil
		}
		return r.finish(logger, &set, start, outcome)
	}

	if !controllerutil.ContainsFinalizer(&set, finalizerName) {
		controllerutil.AddFinalizer(&set, finalizerName)
		if err := r.Client.Update(ctx, &set); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{Requeue: true}, nil
	}

	var outcome apperrors.Outcome
	if set.Status.State == "" {
		outcome = r.handleCreate(ctx, &set)
	} else {
		outcome = r.handleTimerTick(ctx, &set)
	}
	return r.finish(logger, &set, start, outcome)
}

func (r *Reconciler) finish(logger logr.Logger, set *statementsetv1alpha1.BeamSqlStatementSet, start time.Time, outcome apperrors.Outcome) (ctrl.Result, error) {
	result := metrics.ResultSuccess
	switch {
	case outcome.Err != nil:
		result = metrics.ResultError
	case outcome.Requeue:
		result = metrics.ResultRequeue
	}
	if r.Metrics != nil {
		r.Metrics.ReconcileTotal.WithLabelValues(metrics.KindBeamSqlStatementSet, result).Inc()
		r.Metrics.ReconcileDuration.WithLabelValues(metrics.KindBeamSqlStatementSet).Observe(time.Since(start).Seconds())
	}

	if outcome.Err != nil {
		if !apperrors.IsRetryable(outcome.Err) {
			logger.Error(outcome.Err, "reconcile failed permanently")
			return ctrl.Result{}, nil
		}
		logger.Error(outcome.Err, "reconcile failed, retrying", "after", outcome.RequeueAfter)
		return ctrl.Result{RequeueAfter: outcome.RequeueAfter}, nil
	}
	if outcome.Requeue {
		return ctrl.Result{RequeueAfter: outcome.RequeueAfter}, nil
	}
	return ctrl.Result{RequeueAfter: r.Config.TimerInterval}, nil
}

// setPhase writes a new status.state after consulting the phase table.
// Same-state refreshes are no-ops; a move outside the documented
// transitions is logged before being written, since the job manager's
// report is authoritative even when surprising.
func (r *Reconciler) setPhase(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet, to phase.Phase) {
	from := phase.Phase(set.Status.State)
	if from == to {
		return
	}
	if from != "" && !phase.CanTransition(from, to) {
		log.FromContext(ctx).Info("state moved outside the documented transition table",
			"from", string(from), "to", string(to))
	}
	set.Status.State = string(to)
}

// handleCreate sets the explicit INITIALIZED/job_id=null starting state.
func (r *Reconciler) handleCreate(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	r.setPhase(ctx, set, phase.Initialized)
	set.Status.JobID = nil
	set.Status.DeleteRetryCount = 0
	if err := r.Client.Status().Update(ctx, set); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting initialized status"), r.Config.TimerBackoffInterval)
	}
	return apperrors.RequeueAfter(r.Config.TimerInterval)
}

func (r *Reconciler) handleTimerTick(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	switch phase.Phase(set.Status.State) {
	case phase.Initialized, phase.DeploymentFailure:
		return r.handleDeploy(ctx, set)
	case phase.Canceled, phase.Canceling:
		return apperrors.Ok()
	default:
		return r.handleCheckJob(ctx, set)
	}
}

// handleDeploy resolves every referenced table, synthesizes its DDL,
// composes one statement set, and submits it. A table lookup or DDL
// synthesis failure is retryable and leaves status untouched entirely,
// regardless of the underlying error's own classification - this
// handler's contract overrides the usual validation-is-permanent
// convention, because a referenced table may simply not exist yet.
func (r *Reconciler) handleDeploy(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	logger := log.FromContext(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "SET pipeline.name = '%s/%s';\n", set.Namespace, set.Name)

	for _, tableName := range set.Spec.Tables {
		table, err := r.TableIndex.Get(ctx, set.Namespace, tableName)
		if err != nil {
			logger.Error(err, "resolving referenced table", "table", tableName)
			return apperrors.RequeueAfter(r.Config.TimerBackoffInterval)
		}

		if r.Config.VerifyKafkaTopics && r.KafkaChecker != nil && table.Spec.Connector == "kafka" {
			topic := table.Spec.Kafka.Topic()
			exists, err := r.KafkaChecker.TopicExists(ctx, table.Spec.Kafka.BootstrapServers(), topic)
			if err != nil {
				logger.Error(err, "verifying kafka topic", "table", tableName, "topic", topic)
				return apperrors.RequeueAfter(r.Config.TimerBackoffInterval)
			}
			if !exists {
				logger.Error(nil, "kafka topic not found", "table", tableName, "topic", topic)
				return apperrors.RequeueAfter(r.Config.TimerBackoffInterval)
			}
		}

		stmt, err := ddl.Synthesize(tableName, &table.Spec)
		if err != nil {
			logger.Error(err, "synthesizing table DDL", "table", tableName)
			return apperrors.RequeueAfter(r.Config.TimerBackoffInterval)
		}
		b.WriteString(stmt)
		b.WriteString("\n")
	}

	b.WriteString("BEGIN STATEMENT SET;\n")
	for _, stmt := range set.Spec.SqlStatements {
		b.WriteString(stmt)
		b.WriteString("\n")
	}
	b.WriteString("END;")

	jobID, err := r.Flink.SubmitStatementSet(ctx, b.String())
	if err != nil {
		r.setPhase(ctx, set, phase.DeploymentFailure)
		set.Status.JobID = nil
		if uerr := r.Client.Status().Update(ctx, set); uerr != nil {
			return apperrors.Fail(apperrors.Wrap(uerr, apperrors.ErrorTypeTransientUpstream, "persisting deployment failure"), r.Config.TimerBackoffInterval)
		}
		logger.Error(err, "submitting statement set")
		return apperrors.RequeueAfter(r.Config.TimerBackoffTemporaryFailureInterval)
	}

	correlationID := uuid.NewString()
	if event, err := r.Audit.BuildPhaseTransitionEvent(correlationID, set.Namespace, "BeamSqlStatementSet", set.Name, set.Status.State, string(phase.Deploying)); err == nil {
		audit.Log(logger, event)
	}

	r.setPhase(ctx, set, phase.Deploying)
	set.Status.JobID = &jobID
	if err := r.Client.Status().Update(ctx, set); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting deploying status"), r.Config.TimerBackoffInterval)
	}
	return apperrors.RequeueAfter(r.Config.TimerInterval)
}

// handleCheckJob refreshes DEPLOYING/RUNNING/FAILED/UNKNOWN state from
// the job manager's report. A reported state outside the closed phase
// enum (Flink has more job states than this resource models) is
// normalized to UNKNOWN so the next tick keeps monitoring.
func (r *Reconciler) handleCheckJob(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	jobID := ""
	if set.Status.JobID != nil {
		jobID = *set.Status.JobID
	}

	job, err := r.Flink.GetJob(ctx, jobID)
	if err != nil || job.NotFound {
		r.setPhase(ctx, set, phase.Unknown)
		if uerr := r.Client.Status().Update(ctx, set); uerr != nil {
			return apperrors.Fail(apperrors.Wrap(uerr, apperrors.ErrorTypeTransientUpstream, "persisting unknown status"), r.Config.TimerBackoffInterval)
		}
		return apperrors.RequeueAfter(r.Config.TimerBackoffInterval)
	}

	reported := phase.Phase(job.State)
	if phase.Validate(reported) != nil {
		reported = phase.Unknown
	}
	r.setPhase(ctx, set, reported)
	if err := r.Client.Status().Update(ctx, set); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting refreshed status"), r.Config.TimerBackoffInterval)
	}
	return apperrors.RequeueAfter(r.Config.TimerInterval)
}

// handleDelete implements the two-phase cancel-then-confirm delete
// protocol, bounded by Config.DeleteMaxRetry consecutive failures - a
// retry budget distinct from the deploy-handler's MaxRetry.
func (r *Reconciler) handleDelete(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet) apperrors.Outcome {
	logger := log.FromContext(ctx)
	current := phase.Phase(set.Status.State)

	if current != phase.Canceled && current != phase.Canceling {
		jobID := ""
		if set.Status.JobID != nil {
			jobID = *set.Status.JobID
		}
		if err := r.Flink.CancelJob(ctx, jobID); err != nil {
			return r.deleteRetryFailed(ctx, set, err)
		}
		correlationID := uuid.NewString()
		if event, err := r.Audit.BuildPhaseTransitionEvent(correlationID, set.Namespace, "BeamSqlStatementSet", set.Name, set.Status.State, string(phase.Canceling)); err == nil {
			audit.Log(logger, event)
		}
		r.setPhase(ctx, set, phase.Canceling)
		set.Status.DeleteRetryCount = 0
		if err := r.Client.Status().Update(ctx, set); err != nil {
			return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting canceling status"), cancelRetryDelay)
		}
		return apperrors.RequeueAfter(waitingForCancelConfirmation)
	}

	jobID := ""
	if set.Status.JobID != nil {
		jobID = *set.Status.JobID
	}
	job, err := r.Flink.GetJob(ctx, jobID)
	if err != nil {
		return r.deleteRetryFailed(ctx, set, err)
	}
	if job.NotFound || job.State == string(phase.Canceled) {
		logger.Info("confirmed job canceled, permitting deletion")
		return apperrors.Ok()
	}
	return apperrors.RequeueAfter(waitingForCancelConfirmation)
}

// deleteRetryFailed records a failed cancel/confirm attempt and gives up
// with a permanent error once Config.DeleteMaxRetry is exhausted, rather
// than requeuing a wedged delete forever.
func (r *Reconciler) deleteRetryFailed(ctx context.Context, set *statementsetv1alpha1.BeamSqlStatementSet, cause error) apperrors.Outcome {
	set.Status.DeleteRetryCount++
	if set.Status.DeleteRetryCount >= r.Config.DeleteMaxRetry {
		correlationID := uuid.NewString()
		if event, err := r.Audit.BuildRetryExhaustionEvent(correlationID, set.Namespace, "BeamSqlStatementSet", set.Name, set.Status.DeleteRetryCount, r.Config.DeleteMaxRetry, cause.Error()); err == nil {
			audit.Log(log.FromContext(ctx), event)
		}
		if r.Metrics != nil {
			r.Metrics.RetryExhaustionTotal.WithLabelValues(metrics.KindBeamSqlStatementSet).Inc()
		}
		return apperrors.Fail(apperrors.NewRetryExhaustionError("statement set delete", set.Status.DeleteRetryCount), 0)
	}
	if err := r.Client.Status().Update(ctx, set); err != nil {
		return apperrors.Fail(apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "persisting delete retry count"), cancelRetryDelay)
	}
	return apperrors.Fail(cause, cancelRetryDelay)
}

// SetupWithManager registers this reconciler for BeamSqlStatementSet. It
// registers no field index; internal/tableindex looks BeamSqlTable up by
// namespace/name through the manager's cache-backed client.
func (r *Reconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&statementsetv1alpha1.BeamSqlStatementSet{}).
		Complete(r)
}
