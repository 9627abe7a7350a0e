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

// Package phase holds BeamService's status-flag invariants as pure
// decision functions: given an observed status, they say which lifecycle
// rule applies, without performing any I/O. The reconciler in
// pkg/beamservice/controller interprets each Decision and does the
// actual work (Kubernetes patches, Flink calls).
package phase

import (
	beamservicev1 "github.com/oisp-org/beam-operator/api/beamservice/v1"
	"github.com/oisp-org/beam-operator/internal/flinkclient"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DecisionKind names which timer-tick rule applies, in the same order
// they're evaluated.
type DecisionKind string

const (
	// FatalUninitialized is rule 1: the resource's status was never
	// initialized by the create handler.
	FatalUninitialized DecisionKind = "fatal_uninitialized"
	// StartDeploying is rule 2: neither deployed nor deploying, begin the
	// deploy handler.
	StartDeploying DecisionKind = "start_deploying"
	// FixDeployingInconsistent is rule 3: deployed and deploying are both
	// set, self-heal by clearing deploying.
	FixDeployingInconsistent DecisionKind = "fix_deploying_inconsistent"
	// WaitDeploying is rule 4: a deploy is already in flight.
	WaitDeploying DecisionKind = "wait_deploying"
	// StartJobCreating is rule 5: deployed, neither jobCreated nor
	// jobCreating, begin the job-submission handler.
	StartJobCreating DecisionKind = "start_job_creating"
	// FixJobCreatingInconsistent is rule 6: jobCreating and jobCreated are
	// both set, self-heal by clearing jobCreating.
	FixJobCreatingInconsistent DecisionKind = "fix_job_creating_inconsistent"
	// WaitJobCreating is rule 7: a job submission is already in flight.
	WaitJobCreating DecisionKind = "wait_job_creating"
	// CheckJob is rule 8: steady state, ask Flink about the running job.
	CheckJob DecisionKind = "check_job"
)

// Decision is the outcome of evaluating one timer tick against a
// BeamService's current status.
type Decision struct {
	Kind DecisionKind
}

// DecideTimerTick evaluates the rules of a BeamService timer tick, in
// order, stopping at the first applicable one. CreatedOn is the
// initialization sentinel: a status that has never been through the
// create handler has no CreatedOn stamp.
func DecideTimerTick(status beamservicev1.BeamServiceStatus) Decision {
	switch {
	case status.CreatedOn == nil:
		return Decision{Kind: FatalUninitialized}
	case !status.Deployed && !status.Deploying:
		return Decision{Kind: StartDeploying}
	case status.Deployed && status.Deploying:
		return Decision{Kind: FixDeployingInconsistent}
	case status.Deploying:
		return Decision{Kind: WaitDeploying}
	case !status.JobCreated && !status.JobCreating:
		return Decision{Kind: StartJobCreating}
	case status.JobCreating && status.JobCreated:
		return Decision{Kind: FixJobCreatingInconsistent}
	case status.JobCreating:
		return Decision{Kind: WaitJobCreating}
	default:
		return Decision{Kind: CheckJob}
	}
}

// JobCheckKind names how a CheckJob decision's Flink response should be
// folded back into status.
type JobCheckKind string

const (
	// Redeploy is the 404 case: the job manager has forgotten this job,
	// a full redeploy is needed.
	Redeploy JobCheckKind = "redeploy"
	// RestartAfterFailure is the 200/FAILED case: cancel, drop the local
	// jar, and reset, recording the synthetic "RESTARTING" state.
	RestartAfterFailure JobCheckKind = "restart_after_failure"
	// ObserveState is the 200/otherwise case: simply record the reported
	// state.
	ObserveState JobCheckKind = "observe_state"
)

// JobCheckDecision is the outcome of interpreting a getJob response for a
// CheckJob tick. State is meaningful for RestartAfterFailure (always
// "RESTARTING") and ObserveState (the Flink-reported state); it is empty
// for Redeploy.
type JobCheckDecision struct {
	Kind  JobCheckKind
	State string
}

const restartingState = "RESTARTING"

// DecideJobCheck interprets a successful getJob response. A network error
// from getJob never reaches this function: it leaves status untouched and
// the caller simply doesn't call this.
func DecideJobCheck(job flinkclient.JobStatus) JobCheckDecision {
	if job.NotFound {
		return JobCheckDecision{Kind: Redeploy}
	}
	if job.State == "FAILED" {
		return JobCheckDecision{Kind: RestartAfterFailure, State: restartingState}
	}
	return JobCheckDecision{Kind: ObserveState, State: job.State}
}

// ShouldResetOnRetryExhaustion reports whether a deploying/jobCreating
// handler that has failed retryCount consecutive times against maxRetry
// should give up and perform a full reset rather than retry again.
func ShouldResetOnRetryExhaustion(retryCount, maxRetry int) bool {
	return retryCount >= maxRetry
}

// NewStatus returns the zeroed BeamServiceStatus a create handler installs:
// every flag false, every pointer nil, stamped with now as both CreatedOn
// and UpdatedOn.
func NewStatus(now metav1.Time) beamservicev1.BeamServiceStatus {
	return beamservicev1.BeamServiceStatus{
		CreatedOn: &now,
		UpdatedOn: &now,
	}
}

// Reset returns the status a full reset (job FAILED, retry exhaustion,
// spec.reset change, or any other cancel-and-redeploy path) installs: every
// flag and pointer cleared except CreatedOn, which is preserved, and
// UpdatedOn, which is stamped with now.
func Reset(current beamservicev1.BeamServiceStatus, now metav1.Time) beamservicev1.BeamServiceStatus {
	return beamservicev1.BeamServiceStatus{
		CreatedOn: current.CreatedOn,
		UpdatedOn: &now,
	}
}
