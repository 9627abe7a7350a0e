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

// Package audit builds structured audit events for the state-changing
// phase transitions of a BeamService/BeamSqlStatementSet reconcile:
// artifact download, jar upload, job submission, and job-state handoffs.
// Events are plain data; Log writes one as a structured log line, and the
// reconcilers call it for every event they build.
package audit

import (
	"encoding/json"
	"time"

	"github.com/go-logr/logr"

	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// ServiceName identifies this operator as the actor on events it builds
// for its own actions, as opposed to events triggered by a human or
// another controller.
const ServiceName = "beam-operator"

// Event category/action vocabulary. Kept small and closed: new event
// kinds get their own Build method and constants, not free-form strings.
const (
	categoryArtifact  = "artifact"
	categoryDeploy    = "deploy"
	categoryJob       = "job"
	categoryLifecycle = "lifecycle"

	actionDownloadStarted = "download_started"
	actionUploadSucceeded = "upload_succeeded"
	actionUploadFailed    = "upload_failed"
	actionJobCreated      = "job_created"
	actionJobNotFound     = "job_not_found"
	actionTransitioned    = "transitioned"
	actionRetryExhausted  = "retry_exhausted"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Event is a single structured audit record. Fields mirror the ones a
// log aggregator or downstream audit sink would index on: who did what,
// to which resource, with what outcome, correlated across the handler
// calls that make up one reconcile.
type Event struct {
	EventType     string          `json:"eventType"`
	EventCategory string          `json:"eventCategory"`
	EventAction   string          `json:"eventAction"`
	EventOutcome  string          `json:"eventOutcome"`
	ActorType     string          `json:"actorType"`
	ActorID       string          `json:"actorId"`
	ResourceType  string          `json:"resourceType"`
	ResourceID    string          `json:"resourceId"`
	Namespace     *string         `json:"namespace,omitempty"`
	CorrelationID string          `json:"correlationId"`
	Timestamp     time.Time       `json:"timestamp"`
	EventData     json.RawMessage `json:"eventData,omitempty"`
	DurationMs    *int            `json:"durationMs,omitempty"`
	ErrorMessage  *string         `json:"errorMessage,omitempty"`
	Severity      *string         `json:"severity,omitempty"`
}

// Validate rejects an event missing the fields every sink needs to route
// and index it.
func (e *Event) Validate() error {
	switch {
	case e.EventType == "":
		return apperrors.NewValidationError("audit event missing eventType")
	case e.EventCategory == "":
		return apperrors.NewValidationError("audit event missing eventCategory")
	case e.EventAction == "":
		return apperrors.NewValidationError("audit event missing eventAction")
	case e.EventOutcome == "":
		return apperrors.NewValidationError("audit event missing eventOutcome")
	case e.ActorID == "":
		return apperrors.NewValidationError("audit event missing actorId")
	case e.ResourceID == "":
		return apperrors.NewValidationError("audit event missing resourceId")
	case e.CorrelationID == "":
		return apperrors.NewValidationError("audit event missing correlationId")
	}
	return nil
}

// Helpers builds Events on behalf of a single named actor, normally this
// operator itself.
type Helpers struct {
	serviceName string
}

// NewHelpers returns Helpers that stamp ActorID with serviceName whenever
// the event's actor is the operator rather than a human or another
// controller.
func NewHelpers(serviceName string) *Helpers {
	return &Helpers{serviceName: serviceName}
}

func (h *Helpers) newEvent(eventType, category, action, outcome, resourceType, correlationID, namespace, name string) *Event {
	ns := namespace
	return &Event{
		EventType:     eventType,
		EventCategory: category,
		EventAction:   action,
		EventOutcome:  outcome,
		ActorType:     "service",
		ActorID:       h.serviceName,
		ResourceType:  resourceType,
		ResourceID:    name,
		Namespace:     &ns,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// ArtifactDownloadStartedData is the EventData payload for
// BuildArtifactDownloadStartedEvent.
type ArtifactDownloadStartedData struct {
	PackageURL string `json:"packageUrl"`
}

// BuildArtifactDownloadStartedEvent records that a BeamService's package
// jar has started downloading.
func (h *Helpers) BuildArtifactDownloadStartedEvent(correlationID, namespace, name, packageURL string) (*Event, error) {
	event := h.newEvent("beamservice.artifact.download_started", categoryArtifact, actionDownloadStarted, outcomeSuccess, "BeamService", correlationID, namespace, name)
	data, err := json.Marshal(ArtifactDownloadStartedData{PackageURL: packageURL})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling artifact download event data")
	}
	event.EventData = data
	return event, nil
}

// ArtifactUploadData is the EventData payload for
// BuildArtifactUploadSucceededEvent. BuildArtifactUploadFailedEvent
// carries no EventData.
type ArtifactUploadData struct {
	JarPath string `json:"jarPath"`
}

// BuildArtifactUploadSucceededEvent records a successful jar upload to
// the Flink job manager.
func (h *Helpers) BuildArtifactUploadSucceededEvent(correlationID, namespace, name, jarID string) (*Event, error) {
	event := h.newEvent("beamservice.artifact.upload_succeeded", categoryArtifact, actionUploadSucceeded, outcomeSuccess, "BeamService", correlationID, namespace, name)
	data, err := json.Marshal(ArtifactUploadData{JarPath: jarID})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling artifact upload event data")
	}
	event.EventData = data
	return event, nil
}

// BuildArtifactUploadFailedEvent records a failed jar upload, carrying
// the classified error's message so the failure is self-describing
// without a correlated log lookup.
func (h *Helpers) BuildArtifactUploadFailedEvent(correlationID, namespace, name, reason string) (*Event, error) {
	event := h.newEvent("beamservice.artifact.upload_failed", categoryArtifact, actionUploadFailed, outcomeFailure, "BeamService", correlationID, namespace, name)
	event.ErrorMessage = &reason
	return event, nil
}

// JobCreatedData is the EventData payload for BuildJobCreatedEvent.
type JobCreatedData struct {
	JobID string `json:"jobId"`
}

// BuildJobCreatedEvent records that a Flink job was successfully
// submitted for a BeamService.
func (h *Helpers) BuildJobCreatedEvent(correlationID, namespace, name, jobID string) (*Event, error) {
	event := h.newEvent("beamservice.job.created", categoryDeploy, actionJobCreated, outcomeSuccess, "BeamService", correlationID, namespace, name)
	data, err := json.Marshal(JobCreatedData{JobID: jobID})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling job created event data")
	}
	event.EventData = data
	return event, nil
}

// BuildJobNotFoundEvent records that a BeamService's last-known job ID
// no longer exists in the Flink cluster, the trigger for a full
// redeploy.
func (h *Helpers) BuildJobNotFoundEvent(correlationID, namespace, name, jobID string) (*Event, error) {
	event := h.newEvent("beamservice.job.not_found", categoryJob, actionJobNotFound, outcomeFailure, "BeamService", correlationID, namespace, name)
	data, err := json.Marshal(JobCreatedData{JobID: jobID})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling job not found event data")
	}
	event.EventData = data
	return event, nil
}

// PhaseTransitionData is the EventData payload for
// BuildPhaseTransitionEvent.
type PhaseTransitionData struct {
	FromState string `json:"fromState"`
	ToState   string `json:"toState"`
}

// BuildPhaseTransitionEvent records a resource's state-machine
// transition, used by both the BeamService job-state handoff (e.g.
// FAILED to RESTARTING) and the BeamSqlStatementSet phase table.
func (h *Helpers) BuildPhaseTransitionEvent(correlationID, namespace, resourceType, name, fromState, toState string) (*Event, error) {
	event := h.newEvent(eventTypeForResource(resourceType)+".phase.transitioned", categoryLifecycle, actionTransitioned, outcomeSuccess, resourceType, correlationID, namespace, name)
	data, err := json.Marshal(PhaseTransitionData{FromState: fromState, ToState: toState})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling phase transition event data")
	}
	event.EventData = data
	return event, nil
}

// RetryExhaustionData is the EventData payload for
// BuildRetryExhaustionEvent.
type RetryExhaustionData struct {
	RetryCount int    `json:"retryCount"`
	MaxRetry   int    `json:"maxRetry"`
	LastError  string `json:"lastError"`
}

// BuildRetryExhaustionEvent records that a resource's consecutive
// handler failures hit its configured limit and the controller reset
// its status rather than continuing to retry indefinitely.
func (h *Helpers) BuildRetryExhaustionEvent(correlationID, namespace, resourceType, name string, retryCount, maxRetry int, lastError string) (*Event, error) {
	event := h.newEvent(eventTypeForResource(resourceType)+".retry.exhausted", categoryLifecycle, actionRetryExhausted, outcomeFailure, resourceType, correlationID, namespace, name)
	event.ErrorMessage = &lastError
	data, err := json.Marshal(RetryExhaustionData{RetryCount: retryCount, MaxRetry: maxRetry, LastError: lastError})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "marshaling retry exhaustion event data")
	}
	event.EventData = data
	return event, nil
}

// Log writes e as one structured log line, the operator's audit sink.
// Reconcilers call this with the event a Build method returned; on a
// build failure they drop the event rather than failing the reconcile
// over telemetry.
func Log(logger logr.Logger, e *Event) {
	kv := []any{
		"eventType", e.EventType,
		"eventCategory", e.EventCategory,
		"eventAction", e.EventAction,
		"eventOutcome", e.EventOutcome,
		"resourceType", e.ResourceType,
		"resourceId", e.ResourceID,
		"correlationId", e.CorrelationID,
	}
	if e.Namespace != nil {
		kv = append(kv, "namespace", *e.Namespace)
	}
	if len(e.EventData) > 0 {
		kv = append(kv, "eventData", string(e.EventData))
	}
	if e.ErrorMessage != nil {
		kv = append(kv, "error", *e.ErrorMessage)
	}
	logger.Info("audit event", kv...)
}

func eventTypeForResource(resourceType string) string {
	switch resourceType {
	case "BeamSqlStatementSet":
		return "statementset"
	default:
		return "beamservice"
	}
}
