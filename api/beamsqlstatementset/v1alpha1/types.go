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

// Package v1alpha1 contains the BeamSqlStatementSet API: a SQL pipeline
// composed from declaratively described BeamSqlTable references, executed
// on Flink as a single "BEGIN STATEMENT SET; ... END;" job.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BeamSqlStatementSetSpec is the user-authored, desired state.
type BeamSqlStatementSetSpec struct {
	// Tables names BeamSqlTable resources, resolved in this resource's
	// namespace, in the order they should be DDL-synthesized.
	Tables []string `json:"tables,omitempty"`
	// SqlStatements are the INSERT INTO statements executed as one
	// statement set, in declared order.
	SqlStatements []string `json:"sqlstatements,omitempty"`
}

// BeamSqlStatementSetStatus is the controller-owned observed state.
type BeamSqlStatementSetStatus struct {
	// State is one of INITIALIZED, DEPLOYING, DEPLOYMENT_FAILURE, RUNNING,
	// FAILED, CANCELED, CANCELING, UNKNOWN.
	State string `json:"state,omitempty"`
	// JobID is the Flink job id returned by the SQL gateway.
	JobID *string `json:"job_id,omitempty"`

	// DeleteRetryCount tracks consecutive delete-handler failures, distinct
	// from the deploy-handler retry budget.
	DeleteRetryCount int `json:"deleteRetryCount,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// BeamSqlStatementSet is a SQL pipeline composed from declaratively
// described BeamSqlTable references.
type BeamSqlStatementSet struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BeamSqlStatementSetSpec   `json:"spec,omitempty"`
	Status BeamSqlStatementSetStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// BeamSqlStatementSetList is a list of BeamSqlStatementSet.
type BeamSqlStatementSetList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []BeamSqlStatementSet `json:"items"`
}
