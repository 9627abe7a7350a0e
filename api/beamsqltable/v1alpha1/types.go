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

// Package v1alpha1 contains the BeamSqlTable API, a declarative description
// of a Kafka-backed SQL table referenced by BeamSqlStatementSets.
package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Field is a single entry of an ordered column list. The reserved name
// "watermark" carries a WATERMARK clause body instead of a column type.
//
// Fields is modeled as an ordered slice, not a map, because the DDL
// synthesizer's output is order-sensitive and Go map iteration order is
// randomized per process.
type Field struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// KeyValue is an ordered key/value pair, used wherever Kafka connector
// options must be emitted in their declared order.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KafkaEntry is one entry of the kafka connector block: a scalar option
// (Value set), or the reserved key "properties" nesting the ordered
// properties sub-mapping (Properties set).
type KafkaEntry struct {
	Key        string     `json:"key"`
	Value      string     `json:"value,omitempty"`
	Properties []KeyValue `json:"properties,omitempty"`
}

// KafkaSpec is the kafka connector block of a BeamSqlTable, every option
// in declared order. The DDL synthesizer requires a "topic" entry and a
// "bootstrap.servers" key under "properties", but emits both at their
// declared positions rather than hoisting them to the front.
type KafkaSpec []KafkaEntry

// Topic returns the "topic" entry's value, empty when undeclared.
func (k KafkaSpec) Topic() string {
	for _, e := range k {
		if e.Key == "topic" {
			return e.Value
		}
	}
	return ""
}

// BootstrapServers returns the "bootstrap.servers" value of the
// "properties" sub-mapping, empty when undeclared.
func (k KafkaSpec) BootstrapServers() string {
	for _, e := range k {
		if e.Key != "properties" {
			continue
		}
		for _, p := range e.Properties {
			if p.Key == "bootstrap.servers" {
				return p.Value
			}
		}
	}
	return ""
}

// BeamSqlTableSpec is the declarative shape of a Kafka-backed SQL table.
type BeamSqlTableSpec struct {
	// Connector must equal "kafka"; any other value is a validation error
	// at DDL-synthesis time.
	Connector string `json:"connector"`
	// Format is the Flink SQL format (e.g. "json", "avro"). Required.
	Format string `json:"format"`
	// Fields is the ordered column list.
	Fields []Field `json:"fields"`
	// Kafka is the connector-specific configuration block, in declared
	// order.
	Kafka KafkaSpec `json:"kafka,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// BeamSqlTable is referenced, never reconciled directly: it exists to be
// resolved by a BeamSqlStatementSet's table index and compiled into a
// CREATE TABLE statement.
type BeamSqlTable struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec BeamSqlTableSpec `json:"spec,omitempty"`
}

// +kubebuilder:object:root=true

// BeamSqlTableList is a list of BeamSqlTable.
type BeamSqlTableList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []BeamSqlTable `json:"items"`
}
