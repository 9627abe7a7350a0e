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

// Package ddl synthesizes a Flink SQL "CREATE TABLE" statement from a
// BeamSqlTable's declarative spec. Synthesize is a pure function: same
// input always produces the same DDL string, in the input's declared
// field/option order.
package ddl

import (
	"fmt"
	"strings"

	tablev1alpha1 "github.com/oisp-org/beam-operator/api/beamsqltable/v1alpha1"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

const reservedWatermarkKey = "watermark"

// Synthesize converts a BeamSqlTable spec into a
// "CREATE TABLE `name` (...) WITH (...);" statement, or returns a
// classified validation error.
func Synthesize(name string, spec *tablev1alpha1.BeamSqlTableSpec) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "CREATE TABLE `%s` (", name)
	for _, f := range spec.Fields {
		if f.Name == reservedWatermarkKey {
			fmt.Fprintf(&b, "%s %s,", f.Name, f.Definition)
		} else {
			fmt.Fprintf(&b, "`%s` %s,", f.Name, f.Definition)
		}
	}
	columns := strings.TrimSuffix(b.String(), ",")
	b.Reset()
	b.WriteString(columns)
	b.WriteString(") WITH (")

	if spec.Connector != "kafka" {
		return "", apperrors.NewValidationError("unsupported connector").
			WithDetailsf("table %q declares connector %q, only \"kafka\" is supported", name, spec.Connector)
	}
	b.WriteString("'connector' = 'kafka'")

	if spec.Format == "" {
		return "", apperrors.NewValidationError("missing format").
			WithDetailsf("table %q has no format description", name)
	}
	fmt.Fprintf(&b, ",'format' = '%s'", spec.Format)

	if len(spec.Kafka) == 0 {
		return "", apperrors.NewValidationError("missing kafka descriptor").
			WithDetailsf("table %q has no Kafka connector descriptor", name)
	}
	if spec.Kafka.Topic() == "" {
		return "", apperrors.NewValidationError("missing kafka topic").
			WithDetailsf("table %q has no kafka topic", name)
	}
	if spec.Kafka.BootstrapServers() == "" {
		return "", apperrors.NewValidationError("missing kafka bootstrap servers").
			WithDetailsf("table %q has no kafka bootstrap servers found", name)
	}

	// The kafka block is emitted in declared order; topic and
	// bootstrap.servers are validated above but hold their positions.
	for _, e := range spec.Kafka {
		if e.Key == "properties" {
			for _, p := range e.Properties {
				fmt.Fprintf(&b, ",'properties.%s' = '%s'", p.Key, p.Value)
			}
			continue
		}
		fmt.Fprintf(&b, ", '%s' = '%s'", e.Key, e.Value)
	}
	b.WriteString(");")

	return b.String(), nil
}
