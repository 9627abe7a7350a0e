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

// Package kafkacheck is an optional pre-flight admission check: before the
// DDL synthesizer builds a CREATE TABLE statement for a kafka-connector
// BeamSqlTable, verify the declared topic actually exists on its
// bootstrap servers. Opt-in via internal/config.Config.VerifyKafkaTopics;
// when disabled the CRD's declaration is trusted as-is.
package kafkacheck

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// Checker verifies Kafka topic existence.
type Checker interface {
	TopicExists(ctx context.Context, bootstrapServers, topic string) (bool, error)
}

// DialerChecker is the production Checker, backed by kafka-go's Dialer.
type DialerChecker struct {
	Dialer *kafka.Dialer
}

// NewDialerChecker returns a Checker using kafka-go's default Dialer.
func NewDialerChecker() *DialerChecker {
	return &DialerChecker{Dialer: kafka.DefaultDialer}
}

// TopicExists connects to the first reachable bootstrap server and reports
// whether topic has at least one partition. Any connection failure is
// classified as a retryable transient-upstream error, matching the rest
// of this operator's "can't tell yet, so retry" convention.
func (c *DialerChecker) TopicExists(ctx context.Context, bootstrapServers, topic string) (bool, error) {
	var conn *kafka.Conn
	var err error
	for _, addr := range strings.Split(bootstrapServers, ",") {
		conn, err = c.Dialer.DialContext(ctx, "tcp", strings.TrimSpace(addr))
		if err == nil {
			break
		}
	}
	if err != nil {
		return false, apperrors.Wrapf(err, apperrors.ErrorTypeTransientUpstream, "dialing kafka bootstrap servers %q", bootstrapServers)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(topic)
	if err != nil {
		return false, apperrors.Wrapf(err, apperrors.ErrorTypeTransientUpstream, "reading partitions for topic %q", topic)
	}
	return len(partitions) > 0, nil
}
