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

package kafkacheck

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

func TestKafkaCheck(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Kafka Check Suite")
}

var _ = Describe("DialerChecker", func() {
	It("classifies an unreachable bootstrap server as retryable", func() {
		checker := &DialerChecker{Dialer: &kafka.Dialer{Timeout: 200 * time.Millisecond}}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		_, err := checker.TopicExists(ctx, "127.0.0.1:1", "orders")
		Expect(err).To(HaveOccurred())
		Expect(apperrors.IsRetryable(err)).To(BeTrue())
	})
})

var _ = Describe("NewDialerChecker", func() {
	It("builds a checker around kafka-go's default dialer", func() {
		checker := NewDialerChecker()
		Expect(checker.Dialer).To(Equal(kafka.DefaultDialer))
	})
})
