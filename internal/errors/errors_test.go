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

package errors_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

func TestErrors(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Errors Suite")
}

var _ = Describe("AppError", func() {
	Context("basic error creation", func() {
		It("should create an error with correct properties", func() {
			err := apperrors.New(apperrors.ErrorTypeValidation, "test message")

			Expect(err.Type).To(Equal(apperrors.ErrorTypeValidation))
			Expect(err.Message).To(Equal("test message"))
			Expect(err.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(err.Details).To(BeEmpty())
			Expect(err.Cause).To(BeNil())
		})

		It("should implement the error interface", func() {
			err := apperrors.New(apperrors.ErrorTypeValidation, "test message")
			Expect(err.Error()).To(Equal("validation: test message"))
		})

		It("should include details in the error string when present", func() {
			err := apperrors.New(apperrors.ErrorTypeValidation, "test message").WithDetails("extra info")
			Expect(err.Error()).To(Equal("validation: test message (extra info)"))
		})
	})

	Context("error wrapping", func() {
		It("should wrap an underlying error", func() {
			cause := errors.New("connection reset")
			wrapped := apperrors.Wrap(cause, apperrors.ErrorTypeTransientUpstream, "upload failed")

			Expect(wrapped.Type).To(Equal(apperrors.ErrorTypeTransientUpstream))
			Expect(wrapped.Cause).To(Equal(cause))
			Expect(wrapped.Unwrap()).To(Equal(cause))
		})

		It("should format wrapped errors with arguments", func() {
			cause := errors.New("EOF")
			wrapped := apperrors.Wrapf(cause, apperrors.ErrorTypeNetwork, "GET %s failed", "/jobs/123")
			Expect(wrapped.Message).To(Equal("GET /jobs/123 failed"))
		})
	})

	Describe("HTTP status code mapping", func() {
		It("should map every error type to its expected status code", func() {
			cases := []struct {
				errType apperrors.ErrorType
				status  int
			}{
				{apperrors.ErrorTypeValidation, http.StatusBadRequest},
				{apperrors.ErrorTypeAuth, http.StatusUnauthorized},
				{apperrors.ErrorTypeNotFound, http.StatusNotFound},
				{apperrors.ErrorTypeConflict, http.StatusConflict},
				{apperrors.ErrorTypeTimeout, http.StatusRequestTimeout},
				{apperrors.ErrorTypeRateLimit, http.StatusTooManyRequests},
				{apperrors.ErrorTypeNetwork, http.StatusInternalServerError},
				{apperrors.ErrorTypeTransientUpstream, http.StatusInternalServerError},
				{apperrors.ErrorTypeRetryExhaustion, http.StatusInternalServerError},
				{apperrors.ErrorTypeInternal, http.StatusInternalServerError},
			}

			for _, c := range cases {
				Expect(apperrors.New(c.errType, "x").StatusCode).To(Equal(c.status))
			}
		})
	})

	Describe("IsRetryable", func() {
		It("treats network, transient-upstream, timeout, rate-limit and not-found as retryable", func() {
			Expect(apperrors.IsRetryable(apperrors.New(apperrors.ErrorTypeNetwork, "x"))).To(BeTrue())
			Expect(apperrors.IsRetryable(apperrors.New(apperrors.ErrorTypeTransientUpstream, "x"))).To(BeTrue())
			Expect(apperrors.IsRetryable(apperrors.New(apperrors.ErrorTypeTimeout, "x"))).To(BeTrue())
			Expect(apperrors.IsRetryable(apperrors.New(apperrors.ErrorTypeRateLimit, "x"))).To(BeTrue())
			Expect(apperrors.IsRetryable(apperrors.New(apperrors.ErrorTypeNotFound, "x"))).To(BeTrue())
		})

		It("treats validation and retry-exhaustion as non-retryable", func() {
			Expect(apperrors.IsRetryable(apperrors.New(apperrors.ErrorTypeValidation, "x"))).To(BeFalse())
			Expect(apperrors.IsRetryable(apperrors.New(apperrors.ErrorTypeRetryExhaustion, "x"))).To(BeFalse())
		})

		It("returns false for a plain error", func() {
			Expect(apperrors.IsRetryable(errors.New("plain"))).To(BeFalse())
		})
	})

	Describe("predefined constructors", func() {
		It("builds a not-found error with the expected message", func() {
			err := apperrors.NewNotFoundError("beamsqltable default/orders")
			Expect(err.Type).To(Equal(apperrors.ErrorTypeNotFound))
			Expect(err.Message).To(Equal("beamsqltable default/orders not found"))
		})

		It("builds a retry-exhaustion error naming the handler and attempt count", func() {
			err := apperrors.NewRetryExhaustionError("deploying", 21)
			Expect(err.Type).To(Equal(apperrors.ErrorTypeRetryExhaustion))
			Expect(err.Message).To(ContainSubstring("deploying"))
			Expect(err.Message).To(ContainSubstring("21"))
		})
	})

	Describe("Outcome constructors", func() {
		It("Ok carries no requeue and no error", func() {
			o := apperrors.Ok()
			Expect(o.Requeue).To(BeFalse())
			Expect(o.Err).To(BeNil())
		})

		It("RequeueAfter sets Requeue and the delay without an error", func() {
			o := apperrors.RequeueAfter(5 * time.Second)
			Expect(o.Requeue).To(BeTrue())
			Expect(o.RequeueAfter).To(Equal(5 * time.Second))
			Expect(o.Err).To(BeNil())
		})

		It("Fail requeues a retryable error after the given delay", func() {
			o := apperrors.Fail(apperrors.New(apperrors.ErrorTypeTransientUpstream, "upstream down"), 10*time.Second)
			Expect(o.Requeue).To(BeTrue())
			Expect(o.RequeueAfter).To(Equal(10 * time.Second))
			Expect(o.Err).To(HaveOccurred())
		})

		It("Fail does not requeue a non-retryable validation error", func() {
			o := apperrors.Fail(apperrors.New(apperrors.ErrorTypeValidation, "bad connector"), 10*time.Second)
			Expect(o.Requeue).To(BeFalse())
			Expect(o.Err).To(HaveOccurred())
		})
	})
})
