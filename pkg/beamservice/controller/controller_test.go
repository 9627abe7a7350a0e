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

package controller_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prometheus/client_golang/prometheus"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	beamservicev1 "github.com/oisp-org/beam-operator/api/beamservice/v1"
	"github.com/oisp-org/beam-operator/internal/artifact"
	"github.com/oisp-org/beam-operator/internal/config"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
	"github.com/oisp-org/beam-operator/internal/flinkclient"
	"github.com/oisp-org/beam-operator/pkg/beamservice/controller"
	"github.com/oisp-org/beam-operator/pkg/metrics"
)

func testConfig() *config.Config {
	return &config.Config{
		Namespace:                            "default",
		MaxRetry:                             3,
		DeleteMaxRetry:                       10,
		TimerInterval:                        5 * time.Second,
		TimerBackoffInterval:                 5 * time.Second,
		TimerBackoffTemporaryFailureInterval: 10 * time.Second,
	}
}

func newReconciler(c client.Client, flink flinkclient.Client, dir string) *controller.Reconciler {
	m := metrics.NewMetricsWithRegistry("beam_operator_test", prometheus.NewRegistry())
	return controller.NewReconciler(c, testScheme, flink, artifact.NewFetcher(dir), testConfig(), m)
}

var _ = Describe("Reconciler", func() {
	var (
		svc   *beamservicev1.BeamService
		flink *fakeFlinkClient
		c     client.Client
		r     *controller.Reconciler
	)

	BeforeEach(func() {
		svc = newTestBeamService("job-1", "default")
		flink = &fakeFlinkClient{}
		c = newFakeClient(svc)
		r = newReconciler(c, flink, GinkgoT().TempDir())
	})

	Describe("handleCreate", func() {
		It("zeroes the status and stamps CreatedOn/UpdatedOn", func() {
			outcome := r.HandleCreateForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.CreatedOn).NotTo(BeNil())
			Expect(svc.Status.UpdatedOn).NotTo(BeNil())
			Expect(svc.Status.Deployed).To(BeFalse())
		})
	})

	Describe("handleTimerTick", func() {
		It("dispatches a fatal outcome when status was never initialized", func() {
			outcome := r.HandleTimerTickForTest(ctx, svc)
			Expect(outcome.Err).To(HaveOccurred())
			Expect(apperrors.IsRetryable(outcome.Err)).To(BeFalse())
		})

		It("starts deploying when neither deployed nor deploying is set", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("fake-jar-bytes"))
			}))
			defer server.Close()
			svc.Spec.Package.URL = server.URL
			// Status writes refresh svc from the stored object, so the spec
			// change is stored first; Update keeps the stored status.
			Expect(c.Update(ctx, svc)).To(Succeed())

			now := metav1.Now()
			svc.Status.CreatedOn = &now

			flink.uploadJarID = "jar-123"

			outcome := r.HandleTimerTickForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.Deployed).To(BeTrue())
			Expect(svc.Status.Deploying).To(BeFalse())
			Expect(svc.Status.JarID).To(HaveValue(Equal("jar-123")))
		})

		It("self-heals when deployed and deploying are both set", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deployed = true
			svc.Status.Deploying = true

			outcome := r.HandleTimerTickForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.Deploying).To(BeFalse())
		})

		It("starts job creation once deployed", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deployed = true
			jarID := "jar-123"
			svc.Status.JarID = &jarID

			flink.freeSlots = 1
			flink.runJobID = "job-xyz"

			outcome := r.HandleTimerTickForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.JobCreated).To(BeTrue())
			Expect(svc.Status.JobID).To(HaveValue(Equal("job-xyz")))
		})

		It("checks the job once deployed and job created", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deployed = true
			svc.Status.JobCreated = true
			jobID := "job-xyz"
			svc.Status.JobID = &jobID

			flink.jobStatus = &flinkclient.JobStatus{State: "RUNNING"}

			outcome := r.HandleTimerTickForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.State).To(HaveValue(Equal("RUNNING")))
		})
	})

	Describe("handleDeploy", func() {
		It("surfaces an unrecognized package URL scheme as an immediate permanent failure", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deploying = true
			svc.Spec.Package.URL = "not-a-valid-scheme://host/jar"

			outcome := r.HandleDeployForTest(ctx, svc)
			Expect(outcome.Err).To(HaveOccurred())
			Expect(outcome.Requeue).To(BeFalse())
			Expect(svc.Status.RetryCount).To(Equal(0))
		})

		It("retries without resetting before the retry budget is exhausted", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deploying = true

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()
			svc.Spec.Package.URL = server.URL

			outcome := r.HandleDeployForTest(ctx, svc)
			Expect(outcome.Err).To(HaveOccurred())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(svc.Status.RetryCount).To(Equal(1))
			Expect(svc.Status.Deployed).To(BeFalse())
		})

		It("resets status once the configured retry budget is exhausted", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deploying = true
			svc.Status.RetryCount = testConfig().MaxRetry - 1

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()
			svc.Spec.Package.URL = server.URL

			outcome := r.HandleDeployForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.RetryCount).To(Equal(0))
			Expect(svc.Status.Deploying).To(BeFalse())
			// Stored timestamps keep whole seconds only.
			Expect(svc.Status.CreatedOn.Rfc3339Copy()).To(Equal(now.Rfc3339Copy()))
		})
	})

	Describe("handleJobCreating", func() {
		It("requeues without error when there are no free slots", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deployed = true
			jarID := "jar-1"
			svc.Status.JarID = &jarID
			flink.freeSlots = 0

			outcome := r.HandleJobCreatingForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(svc.Status.JobCreated).To(BeFalse())
		})
	})

	Describe("handleCheckJob", func() {
		BeforeEach(func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deployed = true
			svc.Status.JobCreated = true
			jobID := "job-xyz"
			svc.Status.JobID = &jobID
		})

		It("triggers a redeploy when the job manager reports the job gone", func() {
			flink.jobStatus = &flinkclient.JobStatus{NotFound: true}

			outcome := r.HandleCheckJobForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.Deployed).To(BeFalse())
			Expect(svc.Status.JobCreated).To(BeFalse())
		})

		It("resets to RESTARTING when the job manager reports FAILED", func() {
			flink.jobStatus = &flinkclient.JobStatus{State: "FAILED"}

			outcome := r.HandleCheckJobForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.Deployed).To(BeFalse())
			Expect(svc.Status.JobCreated).To(BeFalse())
			Expect(svc.Status.State).To(HaveValue(Equal("RESTARTING")))
			Expect(flink.canceledJobs).To(ContainElement("job-xyz"))
		})

		It("leaves status untouched on a network error", func() {
			flink.getJobErr = apperrors.New(apperrors.ErrorTypeNetwork, "connection refused")

			outcome := r.HandleCheckJobForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(svc.Status.Deployed).To(BeTrue())
			Expect(svc.Status.JobCreated).To(BeTrue())
		})
	})

	Describe("handleDelete", func() {
		It("cancels the job when a jobId is recorded", func() {
			jobID := "job-xyz"
			svc.Status.JobID = &jobID

			outcome := r.HandleDeleteForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(flink.canceledJobs).To(ContainElement("job-xyz"))
		})
	})

	Describe("handleReset", func() {
		It("cancels the job, clears status, and records the observed reset value", func() {
			now := metav1.Now()
			svc.Status.CreatedOn = &now
			svc.Status.Deployed = true
			jobID := "job-xyz"
			svc.Status.JobID = &jobID
			svc.Spec.Reset = nil

			outcome := r.HandleResetForTest(ctx, svc)
			Expect(outcome.Err).To(BeNil())
			Expect(svc.Status.Deployed).To(BeFalse())
			// Stored timestamps keep whole seconds only.
			Expect(svc.Status.CreatedOn.Rfc3339Copy()).To(Equal(now.Rfc3339Copy()))
			Expect(flink.canceledJobs).To(ContainElement("job-xyz"))
		})
	})

	Describe("ResetTriggeredForTest", func() {
		It("is false when spec.reset and the last observed value both stay nil", func() {
			Expect(controller.ResetTriggeredForTest(svc)).To(BeFalse())
		})
	})
})
