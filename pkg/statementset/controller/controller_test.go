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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	statementsetv1alpha1 "github.com/oisp-org/beam-operator/api/beamsqlstatementset/v1alpha1"
	"github.com/oisp-org/beam-operator/internal/config"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
	"github.com/oisp-org/beam-operator/internal/flinkclient"
	"github.com/oisp-org/beam-operator/internal/kafkacheck"
	"github.com/oisp-org/beam-operator/internal/tableindex"
	"github.com/oisp-org/beam-operator/pkg/metrics"
	"github.com/oisp-org/beam-operator/pkg/statementset/controller"
)

// counterValue reads back a single Prometheus counter's current value
// without scraping an HTTP endpoint.
func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	Expect(c.Write(m)).To(Succeed())
	return m.GetCounter().GetValue()
}

func testConfig() *config.Config {
	return &config.Config{
		Namespace:                            "default",
		MaxRetry:                             20,
		DeleteMaxRetry:                       3,
		TimerInterval:                        5 * time.Second,
		TimerBackoffInterval:                 5 * time.Second,
		TimerBackoffTemporaryFailureInterval: 10 * time.Second,
	}
}

func newReconciler(c client.Client, flink flinkclient.Client, idx tableindex.Index, checker kafkacheck.Checker) *controller.Reconciler {
	m := metrics.NewMetricsWithRegistry("statementset_test", prometheus.NewRegistry())
	return controller.NewReconciler(c, testScheme, flink, idx, checker, testConfig(), m)
}

var _ = Describe("Reconciler", func() {
	var (
		set   *statementsetv1alpha1.BeamSqlStatementSet
		flink *fakeFlinkClient
		idx   *fakeTableIndex
		c     client.Client
		r     *controller.Reconciler
	)

	BeforeEach(func() {
		set = newTestStatementSet("pipeline-1", "default")
		flink = &fakeFlinkClient{}
		idx = newFakeTableIndex()
		idx.put("default", "orders", newTestTable("orders", "default"))
		c = newFakeClient(set)
		r = newReconciler(c, flink, idx, nil)
	})

	Describe("handleCreate", func() {
		It("sets state INITIALIZED with a nil job id", func() {
			outcome := r.HandleCreateForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(set.Status.State).To(Equal("INITIALIZED"))
			Expect(set.Status.JobID).To(BeNil())
		})
	})

	Describe("Reconcile", func() {
		It("records a requeue counter once the finalizer is in place and handleCreate schedules the next tick", func() {
			req := ctrl.Request{NamespacedName: client.ObjectKeyFromObject(set)}

			// First pass only adds the finalizer and requeues immediately,
			// before finish() (and its metrics) ever runs.
			_, err := r.Reconcile(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			before := counterValue(r.Metrics.ReconcileTotal.WithLabelValues(metrics.KindBeamSqlStatementSet, metrics.ResultRequeue))

			_, err = r.Reconcile(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			after := counterValue(r.Metrics.ReconcileTotal.WithLabelValues(metrics.KindBeamSqlStatementSet, metrics.ResultRequeue))
			Expect(after).To(Equal(before + 1))
		})
	})

	Describe("handleDeploy", func() {
		It("composes the pipeline-name prolog, table DDL, and statement set, then submits it", func() {
			set.Status.State = "INITIALIZED"
			flink.submitJobID = "job-1"

			outcome := r.HandleDeployForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(set.Status.State).To(Equal("DEPLOYING"))
			Expect(set.Status.JobID).To(HaveValue(Equal("job-1")))

			Expect(flink.submittedSQL).To(HaveLen(1))
			submitted := flink.submittedSQL[0]
			Expect(submitted).To(ContainSubstring("SET pipeline.name = 'default/pipeline-1';"))
			Expect(submitted).To(ContainSubstring("CREATE TABLE `orders`"))
			Expect(submitted).To(ContainSubstring("BEGIN STATEMENT SET;"))
			Expect(submitted).To(ContainSubstring("INSERT INTO sink SELECT * FROM orders"))
			Expect(submitted).To(HaveSuffix("END;"))
		})

		It("raises a retryable outcome without mutating state when a referenced table is missing", func() {
			set.Spec.Tables = []string{"missing-table"}
			set.Status.State = "INITIALIZED"

			outcome := r.HandleDeployForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(set.Status.State).To(Equal("INITIALIZED"))
			Expect(flink.submittedSQL).To(BeEmpty())
		})

		It("raises a retryable outcome without mutating state when DDL synthesis fails", func() {
			badTable := newTestTable("orders", "default")
			badTable.Spec.Kafka = badTable.Spec.Kafka[1:] // drop the topic entry
			idx.put("default", "orders", badTable)
			set.Status.State = "INITIALIZED"

			outcome := r.HandleDeployForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(set.Status.State).To(Equal("INITIALIZED"))
		})

		It("sets DEPLOYMENT_FAILURE and clears job id when submission fails", func() {
			set.Status.State = "INITIALIZED"
			flink.submitErr = apperrors.New(apperrors.ErrorTypeTransientUpstream, "sql gateway unreachable")

			outcome := r.HandleDeployForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(set.Status.State).To(Equal("DEPLOYMENT_FAILURE"))
			Expect(set.Status.JobID).To(BeNil())
		})

		It("runs the optional kafka topic pre-flight check when enabled", func() {
			cfg := testConfig()
			cfg.VerifyKafkaTopics = true
			m := metrics.NewMetricsWithRegistry("statementset_kafka_test", prometheus.NewRegistry())
			checker := &fakeKafkaChecker{exists: false}
			rWithCheck := controller.NewReconciler(c, testScheme, flink, idx, checker, cfg, m)

			set.Status.State = "INITIALIZED"
			outcome := rWithCheck.HandleDeployForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(flink.submittedSQL).To(BeEmpty())
		})
	})

	Describe("handleTimerTick", func() {
		It("does not re-monitor a CANCELED statement set", func() {
			set.Status.State = "CANCELED"
			outcome := r.HandleTimerTickForTest(ctx, set)
			Expect(outcome).To(Equal(apperrors.Ok()))
		})

		It("does not re-monitor a CANCELING statement set", func() {
			set.Status.State = "CANCELING"
			outcome := r.HandleTimerTickForTest(ctx, set)
			Expect(outcome).To(Equal(apperrors.Ok()))
		})

		It("refreshes DEPLOYING via getJob", func() {
			set.Status.State = "DEPLOYING"
			jobID := "job-1"
			set.Status.JobID = &jobID
			flink.jobStatus = &flinkclient.JobStatus{State: "RUNNING"}

			outcome := r.HandleTimerTickForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(set.Status.State).To(Equal("RUNNING"))
		})
	})

	Describe("handleCheckJob", func() {
		It("normalizes a Flink-reported state outside the phase enum to UNKNOWN", func() {
			set.Status.State = "DEPLOYING"
			jobID := "job-1"
			set.Status.JobID = &jobID
			flink.jobStatus = &flinkclient.JobStatus{State: "FINISHED"}

			outcome := r.HandleCheckJobForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(set.Status.State).To(Equal("UNKNOWN"))
		})

		It("sets UNKNOWN and raises retryable on a get-job failure", func() {
			set.Status.State = "RUNNING"
			jobID := "job-1"
			set.Status.JobID = &jobID
			flink.getJobErr = apperrors.New(apperrors.ErrorTypeNetwork, "connection refused")

			outcome := r.HandleCheckJobForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(set.Status.State).To(Equal("UNKNOWN"))
		})
	})

	Describe("handleDelete", func() {
		It("cancels the job and moves to CANCELING on the first delete attempt", func() {
			set.Status.State = "RUNNING"
			jobID := "job-1"
			set.Status.JobID = &jobID

			outcome := r.HandleDeleteForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(outcome.RequeueAfter).To(Equal(5 * time.Second))
			Expect(set.Status.State).To(Equal("CANCELING"))
			Expect(flink.canceledJobs).To(ContainElement("job-1"))
		})

		It("retries with a 10s delay without changing state when cancel fails", func() {
			set.Status.State = "RUNNING"
			jobID := "job-1"
			set.Status.JobID = &jobID
			flink.cancelErr = apperrors.New(apperrors.ErrorTypeTransientUpstream, "job manager unreachable")

			outcome := r.HandleDeleteForTest(ctx, set)
			Expect(outcome.Err).To(HaveOccurred())
			Expect(apperrors.IsRetryable(outcome.Err)).To(BeTrue())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(outcome.RequeueAfter).To(Equal(10 * time.Second))
			Expect(set.Status.State).To(Equal("RUNNING"))
			Expect(set.Status.DeleteRetryCount).To(Equal(1))
		})

		It("permits deletion once the job is confirmed canceled", func() {
			set.Status.State = "CANCELING"
			jobID := "job-1"
			set.Status.JobID = &jobID
			flink.jobStatus = &flinkclient.JobStatus{State: "CANCELED"}

			outcome := r.HandleDeleteForTest(ctx, set)
			Expect(outcome).To(Equal(apperrors.Ok()))
		})

		It("keeps waiting while CANCELING and not yet confirmed", func() {
			set.Status.State = "CANCELING"
			jobID := "job-1"
			set.Status.JobID = &jobID
			flink.jobStatus = &flinkclient.JobStatus{State: "CANCELING"}

			outcome := r.HandleDeleteForTest(ctx, set)
			Expect(outcome.Err).To(BeNil())
			Expect(outcome.Requeue).To(BeTrue())
			Expect(outcome.RequeueAfter).To(Equal(5 * time.Second))
		})

		It("gives up with a permanent error once DeleteMaxRetry is exhausted", func() {
			set.Status.State = "RUNNING"
			jobID := "job-1"
			set.Status.JobID = &jobID
			set.Status.DeleteRetryCount = testConfig().DeleteMaxRetry - 1
			flink.cancelErr = apperrors.New(apperrors.ErrorTypeTransientUpstream, "job manager unreachable")

			outcome := r.HandleDeleteForTest(ctx, set)
			Expect(outcome.Err).To(HaveOccurred())
			Expect(outcome.Requeue).To(BeFalse())
			Expect(apperrors.IsType(outcome.Err, apperrors.ErrorTypeRetryExhaustion)).To(BeTrue())
		})
	})
})
