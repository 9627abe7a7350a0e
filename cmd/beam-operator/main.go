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

// Command beam-operator runs the BeamService/BeamSqlStatementSet
// controller manager: it wires the Flink REST+SQL-gateway client, the
// table index, the optional Kafka pre-flight checker, and both
// reconcilers into a single controller-runtime manager process.
package main

import (
	"flag"
	"os"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	beamservicev1 "github.com/oisp-org/beam-operator/api/beamservice/v1"
	statementsetv1alpha1 "github.com/oisp-org/beam-operator/api/beamsqlstatementset/v1alpha1"
	tablev1alpha1 "github.com/oisp-org/beam-operator/api/beamsqltable/v1alpha1"
	"github.com/oisp-org/beam-operator/internal/artifact"
	"github.com/oisp-org/beam-operator/internal/config"
	"github.com/oisp-org/beam-operator/internal/flinkclient"
	"github.com/oisp-org/beam-operator/internal/kafkacheck"
	"github.com/oisp-org/beam-operator/internal/tableindex"
	beamservicecontroller "github.com/oisp-org/beam-operator/pkg/beamservice/controller"
	"github.com/oisp-org/beam-operator/pkg/metrics"
	statementsetcontroller "github.com/oisp-org/beam-operator/pkg/statementset/controller"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntimeMust(clientgoscheme.AddToScheme(scheme))
	utilruntimeMust(beamservicev1.AddToScheme(scheme))
	utilruntimeMust(statementsetv1alpha1.AddToScheme(scheme))
	utilruntimeMust(tablev1alpha1.AddToScheme(scheme))
}

func utilruntimeMust(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	var configFile string
	var metricsAddr string
	var jarDir string
	flag.StringVar(&configFile, "config", "", "path to an optional YAML configuration file")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "address the metrics endpoint binds to")
	flag.StringVar(&jarDir, "jar-dir", "/tmp/beam-operator-jars", "directory artifact downloads are written under")
	flag.Parse()

	zapLog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLog.Sync() //nolint:errcheck
	logger := zapr.NewLogger(zapLog)
	ctrl.SetLogger(logger)

	cfg, err := config.Load(configFile)
	if err != nil {
		logger.Error(err, "loading configuration")
		os.Exit(1)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
	})
	if err != nil {
		logger.Error(err, "creating manager")
		os.Exit(1)
	}

	m := metrics.NewMetrics("beam_operator")
	flink := flinkclient.NewHTTPClient(cfg.FlinkRestURL, cfg.FlinkSQLGatewayURL)
	fetcher := artifact.NewFetcher(jarDir)

	beamServiceReconciler := beamservicecontroller.NewReconciler(mgr.GetClient(), mgr.GetScheme(), flink, fetcher, cfg, m)
	if err := beamServiceReconciler.SetupWithManager(mgr); err != nil {
		logger.Error(err, "setting up BeamService controller")
		os.Exit(1)
	}

	tableIndex := tableindex.NewClientIndex(mgr.GetClient())
	var kafkaChecker kafkacheck.Checker
	if cfg.VerifyKafkaTopics {
		kafkaChecker = kafkacheck.NewDialerChecker()
	}
	statementSetReconciler := statementsetcontroller.NewReconciler(mgr.GetClient(), mgr.GetScheme(), flink, tableIndex, kafkaChecker, cfg, m)
	if err := statementSetReconciler.SetupWithManager(mgr); err != nil {
		logger.Error(err, "setting up BeamSqlStatementSet controller")
		os.Exit(1)
	}

	logger.Info("starting manager", "flinkRestUrl", cfg.FlinkRestURL, "flinkSqlGatewayUrl", cfg.FlinkSQLGatewayURL)
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		logger.Error(err, "manager exited with an error")
		os.Exit(1)
	}
}
