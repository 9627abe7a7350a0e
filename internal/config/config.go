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

// Package config loads the operator's runtime configuration from an
// optional YAML file plus environment variables, the environment always
// taking precedence. Required values fail fast at startup rather than
// surfacing as a confusing error deep in the first reconcile.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// Config is the operator's fully resolved runtime configuration.
type Config struct {
	// Namespace is the operator's own namespace, used to derive default
	// Flink service URLs when they aren't set explicitly.
	Namespace string `yaml:"namespace"`

	// FlinkRestURL is the Flink job manager's REST API base URL.
	FlinkRestURL string `yaml:"flinkRestUrl"`
	// FlinkSQLGatewayURL is the Flink SQL gateway's base URL.
	FlinkSQLGatewayURL string `yaml:"flinkSqlGatewayUrl"`

	// MaxRetry bounds consecutive deploy/job-submission handler failures
	// per BeamService before a full reset.
	MaxRetry int `yaml:"maxRetry"`
	// DeleteMaxRetry bounds a BeamSqlStatementSet's delete-handler
	// retries, distinct from MaxRetry.
	DeleteMaxRetry int `yaml:"deleteMaxRetry"`

	// TimerInterval is the steady-state reconcile timer period.
	TimerInterval time.Duration `yaml:"timerInterval"`
	// TimerBackoffInterval is the delay after an ordinary retryable
	// failure before the next timer tick.
	TimerBackoffInterval time.Duration `yaml:"timerBackoffInterval"`
	// TimerBackoffTemporaryFailureInterval is the delay after a
	// transient upstream failure (e.g. a failed jar upload).
	TimerBackoffTemporaryFailureInterval time.Duration `yaml:"timerBackoffTemporaryFailureInterval"`

	// VerifyKafkaTopics enables the optional internal/kafkacheck
	// pre-flight admission check before DDL synthesis. Off by default.
	VerifyKafkaTopics bool `yaml:"verifyKafkaTopics"`
}

const (
	defaultMaxRetry                             = 20
	defaultDeleteMaxRetry                       = 10
	defaultTimerInterval                        = 5 * time.Second
	defaultTimerBackoffInterval                 = 5 * time.Second
	defaultTimerBackoffTemporaryFailureInterval = 10 * time.Second
)

// Load reads path (if non-empty) as YAML into a Config, applies defaults
// for anything unset, then overlays environment variables, and finally
// validates required fields. A missing optional path is not an error;
// Load(""), relying entirely on environment and defaults, is valid.
func Load(path string) (*Config, error) {
	cfg := &Config{
		MaxRetry:                             defaultMaxRetry,
		DeleteMaxRetry:                       defaultDeleteMaxRetry,
		TimerInterval:                        defaultTimerInterval,
		TimerBackoffInterval:                 defaultTimerBackoffInterval,
		TimerBackoffTemporaryFailureInterval: defaultTimerBackoffTemporaryFailureInterval,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "failed to parse config file %s", path)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("OISP_NAMESPACE"); v != "" {
		cfg.Namespace = v
	}
	if v := os.Getenv("OISP_FLINK_REST"); v != "" {
		cfg.FlinkRestURL = v
	}
	if v := os.Getenv("OISP_FLINK_SQL_GATEWAY"); v != "" {
		cfg.FlinkSQLGatewayURL = v
	}
	if v := os.Getenv("OISP_BEAMOPERATOR_RETRY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "OISP_BEAMOPERATOR_RETRY=%q is not an integer", v)
		}
		cfg.MaxRetry = n
	}
	if v := os.Getenv("TIMER_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "TIMER_INTERVAL=%q is not a duration", v)
		}
		cfg.TimerInterval = d
	}
	if v := os.Getenv("TIMER_BACKOFF_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "TIMER_BACKOFF_INTERVAL=%q is not a duration", v)
		}
		cfg.TimerBackoffInterval = d
	}
	if v := os.Getenv("TIMER_BACKOFF_TEMPORARY_FAILURE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "TIMER_BACKOFF_TEMPORARY_FAILURE_INTERVAL=%q is not a duration", v)
		}
		cfg.TimerBackoffTemporaryFailureInterval = d
	}
	if v := os.Getenv("VERIFY_KAFKA_TOPICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "VERIFY_KAFKA_TOPICS=%q is not a boolean", v)
		}
		cfg.VerifyKafkaTopics = b
	}
	return nil
}

// validate fails fast on missing required configuration and derives
// defaults that depend on Namespace.
func validate(cfg *Config) error {
	if cfg.Namespace == "" {
		return apperrors.NewValidationError("OISP_NAMESPACE is required")
	}
	if cfg.FlinkRestURL == "" {
		cfg.FlinkRestURL = fmt.Sprintf("http://flink-jobmanager-rest.%s:8081", cfg.Namespace)
	}
	if cfg.FlinkSQLGatewayURL == "" {
		cfg.FlinkSQLGatewayURL = fmt.Sprintf("http://flink-sql-gateway.%s:9000", cfg.Namespace)
	}
	if cfg.MaxRetry <= 0 {
		return apperrors.NewValidationError("maxRetry must be greater than 0")
	}
	if cfg.DeleteMaxRetry <= 0 {
		return apperrors.NewValidationError("deleteMaxRetry must be greater than 0")
	}
	return nil
}
