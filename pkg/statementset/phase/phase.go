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

// Package phase holds the BeamSqlStatementSet state enum and its
// transition table: which states are terminal, and which moves between
// states the reconciler is allowed to make. It holds no reconcile logic
// itself, only the invariants the reconciler's decisions must respect.
package phase

import "fmt"

// Phase is one of the states a BeamSqlStatementSet's status.state can hold.
type Phase string

const (
	Initialized       Phase = "INITIALIZED"
	Deploying         Phase = "DEPLOYING"
	DeploymentFailure Phase = "DEPLOYMENT_FAILURE"
	Running           Phase = "RUNNING"
	Failed            Phase = "FAILED"
	Canceled          Phase = "CANCELED"
	Canceling         Phase = "CANCELING"
	Unknown           Phase = "UNKNOWN"
)

// all is the complete, closed set of valid phases.
var all = map[Phase]bool{
	Initialized:       true,
	Deploying:         true,
	DeploymentFailure: true,
	Running:           true,
	Failed:            true,
	Canceled:          true,
	Canceling:         true,
	Unknown:           true,
}

// transitions enumerates every (from, to) move the reconciler's decision
// functions are allowed to produce. CANCELED has no outgoing entry: once a
// statement set's job is confirmed canceled, the resource is deleted, not
// further reconciled.
var transitions = map[Phase]map[Phase]bool{
	Initialized: {
		Deploying:         true,
		DeploymentFailure: true,
	},
	DeploymentFailure: {
		Deploying: true,
		Canceling: true,
	},
	Deploying: {
		Running:   true,
		Failed:    true,
		Canceled:  true,
		Unknown:   true,
		Canceling: true,
	},
	Running: {
		Failed:    true,
		Canceled:  true,
		Unknown:   true,
		Canceling: true,
	},
	Failed: {
		Running:   true,
		Canceled:  true,
		Unknown:   true,
		Canceling: true,
	},
	Unknown: {
		Running:   true,
		Failed:    true,
		Canceled:  true,
		Canceling: true,
	},
	Canceling: {
		Canceled: true,
	},
}

// IsTerminal reports whether p is an end state: once CANCELED, the
// resource's finalizer releases and Kubernetes deletes it. No other phase
// is terminal; even FAILED is still monitored, since the timer tick
// refreshes DEPLOYING/RUNNING/FAILED/UNKNOWN alike.
func IsTerminal(p Phase) bool {
	return p == Canceled
}

// CanTransition reports whether moving from to is one of the reconciler's
// documented state changes.
func CanTransition(from, to Phase) bool {
	if from == to {
		return false
	}
	return transitions[from][to]
}

// Validate rejects any Phase outside the closed enum.
func Validate(p Phase) error {
	if !all[p] {
		return fmt.Errorf("invalid phase %q", string(p))
	}
	return nil
}
