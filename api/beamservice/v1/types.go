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

// Package v1 contains the BeamService API: a packaged stream-processing job
// delivered as an uploadable artifact, reconciled into a running Flink job.
package v1

import (
	"encoding/json"
	"fmt"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// PackageSpec describes where to fetch the uploadable artifact from.
type PackageSpec struct {
	// URL is http(s):// or ftp://.
	URL string `json:"url"`
	// Username and Password are FTP basic credentials, used only when URL
	// has the ftp:// scheme.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ArgTemplate renders a program argument by substituting tokens into Format
// and, optionally, encoding the result (e.g. "base64").
type ArgTemplate struct {
	Format string  `json:"format"`
	Encode *string `json:"encode,omitempty"`
}

// ArgValue is either a literal string or an ArgTemplate record.
type ArgValue struct {
	Literal  *string
	Template *ArgTemplate
}

// UnmarshalJSON decodes a bare JSON string as a literal, and a JSON object
// as a template record.
func (a *ArgValue) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		a.Literal = &literal
		a.Template = nil
		return nil
	}
	var tmpl ArgTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return fmt.Errorf("arg value must be a string or a {format,encode} record: %w", err)
	}
	if tmpl.Format == "" {
		return fmt.Errorf("arg template is missing mandatory 'format' field")
	}
	a.Template = &tmpl
	a.Literal = nil
	return nil
}

// MarshalJSON encodes the value back to whichever shape was decoded.
func (a ArgValue) MarshalJSON() ([]byte, error) {
	if a.Template != nil {
		return json.Marshal(a.Template)
	}
	if a.Literal != nil {
		return json.Marshal(*a.Literal)
	}
	return json.Marshal("")
}

// DeepCopyInto copies the receiver into out.
func (in *ArgValue) DeepCopyInto(out *ArgValue) {
	if in.Literal != nil {
		v := *in.Literal
		out.Literal = &v
	} else {
		out.Literal = nil
	}
	if in.Template != nil {
		t := *in.Template
		if in.Template.Encode != nil {
			e := *in.Template.Encode
			t.Encode = &e
		}
		out.Template = &t
	} else {
		out.Template = nil
	}
}

// BeamServiceSpec is the user-authored, desired state of a BeamService.
type BeamServiceSpec struct {
	Package    PackageSpec         `json:"package"`
	EntryClass string              `json:"entryClass"`
	Args       map[string]ArgValue `json:"args,omitempty"`
	Tokens     []string            `json:"tokens,omitempty"`
	// Reset is an arbitrary-shaped trigger field: any change to its value
	// (including its presence/absence) drives a full cancel-and-redeploy.
	Reset *apiextensionsv1.JSON `json:"reset,omitempty"`
}

// BeamServiceStatus is the controller-owned observed state of a BeamService.
type BeamServiceStatus struct {
	Deployed    bool `json:"deployed"`
	Deploying   bool `json:"deploying"`
	JobCreated  bool `json:"jobCreated"`
	JobCreating bool `json:"jobCreating"`

	JarPath *string `json:"jarPath,omitempty"`
	JarID   *string `json:"jarId,omitempty"`
	JobID   *string `json:"jobId,omitempty"`
	State   *string `json:"state,omitempty"`

	CreatedOn *metav1.Time `json:"createdOn,omitempty"`
	UpdatedOn *metav1.Time `json:"updatedOn,omitempty"`

	// LastResetObserved caches the last spec.reset value the controller
	// has already reacted to, so repeated reconciles of an unchanged
	// spec.reset don't loop the cancel-and-redeploy path forever.
	LastResetObserved *apiextensionsv1.JSON `json:"lastResetObserved,omitempty"`

	// RetryCount tracks consecutive failures of the current deploying/
	// jobCreating handler, reset to zero on success or on a full reset.
	RetryCount int `json:"retryCount,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// BeamService is a packaged stream-processing job delivered as an
// uploadable artifact, reconciled into a running Flink job.
type BeamService struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   BeamServiceSpec   `json:"spec,omitempty"`
	Status BeamServiceStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// BeamServiceList is a list of BeamService.
type BeamServiceList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []BeamService `json:"items"`
}
