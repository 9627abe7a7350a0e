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

package v1alpha1

import "k8s.io/apimachinery/pkg/runtime"

// DeepCopyInto copies the receiver into out.
func (in *BeamSqlStatementSetSpec) DeepCopyInto(out *BeamSqlStatementSetSpec) {
	*out = *in
	if in.Tables != nil {
		out.Tables = make([]string, len(in.Tables))
		copy(out.Tables, in.Tables)
	}
	if in.SqlStatements != nil {
		out.SqlStatements = make([]string, len(in.SqlStatements))
		copy(out.SqlStatements, in.SqlStatements)
	}
}

// DeepCopyInto copies the receiver into out.
func (in *BeamSqlStatementSetStatus) DeepCopyInto(out *BeamSqlStatementSetStatus) {
	*out = *in
	if in.JobID != nil {
		v := *in.JobID
		out.JobID = &v
	}
}

// DeepCopyInto copies the receiver into out.
func (in *BeamSqlStatementSet) DeepCopyInto(out *BeamSqlStatementSet) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy creates a deep copy of BeamSqlStatementSet.
func (in *BeamSqlStatementSet) DeepCopy() *BeamSqlStatementSet {
	if in == nil {
		return nil
	}
	out := new(BeamSqlStatementSet)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *BeamSqlStatementSet) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver into out.
func (in *BeamSqlStatementSetList) DeepCopyInto(out *BeamSqlStatementSetList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]BeamSqlStatementSet, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of BeamSqlStatementSetList.
func (in *BeamSqlStatementSetList) DeepCopy() *BeamSqlStatementSetList {
	if in == nil {
		return nil
	}
	out := new(BeamSqlStatementSetList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *BeamSqlStatementSetList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
