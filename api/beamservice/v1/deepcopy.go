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

package v1

import "k8s.io/apimachinery/pkg/runtime"

// DeepCopyInto copies the receiver into out.
func (in *PackageSpec) DeepCopyInto(out *PackageSpec) {
	*out = *in
}

// DeepCopyInto copies the receiver into out.
func (in *BeamServiceSpec) DeepCopyInto(out *BeamServiceSpec) {
	*out = *in
	in.Package.DeepCopyInto(&out.Package)
	if in.Args != nil {
		out.Args = make(map[string]ArgValue, len(in.Args))
		for k, v := range in.Args {
			var copied ArgValue
			v.DeepCopyInto(&copied)
			out.Args[k] = copied
		}
	}
	if in.Tokens != nil {
		out.Tokens = make([]string, len(in.Tokens))
		copy(out.Tokens, in.Tokens)
	}
	if in.Reset != nil {
		out.Reset = in.Reset.DeepCopy()
	}
}

// DeepCopyInto copies the receiver into out.
func (in *BeamServiceStatus) DeepCopyInto(out *BeamServiceStatus) {
	*out = *in
	if in.JarPath != nil {
		v := *in.JarPath
		out.JarPath = &v
	}
	if in.JarID != nil {
		v := *in.JarID
		out.JarID = &v
	}
	if in.JobID != nil {
		v := *in.JobID
		out.JobID = &v
	}
	if in.State != nil {
		v := *in.State
		out.State = &v
	}
	if in.CreatedOn != nil {
		out.CreatedOn = in.CreatedOn.DeepCopy()
	}
	if in.UpdatedOn != nil {
		out.UpdatedOn = in.UpdatedOn.DeepCopy()
	}
	if in.LastResetObserved != nil {
		out.LastResetObserved = in.LastResetObserved.DeepCopy()
	}
}

// DeepCopyInto copies the receiver into out.
func (in *BeamService) DeepCopyInto(out *BeamService) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy creates a deep copy of BeamService.
func (in *BeamService) DeepCopy() *BeamService {
	if in == nil {
		return nil
	}
	out := new(BeamService)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *BeamService) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver into out.
func (in *BeamServiceList) DeepCopyInto(out *BeamServiceList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]BeamService, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of BeamServiceList.
func (in *BeamServiceList) DeepCopy() *BeamServiceList {
	if in == nil {
		return nil
	}
	out := new(BeamServiceList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *BeamServiceList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
