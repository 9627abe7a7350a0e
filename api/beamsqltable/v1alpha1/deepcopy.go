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
func (in *KeyValue) DeepCopyInto(out *KeyValue) {
	*out = *in
}

// DeepCopyInto copies the receiver into out.
func (in *Field) DeepCopyInto(out *Field) {
	*out = *in
}

// DeepCopyInto copies the receiver into out.
func (in *KafkaEntry) DeepCopyInto(out *KafkaEntry) {
	*out = *in
	if in.Properties != nil {
		out.Properties = make([]KeyValue, len(in.Properties))
		copy(out.Properties, in.Properties)
	}
}

// DeepCopyInto copies the receiver into out.
func (in KafkaSpec) DeepCopyInto(out *KafkaSpec) {
	*out = make(KafkaSpec, len(in))
	for i := range in {
		in[i].DeepCopyInto(&(*out)[i])
	}
}

// DeepCopyInto copies the receiver into out.
func (in *BeamSqlTableSpec) DeepCopyInto(out *BeamSqlTableSpec) {
	*out = *in
	if in.Fields != nil {
		out.Fields = make([]Field, len(in.Fields))
		copy(out.Fields, in.Fields)
	}
	if in.Kafka != nil {
		in.Kafka.DeepCopyInto(&out.Kafka)
	}
}

// DeepCopyInto copies the receiver into out.
func (in *BeamSqlTable) DeepCopyInto(out *BeamSqlTable) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
}

// DeepCopy creates a deep copy of BeamSqlTable.
func (in *BeamSqlTable) DeepCopy() *BeamSqlTable {
	if in == nil {
		return nil
	}
	out := new(BeamSqlTable)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *BeamSqlTable) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// DeepCopyInto copies the receiver into out.
func (in *BeamSqlTableList) DeepCopyInto(out *BeamSqlTableList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]BeamSqlTable, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of BeamSqlTableList.
func (in *BeamSqlTableList) DeepCopy() *BeamSqlTableList {
	if in == nil {
		return nil
	}
	out := new(BeamSqlTableList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject implements runtime.Object.
func (in *BeamSqlTableList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}
