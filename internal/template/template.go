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

// Package template renders BeamService program arguments. Token resolution
// and the full set of "encode" semantics are an external collaborator's
// contract: this package implements the documented subset - base64 - and
// passes any literal string through untouched.
package template

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	beamservicev1 "github.com/oisp-org/beam-operator/api/beamservice/v1"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// Render builds the space-separated "--k1=v1 --k2=v2 ..." program argument
// string from a BeamService's spec.args, substituting tokens into any
// template record's format string.
//
// Keys are rendered in sorted order so the output is deterministic
// regardless of map iteration order; spec.args has no declared-order
// requirement (unlike BeamSqlTable.fields), so sorting is a safe, testable
// choice rather than an arbitrary one.
func Render(args map[string]beamservicev1.ArgValue, tokens []string) (string, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := args[k]
		rendered, err := renderValue(v, tokens)
		if err != nil {
			return "", apperrors.Wrapf(err, apperrors.ErrorTypeValidation, "rendering arg %q", k)
		}
		fmt.Fprintf(&b, "--%s=%s ", k, rendered)
	}
	return b.String(), nil
}

func renderValue(v beamservicev1.ArgValue, tokens []string) (string, error) {
	if v.Literal != nil {
		return *v.Literal, nil
	}
	if v.Template == nil {
		return "", fmt.Errorf("arg value has neither a literal nor a template")
	}
	rendered := v.Template.Format
	for i, tok := range tokens {
		rendered = strings.ReplaceAll(rendered, fmt.Sprintf("{%d}", i), tok)
	}
	if v.Template.Encode == nil {
		return rendered, nil
	}
	switch strings.ToLower(*v.Template.Encode) {
	case "base64":
		return base64.StdEncoding.EncodeToString([]byte(rendered)), nil
	case "":
		return rendered, nil
	default:
		return "", fmt.Errorf("unsupported encode %q", *v.Template.Encode)
	}
}
