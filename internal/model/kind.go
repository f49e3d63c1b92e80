// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the closed set of step variants.
package model

import "fmt"

// Kind tags a step with the variant that knows how to run it.
type Kind string

const (
	KindModel    Kind = "model"
	KindAnalysis Kind = "analysis"
	KindMesh     Kind = "mesh"
)

// Kinds returns every valid kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindMesh, KindModel, KindAnalysis}
}

// ParseKind validates a kind name from a definition file.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown step kind %q, expected one of %v", s, Kinds())
}
