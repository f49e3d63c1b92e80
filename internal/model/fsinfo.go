// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which links a parsed entity back to the
// definition file it came from, for error messages and for resolving paths
// (such as a task's config_file) relative to that file.
package model

import "path/filepath"

type FSInfo struct {
	FilePath string
}

func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// Dir returns the directory holding the definition file.
func (f *FSInfo) Dir() string {
	if f == nil || f.FilePath == "" {
		return "."
	}
	return filepath.Dir(f.FilePath)
}

func (f *FSInfo) String() string {
	if f == nil {
		return "<unknown>"
	}
	return f.FilePath
}
