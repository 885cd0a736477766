package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/javabuild/pkg/command"
)

// ScriptName is the build script base name; the platform adds the extension.
const ScriptName = "build"

// Script describes a standalone build script that reproduces a full build
// without this tool.
type Script struct {
	Platform command.Platform
	Extract  []command.BuildCommand
	Compile  command.BuildCommand
	Jar      command.BuildCommand
	Run      command.BuildCommand // optional launch of the finished jar
}

// String renders the script for its platform. Every step runs from the
// directory holding the script.
func (s Script) String() string {
	var b strings.Builder
	home := `cd "$ROOT"`
	if s.Platform.IsWindows() {
		b.WriteString("$ErrorActionPreference = \"Stop\"\n")
		b.WriteString("Set-Location $PSScriptRoot\n")
		home = "Set-Location $PSScriptRoot"
	} else {
		b.WriteString("#!/bin/sh\n")
		b.WriteString("set -e\n")
		b.WriteString(`ROOT="$(cd "$(dirname "$0")" && pwd)"` + "\n")
		b.WriteString(home + "\n")
	}

	for _, c := range s.Extract {
		if !c.Runnable() {
			continue
		}
		b.WriteString(string(c) + "\n")
		b.WriteString(home + "\n")
	}
	for _, c := range []command.BuildCommand{s.Compile, s.Jar, s.Run} {
		if c.Runnable() {
			b.WriteString(string(c) + "\n")
		}
	}
	return b.String()
}

// ScriptPath returns the script location for a project root and platform.
func ScriptPath(root string, p command.Platform) string {
	return filepath.Join(root, ScriptName+p.ScriptExt)
}

// WriteScript writes the script to the project root. Unix scripts are made
// executable.
func WriteScript(root string, s Script) (string, error) {
	if !s.Compile.Runnable() {
		return "", fmt.Errorf("build script needs a compile command")
	}
	path := ScriptPath(root, s.Platform)
	mode := os.FileMode(0o644)
	if !s.Platform.IsWindows() {
		mode = 0o755
	}
	if err := os.WriteFile(path, []byte(s.String()), mode); err != nil {
		return "", fmt.Errorf("failed to write build script: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(path, mode); err != nil {
		return "", fmt.Errorf("failed to set script mode: %w", err)
	}
	return path, nil
}
