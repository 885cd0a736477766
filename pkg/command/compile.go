// Package command renders compiler, launcher and archiver invocations as
// literal command text. It performs no I/O.
package command

import (
	"fmt"
	"strings"

	"github.com/ritzau/javabuild/pkg/model"
)

const (
	// DefaultCompileFlags is used when no usable flags are configured.
	DefaultCompileFlags = "-Werror"
	// FlagPrefix starts every compiler flag token.
	FlagPrefix = "-"
	// SourcePattern selects every source file of a directory.
	SourcePattern = "*.java"
)

// BuildCommand is the literal text of one invocation. The empty command is
// not runnable and signals a configuration problem or an empty source set.
type BuildCommand string

// Runnable reports whether the command has any text to execute.
func (c BuildCommand) Runnable() bool {
	return strings.TrimSpace(string(c)) != ""
}

func (c BuildCommand) String() string {
	return string(c)
}

// Synthesizer renders commands for one platform.
type Synthesizer struct {
	Platform Platform
	Compiler string
	Launcher string
	Archiver string
}

// NewSynthesizer returns a synthesizer using the standard JDK tools.
func NewSynthesizer(p Platform) *Synthesizer {
	return &Synthesizer{
		Platform: p,
		Compiler: "javac",
		Launcher: "java",
		Archiver: "jar",
	}
}

// CompileInput is what the planner hands to Compile.
type CompileInput struct {
	Mode       model.Mode
	SourceDirs []string // FROM_SCRATCH: directories holding at least one source file
	Files      []string // INCREMENTAL: the expanded stale set, any order
	OutputRoot string
	Flags      string
	Policy     model.LibraryPolicy
	Libraries  []string // resolved archives, any order is kept as given
	Release    int      // 0 omits --release
}

// NormalizeFlags returns flags, or DefaultCompileFlags when flags is blank
// or does not start with FlagPrefix.
func NormalizeFlags(flags string) string {
	flags = strings.TrimSpace(flags)
	if flags == "" || !strings.HasPrefix(flags, FlagPrefix) {
		return DefaultCompileFlags
	}
	return flags
}

// Compile renders the compiler invocation. It returns the empty command when
// the output root is blank, the mode is invalid, or there is nothing to compile.
//
// Classpath rules: libraries are added unless the policy is ignore. In
// incremental mode the output root is prepended so unchanged classes resolve,
// again unless the policy is ignore.
func (s *Synthesizer) Compile(in CompileInput) BuildCommand {
	if strings.TrimSpace(in.OutputRoot) == "" {
		return ""
	}

	var sources string
	switch in.Mode {
	case model.ModeFromScratch:
		sources = s.sourcePatterns(in.SourceDirs)
	case model.ModeIncremental:
		sources = quoteAll(model.NewFileSet(in.Files...).Sorted())
	}
	if sources == "" {
		return ""
	}

	parts := []string{
		s.Compiler,
		"-d", quote(in.OutputRoot),
		NormalizeFlags(in.Flags),
	}
	if in.Release > 0 {
		parts = append(parts, "--release", fmt.Sprintf("%d", in.Release))
	}

	if in.Policy != model.LibraryIgnore {
		var cp []string
		if in.Mode == model.ModeIncremental {
			cp = append(cp, in.OutputRoot)
		}
		cp = append(cp, in.Libraries...)
		if len(cp) > 0 {
			parts = append(parts, "-cp", s.classpath(cp))
		}
	}

	parts = append(parts, sources)
	return BuildCommand(strings.Join(parts, " "))
}

// sourcePatterns renders one wildcard per directory, in given order. The
// POSIX shell expands the pattern, so only the directory is quoted there;
// on Windows the JDK launcher expands it and the whole pattern is quoted.
func (s *Synthesizer) sourcePatterns(dirs []string) string {
	patterns := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.TrimRight(d, `/\`)
		if d == "" {
			continue
		}
		if s.Platform.IsWindows() {
			patterns = append(patterns, quote(d+s.Platform.PathSeparator+SourcePattern))
		} else {
			patterns = append(patterns, quote(d)+s.Platform.PathSeparator+SourcePattern)
		}
	}
	return strings.Join(patterns, " ")
}

// classpath joins entries with the platform separator inside single quotes
func (s *Synthesizer) classpath(entries []string) string {
	return "'" + strings.Join(entries, s.Platform.ListSeparator) + "'"
}

func quote(s string) string {
	return `"` + s + `"`
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = quote(it)
	}
	return strings.Join(quoted, " ")
}
