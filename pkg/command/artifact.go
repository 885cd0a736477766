package command

import (
	"path/filepath"
	"strings"

	"github.com/ritzau/javabuild/pkg/model"
)

// ManifestFile is the manifest name written next to the project root.
const ManifestFile = "Manifesto.txt"

// RunInput describes a launcher invocation.
type RunInput struct {
	OutputRoot string
	MainClass  string
	Flags      string // launcher flags, passed through as given
	Policy     model.LibraryPolicy
	Libraries  []string
}

// Run renders the launcher invocation, or the empty command when the output
// root or main class is blank.
func (s *Synthesizer) Run(in RunInput) BuildCommand {
	if strings.TrimSpace(in.OutputRoot) == "" || strings.TrimSpace(in.MainClass) == "" {
		return ""
	}
	cp := []string{in.OutputRoot}
	if in.Policy != model.LibraryIgnore {
		cp = append(cp, in.Libraries...)
	}

	parts := []string{s.Launcher}
	if f := strings.TrimSpace(in.Flags); f != "" {
		parts = append(parts, f)
	}
	parts = append(parts, "-cp", s.classpath(cp), in.MainClass)
	return BuildCommand(strings.Join(parts, " "))
}

// Launch renders `java -jar` for a packaged archive.
func (s *Synthesizer) Launch(jar string) BuildCommand {
	if strings.TrimSpace(jar) == "" {
		return ""
	}
	return BuildCommand(s.Launcher + " -jar " + quote(jar))
}

// JarInput describes an archiver invocation.
type JarInput struct {
	Name          string // archive name without extension
	OutputRoot    string
	Flags         string // single-letter archiver options appended to -c, e.g. "v"
	WithManifest  bool   // use ManifestFile; otherwise MainClass becomes the entry point
	MainClass     string
	Policy        model.LibraryPolicy
	ExtractedDirs []string // unpacked library trees bundled when Policy is include
}

// Jar renders the archiver invocation. It returns the empty command when the
// name or output root is blank.
func (s *Synthesizer) Jar(in JarInput) BuildCommand {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.OutputRoot) == "" {
		return ""
	}
	if !strings.HasSuffix(name, ".jar") {
		name += ".jar"
	}

	opts := "-c" + strings.TrimLeft(strings.TrimSpace(in.Flags), "-") + "f"
	var asset string
	switch {
	case in.WithManifest:
		opts += "m"
		asset = ManifestFile
	case strings.TrimSpace(in.MainClass) != "":
		opts += "e"
		asset = in.MainClass
	}

	parts := []string{s.Archiver, opts, name}
	if asset != "" {
		parts = append(parts, asset)
	}
	parts = append(parts, "-C", s.dirArg(in.OutputRoot), ".")
	if in.Policy == model.LibraryInclude {
		for _, d := range in.ExtractedDirs {
			parts = append(parts, "-C", s.dirArg(d), ".")
		}
	}
	return BuildCommand(strings.Join(parts, " "))
}

// Extract renders one command per archive that unpacks it in place and
// removes the archive afterwards.
func (s *Synthesizer) Extract(archives []string) []BuildCommand {
	cmds := make([]BuildCommand, 0, len(archives))
	for _, a := range archives {
		dir, file := filepath.Split(a)
		if file == "" {
			continue
		}
		dir = strings.TrimRight(dir, `/\`)
		if dir == "" {
			dir = "."
		}
		remove := "rm -r " + quote(file)
		if s.Platform.IsWindows() {
			remove = "Remove-Item -Recurse -Force " + quote(file)
		}
		cmds = append(cmds, BuildCommand(strings.Join([]string{
			"cd " + quote(dir),
			s.Archiver + " -xf " + quote(file),
			remove,
		}, " && ")))
	}
	return cmds
}

// Argv wraps a command for execution through the platform shell.
func (s *Synthesizer) Argv(c BuildCommand) []string {
	argv := append([]string(nil), s.Platform.Shell...)
	return append(argv, string(c))
}

func (s *Synthesizer) dirArg(dir string) string {
	return strings.TrimRight(dir, `/\`) + s.Platform.PathSeparator
}
