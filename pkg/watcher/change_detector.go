package watcher

// ChangeAnalysis describes what a batch of changes requires
type ChangeAnalysis struct {
	ReloadConfig bool
	FullRebuild  bool // the classpath or configuration changed, so every class is suspect
	ChangedFiles []string
}

// AnalyzeChanges determines what needs to be redone for a change event
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeConfig:
		analysis.ReloadConfig = true
		analysis.FullRebuild = true

	case ChangeTypeLibrary:
		analysis.FullRebuild = true

	case ChangeTypeSource:
		// Staleness detection picks up the changed files on the next plan
	}

	return analysis
}
