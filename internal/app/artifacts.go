package app

import (
	"coursesql/internal/domain/config"
	"coursesql/internal/domain/output"
	"path/filepath"
)

// ArtifactPlanner decides which files a build writes and in what order the
// operator runs them.
type ArtifactPlanner struct {
	OutDir  string
	Runbook bool
}

func (p *ArtifactPlanner) StatementArtifacts(policy config.Policy) []output.Artifact {
	var specs []output.Artifact
	switch policy {
	case config.PolicyPlaceholder:
		specs = []output.Artifact{
			{Kind: output.ArtifactTopics, Name: "01-insert-topics.sql", Note: "Ready to run"},
			{Kind: output.ArtifactTopicIDs, Name: "02-get-topic-ids.sql", Note: "Run after step 1, export the result"},
			{Kind: output.ArtifactLessonsTemplate, Name: "03-insert-lessons-template.sql", Note: "Needs topic IDs (see `coursesql fill`)"},
			{Kind: output.ArtifactTags, Name: "04-insert-tags.sql", Note: "Run after lessons"},
		}
	default:
		specs = []output.Artifact{
			{Kind: output.ArtifactTopics, Name: "step1-insert-topics.sql", Note: "Ready to run"},
			{Kind: output.ArtifactLessons, Name: "step2-insert-lessons.sql", Note: "Run after step 1, topic IDs are matched by name"},
			{Kind: output.ArtifactTags, Name: "step3-insert-tags.sql", Note: "Run after step 2"},
		}
	}

	for i := range specs {
		specs[i].Step = i + 1
		specs[i].OutPath = filepath.Join(p.OutDir, specs[i].Name)
	}
	return specs
}

// FilledLessons is the artifact written by `fill` next to the lessons template.
func (p *ArtifactPlanner) FilledLessons() output.Artifact {
	return output.Artifact{
		Kind:    output.ArtifactLessonsFilled,
		Step:    3,
		Name:    "03-insert-lessons.sql",
		OutPath: filepath.Join(p.OutDir, "03-insert-lessons.sql"),
		Note:    "Template with topic IDs substituted",
	}
}

func (p *ArtifactPlanner) RunbookArtifacts() []output.Artifact {
	if !p.Runbook {
		return nil
	}
	return []output.Artifact{
		{Kind: output.ArtifactRunbook, Name: "RUNBOOK.md", OutPath: filepath.Join(p.OutDir, "RUNBOOK.md")},
		{Kind: output.ArtifactRunbookHTML, Name: "RUNBOOK.html", OutPath: filepath.Join(p.OutDir, "RUNBOOK.html")},
	}
}

func (p *ArtifactPlanner) Plan(policy config.Policy) []output.Artifact {
	return append(p.StatementArtifacts(policy), p.RunbookArtifacts()...)
}
