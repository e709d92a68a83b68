package output

import (
	"fmt"
	"strings"
)

type ArtifactKind string

const (
	ArtifactTopics          ArtifactKind = "topics"
	ArtifactTopicIDs        ArtifactKind = "topic-ids"
	ArtifactLessons         ArtifactKind = "lessons"
	ArtifactLessonsTemplate ArtifactKind = "lessons-template"
	ArtifactLessonsFilled   ArtifactKind = "lessons-filled"
	ArtifactTags            ArtifactKind = "tags"
	ArtifactRunbook         ArtifactKind = "runbook"
	ArtifactRunbookHTML     ArtifactKind = "runbook-html"
)

// Artifact is one file written into the output directory.
type Artifact struct {
	Kind    ArtifactKind
	Step    int
	Name    string
	OutPath string
	Note    string
}

func (a Artifact) String() string {
	var parts []string
	parts = append(parts, string(a.Kind))
	if a.Step > 0 {
		parts = append(parts, fmt.Sprintf("step=%d", a.Step))
	}
	if a.Name != "" {
		parts = append(parts, "name="+a.Name)
	}
	if a.OutPath != "" {
		parts = append(parts, "out="+a.OutPath)
	}
	return strings.Join(parts, " ")
}

// IsStatement reports whether the artifact holds SQL for the operator to run.
func (a Artifact) IsStatement() bool {
	switch a.Kind {
	case ArtifactRunbook, ArtifactRunbookHTML:
		return false
	}
	return true
}
