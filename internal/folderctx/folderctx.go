// Package folderctx derives hierarchical document metadata from a file's
// location inside the project tree.
package folderctx

import (
	"path/filepath"
	"strings"
)

// Context holds the metadata derived from a file's folder hierarchy.
type Context struct {
	MainPhase        string
	ProjectCategory  string
	SubCategory      string
	SpecificArea     string
	FolderHierarchy  string
	PhaseDescription string
}

// phaseDescriptions expands known phase folder names into descriptive prose
// so embeddings capture what a phase means, not just its folder label.
var phaseDescriptions = map[string]string{
	"01.Origination&Dev": "Project Development and Origination Phase",
	"02.Execution":       "Project Construction and Execution Phase",
	"03.Operation":       "Project Operation and Maintenance Phase",
}

// Extract derives the folder context for filePath relative to projectRoot.
// It is a pure function. Any path-resolution failure (such as a file outside
// the project root) yields the Unknown sentinel context.
func Extract(filePath, projectRoot string) Context {
	rel, err := filepath.Rel(projectRoot, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return Unknown()
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	parts = parts[:len(parts)-1] // drop the filename

	ctx := Context{FolderHierarchy: "root"}
	if len(parts) > 0 {
		ctx.FolderHierarchy = strings.Join(parts, " > ")
	}
	if len(parts) >= 1 {
		ctx.MainPhase = parts[0]
	}
	if len(parts) >= 2 {
		ctx.ProjectCategory = parts[1]
	}
	if len(parts) >= 3 {
		ctx.SubCategory = parts[2]
	}
	if len(parts) >= 4 {
		ctx.SpecificArea = parts[3]
	}

	if ctx.MainPhase != "" {
		if desc, ok := phaseDescriptions[ctx.MainPhase]; ok {
			ctx.PhaseDescription = desc
		} else {
			// Unrecognized phase names pass through unchanged.
			ctx.PhaseDescription = ctx.MainPhase
		}
	}

	return ctx
}

// Unknown returns the sentinel context used when the folder hierarchy cannot
// be resolved.
func Unknown() Context {
	return Context{
		MainPhase:        "unknown",
		ProjectCategory:  "unknown",
		SubCategory:      "unknown",
		SpecificArea:     "unknown",
		FolderHierarchy:  "unknown",
		PhaseDescription: "Unknown project phase",
	}
}

// SearchContext concatenates the phase, category and hierarchy into one
// string used for lexical boosting alongside the embedding.
func (c Context) SearchContext() string {
	return strings.TrimSpace(strings.Join([]string{
		c.PhaseDescription, c.ProjectCategory, c.FolderHierarchy,
	}, " "))
}
