// Package model defines the core data types shared across the crawler.
package model

import "time"

// Repo represents a repository candidate returned by the search stage.
// Immutable once fetched within a single run.
type Repo struct {
	FullName    string `json:"fullName"`
	Stars       int    `json:"stars"`
	SizeKB      int    `json:"sizeKb"`
	Description string `json:"description"`
	HTMLURL     string `json:"htmlUrl"`
}

// PullRequest represents a merged pull request within a repository.
type PullRequest struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	HTMLURL  string     `json:"htmlUrl"`
	MergedAt *time.Time `json:"mergedAt,omitempty"`
	State    string     `json:"state"`
}

// FileStatus is the per-file change status reported by the forge.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusRemoved  FileStatus = "removed"
	StatusRenamed  FileStatus = "renamed"
)

// FileChange is the per-file delta of a pull request.
type FileChange struct {
	Path      string     `json:"path"`
	Status    FileStatus `json:"status"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Changes   int        `json:"changes"`
	Patch     string     `json:"patch,omitempty"`
}
