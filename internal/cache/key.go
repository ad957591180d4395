package cache

import (
	"strings"
)

// Kind names a logical resource type stored in the cache.
type Kind string

const (
	KindRepositories       Kind = "repos"
	KindRepositoryInfo     Kind = "repo_info"
	KindPullRequestIDs     Kind = "pr_ids"
	KindPullRequest        Kind = "pr"
	KindPipelines          Kind = "pipelines"
	KindPipelineState      Kind = "pipeline_state"
	KindPipelineExecutions Kind = "pipeline_execs"
)

// Key identifies a cache entry. Keys are namespaced by profile so that one
// profile never reads another profile's data.
type Key struct {
	Kind     Kind
	Profile  string
	Resource string // optional, e.g. repository or pipeline name
}

// NewKey builds a key. Resource parts are joined with "_".
func NewKey(kind Kind, profile string, resource ...string) Key {
	return Key{
		Kind:     kind,
		Profile:  profile,
		Resource: strings.Join(resource, "_"),
	}
}

// String returns the composite form, e.g. "repo_info_dev_svc-a".
func (k Key) String() string {
	parts := []string{string(k.Kind), k.Profile}
	if k.Resource != "" {
		parts = append(parts, k.Resource)
	}
	return strings.Join(parts, "_")
}

// IsValid reports whether the key has the parts needed to address a file.
func (k Key) IsValid() bool {
	return k.Kind != "" && k.Profile != ""
}

// fileName is the entry's name inside its profile directory.
func (k Key) fileName() string {
	name := string(k.Kind)
	if k.Resource != "" {
		name += "_" + k.Resource
	}
	return sanitizeSegment(name) + entryExtension
}

// sanitizeSegment makes a single path segment safe for the filesystem.
func sanitizeSegment(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\x00", "_")
	s = replacer.Replace(s)
	if s == "." || s == ".." {
		return strings.Repeat("_", len(s))
	}
	return s
}
