package aws

import "strconv"

const (
	serviceCodeCommit   = "codecommit"
	serviceCodePipeline = "codepipeline"
)

// ListRepositories describes `codecommit list-repositories` sorted by name.
func ListRepositories() Descriptor {
	return NewDescriptor(serviceCodeCommit, "list-repositories").
		With("--sort-by", "repositoryName").
		With("--order", "ascending")
}

// GetRepository describes `codecommit get-repository`.
func GetRepository(name string) Descriptor {
	return NewDescriptor(serviceCodeCommit, "get-repository").
		With("--repository-name", name)
}

// ListOpenPullRequests describes `codecommit list-pull-requests` for open pull requests.
func ListOpenPullRequests(repository string) Descriptor {
	return NewDescriptor(serviceCodeCommit, "list-pull-requests").
		With("--repository-name", repository).
		With("--pull-request-status", string(PullRequestStatusOpen))
}

// GetPullRequest describes `codecommit get-pull-request`.
func GetPullRequest(id string) Descriptor {
	return NewDescriptor(serviceCodeCommit, "get-pull-request").
		With("--pull-request-id", id)
}

// ListPipelines describes `codepipeline list-pipelines`.
func ListPipelines() Descriptor {
	return NewDescriptor(serviceCodePipeline, "list-pipelines")
}

// GetPipelineState describes `codepipeline get-pipeline-state`.
func GetPipelineState(name string) Descriptor {
	return NewDescriptor(serviceCodePipeline, "get-pipeline-state").
		With("--name", name)
}

// ListPipelineExecutions describes `codepipeline list-pipeline-executions`
// limited to the most recent maxItems executions.
func ListPipelineExecutions(name string, maxItems int) Descriptor {
	d := NewDescriptor(serviceCodePipeline, "list-pipeline-executions").
		With("--pipeline-name", name)
	if maxItems > 0 {
		d = d.With("--max-items", strconv.Itoa(maxItems))
	}
	return d
}
