package catalog

import (
	"github.com/jmcampanini/awr/internal/aws"
	"github.com/jmcampanini/awr/internal/cache"
)

func RepositoriesKey(sess aws.Session) cache.Key {
	return cache.NewKey(cache.KindRepositories, Namespace(sess))
}

func RepositoryKey(sess aws.Session, name string) cache.Key {
	return cache.NewKey(cache.KindRepositoryInfo, Namespace(sess), name)
}

func PullRequestIDsKey(sess aws.Session, repository string) cache.Key {
	return cache.NewKey(cache.KindPullRequestIDs, Namespace(sess), repository)
}

func PullRequestKey(sess aws.Session, id string) cache.Key {
	return cache.NewKey(cache.KindPullRequest, Namespace(sess), id)
}

func PipelinesKey(sess aws.Session) cache.Key {
	return cache.NewKey(cache.KindPipelines, Namespace(sess))
}

func PipelineStateKey(sess aws.Session, name string) cache.Key {
	return cache.NewKey(cache.KindPipelineState, Namespace(sess), name)
}

func PipelineExecutionsKey(sess aws.Session, name string) cache.Key {
	return cache.NewKey(cache.KindPipelineExecutions, Namespace(sess), name)
}

// RepositoryKeys returns every entry behind the repository view, including
// the listed pull requests.
func RepositoryKeys(sess aws.Session, repository string, pullRequestIDs []string) []cache.Key {
	keys := []cache.Key{
		RepositoryKey(sess, repository),
		PullRequestIDsKey(sess, repository),
	}
	for _, id := range pullRequestIDs {
		keys = append(keys, PullRequestKey(sess, id))
	}
	return keys
}

// PipelineKeys returns every entry behind the pipeline view.
func PipelineKeys(sess aws.Session, name string) []cache.Key {
	return []cache.Key{
		PipelineStateKey(sess, name),
		PipelineExecutionsKey(sess, name),
	}
}
