package catalog

import (
	"context"
	"fmt"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/awr/internal/aws"
	"github.com/jmcampanini/awr/internal/cache"
	"github.com/jmcampanini/awr/internal/freshness"
)

// DefaultMaxExecutions is how many recent pipeline executions are listed.
const DefaultMaxExecutions = 10

// defaultNamespace is the cache namespace used when the session names no profile.
const defaultNamespace = "default"

// Freshness describes where a value came from.
type Freshness struct {
	Age    time.Duration
	Cached bool
}

// String renders "live" for a fresh fetch or "cached 2m ago" for a cache hit.
func (f Freshness) String() string {
	if !f.Cached {
		return "live"
	}
	return "cached " + freshness.Format(f.Age)
}

// Result is a decoded value along with its freshness.
type Result[T any] struct {
	Freshness Freshness
	Value     T
}

// Catalog answers read requests from the cache when it can and from the AWS
// CLI otherwise, writing fresh responses back to the cache.
type Catalog struct {
	aws           aws.AWS
	cache         *cache.Store
	log           *clog.Logger
	maxExecutions int
}

// New creates a Catalog backed by the given client and cache store.
func New(client aws.AWS, store *cache.Store) *Catalog {
	return &Catalog{
		aws:           client,
		cache:         store,
		log:           clog.Default().WithPrefix("catalog"),
		maxExecutions: DefaultMaxExecutions,
	}
}

// WithMaxExecutions sets how many executions PipelineExecutions requests.
func (c *Catalog) WithMaxExecutions(n int) *Catalog {
	if n > 0 {
		c.maxExecutions = n
	}
	return c
}

// Namespace returns the cache namespace for a session.
func Namespace(sess aws.Session) string {
	if sess.Profile == "" {
		return defaultNamespace
	}
	return sess.Profile
}

func fetch[T any](ctx context.Context, c *Catalog, sess aws.Session, key cache.Key, d aws.Descriptor) (Result[T], error) {
	if payload, age, ok := c.cache.Get(key); ok {
		v, err := aws.Decode[T](payload)
		if err == nil {
			return Result[T]{Freshness: Freshness{Age: age, Cached: true}, Value: v}, nil
		}
		c.log.Warn("dropping undecodable cache entry", "key", key, "error", err)
		if err := c.cache.Delete(key); err != nil {
			c.log.Debug("failed to delete cache entry", "key", key, "error", err)
		}
	}

	payload, err := c.aws.Run(ctx, sess, d)
	if err != nil {
		return Result[T]{}, err
	}

	v, err := aws.Decode[T](payload)
	if err != nil {
		return Result[T]{}, fmt.Errorf("unexpected response from aws %s %s: %w", d.Service, d.Operation, err)
	}

	if err := c.cache.Set(key, payload); err != nil {
		c.log.Warn("failed to write cache entry", "key", key, "error", err)
	}
	return Result[T]{Value: v}, nil
}

// Profiles lists the configured AWS CLI profiles. Profiles are never cached.
func (c *Catalog) Profiles(ctx context.Context) ([]string, error) {
	return c.aws.ListProfiles(ctx)
}

func (c *Catalog) Repositories(ctx context.Context, sess aws.Session) (Result[aws.RepositoryList], error) {
	return fetch[aws.RepositoryList](ctx, c, sess, RepositoriesKey(sess), aws.ListRepositories())
}

func (c *Catalog) Repository(ctx context.Context, sess aws.Session, name string) (Result[aws.RepositoryInfo], error) {
	return fetch[aws.RepositoryInfo](ctx, c, sess, RepositoryKey(sess, name), aws.GetRepository(name))
}

func (c *Catalog) PullRequest(ctx context.Context, sess aws.Session, id string) (Result[aws.PullRequest], error) {
	return fetch[aws.PullRequest](ctx, c, sess, PullRequestKey(sess, id), aws.GetPullRequest(id))
}

// PullRequestList is the set of open pull requests of one repository.
type PullRequestList struct {
	Errors     []error // one per pull request that could not be fetched
	IDs        Freshness
	Items      []Result[aws.PullRequest]
	RawIDs     []string
	Repository string
}

// PullRequests lists the open pull requests of a repository and fetches each
// one. A pull request that fails to load is reported in Errors without
// hiding the others; only a failure to list the ids is returned as an error.
func (c *Catalog) PullRequests(ctx context.Context, sess aws.Session, repository string) (PullRequestList, error) {
	ids, err := fetch[aws.PullRequestIDs](ctx, c, sess, PullRequestIDsKey(sess, repository), aws.ListOpenPullRequests(repository))
	if err != nil {
		return PullRequestList{}, err
	}

	list := PullRequestList{
		IDs:        ids.Freshness,
		RawIDs:     ids.Value.IDs,
		Repository: repository,
	}
	for _, id := range ids.Value.IDs {
		pr, err := c.PullRequest(ctx, sess, id)
		if err != nil {
			c.log.Warn("failed to fetch pull request", "id", id, "error", err)
			list.Errors = append(list.Errors, fmt.Errorf("pull request %s: %w", id, err))
			continue
		}
		list.Items = append(list.Items, pr)
	}
	return list, nil
}

func (c *Catalog) Pipelines(ctx context.Context, sess aws.Session) (Result[aws.PipelineList], error) {
	return fetch[aws.PipelineList](ctx, c, sess, PipelinesKey(sess), aws.ListPipelines())
}

func (c *Catalog) PipelineState(ctx context.Context, sess aws.Session, name string) (Result[aws.PipelineState], error) {
	return fetch[aws.PipelineState](ctx, c, sess, PipelineStateKey(sess, name), aws.GetPipelineState(name))
}

func (c *Catalog) PipelineExecutions(ctx context.Context, sess aws.Session, name string) (Result[aws.PipelineExecutions], error) {
	return fetch[aws.PipelineExecutions](ctx, c, sess, PipelineExecutionsKey(sess, name), aws.ListPipelineExecutions(name, c.maxExecutions))
}

// Refresh drops the given entries so the next read goes to AWS.
func (c *Catalog) Refresh(keys ...cache.Key) {
	for _, key := range keys {
		if err := c.cache.Delete(key); err != nil {
			c.log.Debug("failed to drop cache entry", "key", key, "error", err)
		}
	}
}

// ClearProfile drops every cached entry of the session's namespace.
func (c *Catalog) ClearProfile(sess aws.Session) error {
	return c.cache.ClearProfile(Namespace(sess))
}
