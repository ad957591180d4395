package browse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/awr/internal/aws"
	"github.com/jmcampanini/awr/internal/catalog"
	"github.com/jmcampanini/awr/internal/command"
	"github.com/jmcampanini/awr/internal/menu"
	"github.com/jmcampanini/awr/internal/state"
)

// Menu item values that are not resource names.
const (
	actionBack          = "\x00back"
	actionClearCache    = "\x00clear-cache"
	actionEditApprove   = "\x00edit-approve"
	actionEditReject    = "\x00edit-reject"
	actionPipelines     = "\x00pipelines"
	actionQuit          = "\x00quit"
	actionRefresh       = "\x00refresh"
	actionRepositories  = "\x00repositories"
	actionSwitchProfile = "\x00switch-profile"
)

// Options tune the navigator.
type Options struct {
	// ClearOnProfileSwitch drops the old profile's cache namespace on a switch.
	ClearOnProfileSwitch bool

	// Profile, when set, overrides the persisted profile at startup.
	Profile string

	// Region is passed to every AWS call. Empty uses the profile's region.
	Region string

	Summaries command.Summaries
}

// Navigator drives the interactive session: profile selection, auto-enter of
// the last repository or pipeline, the main menu and every detail view.
type Navigator struct {
	catalog  *catalog.Catalog
	current  state.SelectionState
	log      *clog.Logger
	now      func() time.Time
	opts     Options
	out      io.Writer
	selector menu.Selector
	state    *state.Store
}

// New creates a Navigator. Views are written to out between menus.
func New(cat *catalog.Catalog, st *state.Store, sel menu.Selector, out io.Writer, opts Options) *Navigator {
	if opts.Summaries == (command.Summaries{}) {
		opts.Summaries = command.DefaultSummaries()
	}
	return &Navigator{
		catalog:  cat,
		log:      clog.Default().WithPrefix("browse"),
		now:      time.Now,
		opts:     opts,
		out:      out,
		selector: sel,
		state:    st,
	}
}

// Selection returns the current in-memory selection.
func (n *Navigator) Selection() state.SelectionState {
	return n.current
}

func (n *Navigator) session() aws.Session {
	return aws.Session{Profile: n.current.Profile, Region: n.opts.Region}
}

// isExit reports whether err means the user wants to leave the current menu.
func isExit(err error) bool {
	return errors.Is(err, menu.ErrBack) || errors.Is(err, menu.ErrInterrupted)
}

func (n *Navigator) save() {
	if err := n.state.Save(n.current); err != nil {
		n.log.Warn("failed to save selection", "path", n.state.Path(), "error", err)
	}
}

func (n *Navigator) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(n.out, format, args...)
}

func (n *Navigator) printError(what string, err error) {
	n.log.Warn("fetch failed", "what", what, "error", err)
	n.printf("%s\n", errorStyle.Render(fmt.Sprintf("Failed to %s: %v", what, err)))
}

// Run executes the session until the user quits. Only a failure that leaves
// no usable profile is returned; fetch errors are shown and the menu resumes.
func (n *Navigator) Run(ctx context.Context) error {
	n.current = n.state.Load()

	if n.opts.Profile != "" && n.opts.Profile != n.current.Profile {
		n.switchProfile(n.opts.Profile)
	}

	if n.current.Profile == "" {
		if err := n.chooseProfile(ctx); err != nil {
			if isExit(err) {
				return nil
			}
			return err
		}
		if n.current.Profile == "" {
			return nil
		}
	}

	if err := n.autoEnter(ctx); errors.Is(err, menu.ErrInterrupted) {
		return nil
	}

	return n.mainMenu(ctx)
}

// autoEnter opens the repository or pipeline remembered from the last session.
// A remembered name that can no longer be fetched is dropped.
func (n *Navigator) autoEnter(ctx context.Context) error {
	sess := n.session()

	switch {
	case n.current.Repository != "":
		name := n.current.Repository
		if _, err := n.catalog.Repository(ctx, sess, name); err != nil {
			n.printError("open repository "+name, err)
			n.current.Repository = ""
			n.save()
			return nil
		}
		n.log.Debug("auto-entering repository", "repository", name)
		err := n.repositoryView(ctx, name)
		if err != nil && !isExit(err) {
			n.printError("open repository "+name, err)
			return nil
		}
		return exitErr(err)

	case n.current.Pipeline != "":
		name := n.current.Pipeline
		if _, err := n.catalog.PipelineState(ctx, sess, name); err != nil {
			n.printError("open pipeline "+name, err)
			n.current.Pipeline = ""
			n.save()
			return nil
		}
		n.log.Debug("auto-entering pipeline", "pipeline", name)
		err := n.pipelineView(ctx, name)
		if err != nil && !isExit(err) {
			n.printError("open pipeline "+name, err)
			return nil
		}
		return exitErr(err)
	}
	return nil
}

func (n *Navigator) mainMenu(ctx context.Context) error {
	for {
		item, err := n.selector.Select(fmt.Sprintf("awr (profile %s)", n.current.Profile), []menu.Item{
			{Label: "Repositories", Value: actionRepositories},
			{Label: "Pipelines", Value: actionPipelines},
			{Label: "Switch profile", Value: actionSwitchProfile, Detail: "current: " + n.current.Profile},
			{Label: "Clear cache for profile", Value: actionClearCache},
			{Label: "Quit", Value: actionQuit},
		})
		if err != nil {
			if isExit(err) {
				return nil
			}
			return err
		}

		switch item.Value {
		case actionRepositories:
			err = n.browseRepositories(ctx)
		case actionPipelines:
			err = n.browsePipelines(ctx)
		case actionSwitchProfile:
			err = n.chooseProfile(ctx)
			if errors.Is(err, menu.ErrBack) {
				err = nil
			}
		case actionClearCache:
			n.clearCache()
		case actionQuit:
			return nil
		}
		if errors.Is(err, menu.ErrInterrupted) {
			return nil
		}
	}
}

// chooseProfile lets the user pick a profile from `aws configure list-profiles`,
// or type one when none can be listed.
func (n *Navigator) chooseProfile(ctx context.Context) error {
	profiles, err := n.catalog.Profiles(ctx)
	if err != nil {
		n.printError("list profiles", err)
	}

	if len(profiles) == 0 {
		name, err := n.selector.Prompt("AWS profile name", n.current.Profile)
		if err != nil {
			return err
		}
		if name != "" {
			n.switchProfile(name)
		}
		return nil
	}

	items := make([]menu.Item, len(profiles))
	for i, p := range profiles {
		items[i] = menu.Item{Label: p, Value: p}
		if p == n.current.Profile {
			items[i].Detail = "current"
		}
	}

	item, err := n.selector.Select("Choose an AWS profile", items)
	if err != nil {
		return err
	}
	n.switchProfile(item.Value)
	return nil
}

// switchProfile selects a new profile, resetting the repository and pipeline.
func (n *Navigator) switchProfile(profile string) {
	old := n.current.Profile
	if profile == old {
		return
	}

	if old != "" && n.opts.ClearOnProfileSwitch {
		if err := n.catalog.ClearProfile(aws.Session{Profile: old}); err != nil {
			n.log.Warn("failed to clear cache for previous profile", "profile", old, "error", err)
		}
	}

	n.log.Info("switched profile", "from", old, "to", profile)
	n.current = n.current.WithProfile(profile)
	n.save()
}

func (n *Navigator) clearCache() {
	if err := n.catalog.ClearProfile(n.session()); err != nil {
		n.log.Warn("failed to clear cache", "profile", n.current.Profile, "error", err)
	}
	n.printf("%s\n", mutedStyle.Render("Cleared cached data for profile "+n.current.Profile+"."))
}

func (n *Navigator) browseRepositories(ctx context.Context) error {
	sess := n.session()
	for {
		res, err := n.catalog.Repositories(ctx, sess)
		if err != nil {
			n.printError("list repositories", err)
			return nil
		}
		if len(res.Value.Repositories) == 0 {
			n.printf("%s\n", mutedStyle.Render("No repositories found."))
			return nil
		}

		items := []menu.Item{{Label: "Refresh", Value: actionRefresh, Detail: res.Freshness.String()}}
		for _, r := range res.Value.Repositories {
			items = append(items, menu.Item{Label: r.Name, Value: r.Name})
		}

		item, err := n.selector.Select("Repositories", items)
		if err != nil {
			return exitErr(err)
		}
		if item.Value == actionRefresh {
			n.catalog.Refresh(catalog.RepositoriesKey(sess))
			continue
		}

		n.current.Repository = item.Value
		n.save()
		if err := n.repositoryView(ctx, item.Value); err != nil {
			if errors.Is(err, menu.ErrInterrupted) {
				return err
			}
			n.printError("open repository "+item.Value, err)
		}
	}
}

// repositoryView shows a repository and its open pull requests until the user
// goes back. Fetch errors are returned to the enclosing menu.
func (n *Navigator) repositoryView(ctx context.Context, name string) error {
	sess := n.session()
	for {
		info, err := n.catalog.Repository(ctx, sess, name)
		if err != nil {
			return err
		}
		prs, err := n.catalog.PullRequests(ctx, sess, name)
		if err != nil {
			return err
		}

		n.printf("%s\n", renderRepository(info, prs, n.now()))

		items := make([]menu.Item, 0, len(prs.Items)+2)
		for _, item := range prs.Items {
			pr := item.Value
			detail := pr.Author()
			if target, ok := pr.Target(); ok {
				detail += " · " + target.SourceBranch() + " -> " + target.DestinationBranch()
			}
			items = append(items, menu.Item{Label: "#" + pr.ID + " " + pr.Title, Value: pr.ID, Detail: detail})
		}
		items = append(items,
			menu.Item{Label: "Refresh", Value: actionRefresh},
			menu.Item{Label: "Back", Value: actionBack},
		)

		item, err := n.selector.Select("Repository "+name, items)
		if err != nil {
			return exitErr(err)
		}
		switch item.Value {
		case actionBack:
			return nil
		case actionRefresh:
			n.catalog.Refresh(catalog.RepositoryKeys(sess, name, prs.RawIDs)...)
			continue
		}

		if err := n.pullRequestView(ctx, item.Value); err != nil {
			if errors.Is(err, menu.ErrInterrupted) {
				return err
			}
			n.printError("open pull request "+item.Value, err)
		}
	}
}

func (n *Navigator) pullRequestView(ctx context.Context, id string) error {
	sess := n.session()
	for {
		res, err := n.catalog.PullRequest(ctx, sess, id)
		if err != nil {
			return err
		}

		bundle := command.ForPullRequest(sess, res.Value)
		n.printf("%s\n", renderPullRequest(res, bundle, n.now()))

		item, err := n.selector.Select("PR #"+id, []menu.Item{
			{Label: "Refresh", Value: actionRefresh},
			{Label: "Back", Value: actionBack},
		})
		if err != nil {
			return exitErr(err)
		}
		if item.Value == actionBack {
			return nil
		}
		n.catalog.Refresh(catalog.PullRequestKey(sess, id))
	}
}

func (n *Navigator) browsePipelines(ctx context.Context) error {
	sess := n.session()
	for {
		res, err := n.catalog.Pipelines(ctx, sess)
		if err != nil {
			n.printError("list pipelines", err)
			return nil
		}
		if len(res.Value.Pipelines) == 0 {
			n.printf("%s\n", mutedStyle.Render("No pipelines found."))
			return nil
		}

		items := []menu.Item{{Label: "Refresh", Value: actionRefresh, Detail: res.Freshness.String()}}
		for _, p := range res.Value.Pipelines {
			items = append(items, menu.Item{Label: p.Name, Value: p.Name})
		}

		item, err := n.selector.Select("Pipelines", items)
		if err != nil {
			return exitErr(err)
		}
		if item.Value == actionRefresh {
			n.catalog.Refresh(catalog.PipelinesKey(sess))
			continue
		}

		n.current.Pipeline = item.Value
		n.save()
		if err := n.pipelineView(ctx, item.Value); err != nil {
			if errors.Is(err, menu.ErrInterrupted) {
				return err
			}
			n.printError("open pipeline "+item.Value, err)
		}
	}
}

// pipelineView shows pipeline state, pending approvals and recent executions
// until the user goes back. Approval summary edits last for the session.
func (n *Navigator) pipelineView(ctx context.Context, name string) error {
	sess := n.session()
	for {
		st, err := n.catalog.PipelineState(ctx, sess, name)
		if err != nil {
			return err
		}

		var execs *catalog.Result[aws.PipelineExecutions]
		res, execErr := n.catalog.PipelineExecutions(ctx, sess, name)
		if execErr == nil {
			execs = &res
		} else {
			n.log.Warn("failed to list executions", "pipeline", name, "error", execErr)
		}

		pending := st.Value.PendingApprovals()
		bundle := command.ForPipeline(sess, pending, n.opts.Summaries)
		n.printf("%s\n", renderPipeline(st, execs, execErr, bundle, n.now()))

		var items []menu.Item
		if len(pending) > 0 {
			items = append(items,
				menu.Item{Label: "Edit approve summary", Value: actionEditApprove, Detail: n.opts.Summaries.Approve},
				menu.Item{Label: "Edit reject summary", Value: actionEditReject, Detail: n.opts.Summaries.Reject},
			)
		}
		items = append(items,
			menu.Item{Label: "Refresh", Value: actionRefresh},
			menu.Item{Label: "Back", Value: actionBack},
		)

		item, err := n.selector.Select("Pipeline "+name, items)
		if err != nil {
			return exitErr(err)
		}
		switch item.Value {
		case actionBack:
			return nil
		case actionRefresh:
			n.catalog.Refresh(catalog.PipelineKeys(sess, name)...)
		case actionEditApprove:
			if err := n.editSummary("Approve summary", &n.opts.Summaries.Approve); err != nil {
				return err
			}
		case actionEditReject:
			if err := n.editSummary("Reject summary", &n.opts.Summaries.Reject); err != nil {
				return err
			}
		}
	}
}

// editSummary prompts for a new summary. Cancelling keeps the old value.
func (n *Navigator) editSummary(title string, summary *string) error {
	value, err := n.selector.Prompt(title, *summary)
	if err != nil {
		if errors.Is(err, menu.ErrBack) {
			return nil
		}
		return err
	}
	if value != "" {
		*summary = value
	}
	return nil
}

// exitErr maps back to a clean return while passing interrupts up.
func exitErr(err error) error {
	if errors.Is(err, menu.ErrBack) {
		return nil
	}
	return err
}
