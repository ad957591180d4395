package command

import (
	"fmt"
	"strings"

	"github.com/jmcampanini/awr/internal/aws"
)

const (
	DefaultApproveSummary = "Approved via awr"
	DefaultRejectSummary  = "Rejected via awr"
)

// Shape names one kind of synthesized command.
type Shape string

const (
	ShapeApprovalState    Shape = "pull request approval state"
	ShapeMerge            Shape = "pull request merge"
	ShapePipelineApproval Shape = "pipeline approval result"
)

// ApprovalState is the target state of update-pull-request-approval-state.
type ApprovalState string

const (
	Approve ApprovalState = "APPROVE"
	Revoke  ApprovalState = "REVOKE"
)

// ApprovalResult is the status sent with put-approval-result.
type ApprovalResult string

const (
	Approved ApprovalResult = "Approved"
	Rejected ApprovalResult = "Rejected"
)

// Command is a fully parameterized, ready-to-paste AWS CLI command.
type Command struct {
	Descriptor aws.Descriptor
	Label      string
}

// String renders the command line.
func (c Command) String() string {
	return c.Descriptor.Render()
}

// SkippedError reports that a command shape could not be built because the
// fetched record lacks a required field.
type SkippedError struct {
	Field string
	Shape Shape
}

func (e *SkippedError) Error() string {
	return fmt.Sprintf("%s skipped: %s is missing", e.Shape, e.Field)
}

func skipped(shape Shape, field string) error {
	return &SkippedError{Field: field, Shape: shape}
}

// Summaries are the human-readable texts attached to pipeline approval results.
type Summaries struct {
	Approve string
	Reject  string
}

// DefaultSummaries returns the summaries used when nothing is configured.
func DefaultSummaries() Summaries {
	return Summaries{Approve: DefaultApproveSummary, Reject: DefaultRejectSummary}
}

func (s Summaries) forResult(result ApprovalResult) string {
	switch result {
	case Approved:
		if strings.TrimSpace(s.Approve) != "" {
			return s.Approve
		}
		return DefaultApproveSummary
	default:
		if strings.TrimSpace(s.Reject) != "" {
			return s.Reject
		}
		return DefaultRejectSummary
	}
}

// ApprovalStateCommands returns one update-pull-request-approval-state
// command per target state, APPROVE first.
func ApprovalStateCommands(sess aws.Session, pr aws.PullRequest) ([]Command, error) {
	if pr.ID == "" {
		return nil, skipped(ShapeApprovalState, "pull request id")
	}
	if pr.RevisionID == "" {
		return nil, skipped(ShapeApprovalState, "revision id")
	}

	var cmds []Command
	for _, st := range []ApprovalState{Approve, Revoke} {
		d := aws.NewDescriptor("codecommit", "update-pull-request-approval-state").
			With("--pull-request-id", pr.ID).
			With("--revision-id", pr.RevisionID).
			With("--approval-state", string(st)).
			WithSession(sess)
		cmds = append(cmds, Command{
			Descriptor: d,
			Label:      fmt.Sprintf("%s pull request %s", strings.ToLower(string(st)), pr.ID),
		})
	}
	return cmds, nil
}

// MergeCommand returns a merge-pull-request-by-fast-forward command for the
// first target of the pull request.
func MergeCommand(sess aws.Session, pr aws.PullRequest) (Command, error) {
	if pr.ID == "" {
		return Command{}, skipped(ShapeMerge, "pull request id")
	}
	target, ok := pr.Target()
	if !ok {
		return Command{}, skipped(ShapeMerge, "pull request target")
	}
	if target.RepositoryName == "" {
		return Command{}, skipped(ShapeMerge, "repository name")
	}

	d := aws.NewDescriptor("codecommit", "merge-pull-request-by-fast-forward").
		With("--pull-request-id", pr.ID).
		With("--repository-name", target.RepositoryName)
	if target.SourceCommit != "" {
		d = d.With("--source-commit-id", target.SourceCommit)
	}
	d = d.WithSession(sess)

	label := fmt.Sprintf("merge pull request %s", pr.ID)
	if src, dst := target.SourceBranch(), target.DestinationBranch(); src != "" && dst != "" {
		label = fmt.Sprintf("%s (%s -> %s)", label, src, dst)
	}
	return Command{Descriptor: d, Label: label}, nil
}

// PipelineApprovalCommands returns one put-approval-result command per result,
// Approved first. The variants differ only in status and summary.
func PipelineApprovalCommands(sess aws.Session, approval aws.PendingApproval, summaries Summaries) ([]Command, error) {
	required := []struct {
		field string
		value string
	}{
		{"pipeline name", approval.Pipeline},
		{"stage name", approval.Stage},
		{"action name", approval.Action},
		{"approval token", approval.Token},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, skipped(ShapePipelineApproval, r.field)
		}
	}

	var cmds []Command
	for _, result := range []ApprovalResult{Approved, Rejected} {
		d := aws.NewDescriptor("codepipeline", "put-approval-result").
			With("--pipeline-name", approval.Pipeline).
			With("--stage-name", approval.Stage).
			With("--action-name", approval.Action).
			With("--result", resultValue(summaries.forResult(result), result)).
			With("--token", approval.Token).
			WithSession(sess)
		cmds = append(cmds, Command{
			Descriptor: d,
			Label:      fmt.Sprintf("%s %s/%s", strings.ToLower(string(result)), approval.Stage, approval.Action),
		})
	}
	return cmds, nil
}

// resultValue builds the shorthand structure accepted by --result. Commas in
// the summary would split the shorthand, so they are replaced.
func resultValue(summary string, result ApprovalResult) string {
	summary = strings.ReplaceAll(strings.TrimSpace(summary), ",", ";")
	return fmt.Sprintf("summary=%s,status=%s", summary, result)
}
