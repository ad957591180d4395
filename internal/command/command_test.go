package command

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcampanini/awr/internal/aws"
)

func samplePullRequest() aws.PullRequest {
	return aws.PullRequest{
		ID:         "123",
		RevisionID: "abc123",
		Title:      "Add retry",
		Targets: []aws.PullRequestTarget{{
			DestinationReference: "refs/heads/main",
			RepositoryName:       "svc-a",
			SourceCommit:         "9a8b7c6d",
			SourceReference:      "refs/heads/feature/retry",
		}},
	}
}

func sampleApproval() aws.PendingApproval {
	return aws.PendingApproval{
		Action:   "ManualApproval",
		Pipeline: "p1",
		Stage:    "Deploy",
		Token:    "tok-1",
	}
}

func TestApprovalStateCommands(t *testing.T) {
	cmds, err := ApprovalStateCommands(aws.Session{}, samplePullRequest())
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	assert.Equal(t,
		"aws codecommit update-pull-request-approval-state --pull-request-id 123 --revision-id abc123 --approval-state APPROVE",
		cmds[0].String())
	assert.Equal(t,
		"aws codecommit update-pull-request-approval-state --pull-request-id 123 --revision-id abc123 --approval-state REVOKE",
		cmds[1].String())

	for _, c := range cmds {
		assert.Contains(t, c.String(), "--pull-request-id 123")
		assert.Contains(t, c.String(), "--revision-id abc123")
	}
}

func TestApprovalStateCommands_Skipped(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*aws.PullRequest)
		wantField string
	}{
		{"no revision", func(pr *aws.PullRequest) { pr.RevisionID = "" }, "revision id"},
		{"no id", func(pr *aws.PullRequest) { pr.ID = "" }, "pull request id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := samplePullRequest()
			tt.mutate(&pr)

			cmds, err := ApprovalStateCommands(aws.Session{}, pr)
			assert.Nil(t, cmds)

			var skip *SkippedError
			require.True(t, errors.As(err, &skip))
			assert.Equal(t, ShapeApprovalState, skip.Shape)
			assert.Equal(t, tt.wantField, skip.Field)
		})
	}
}

func TestCommands_WithSession(t *testing.T) {
	sess := aws.Session{Profile: "sh-dev-pu", Region: "eu-west-1"}

	cmds, err := ApprovalStateCommands(sess, samplePullRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(cmds[0].String(), "--profile sh-dev-pu --region eu-west-1"))

	merge, err := MergeCommand(sess, samplePullRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(merge.String(), "--profile sh-dev-pu --region eu-west-1"))
}

func TestMergeCommand(t *testing.T) {
	cmd, err := MergeCommand(aws.Session{}, samplePullRequest())
	require.NoError(t, err)

	assert.Equal(t,
		"aws codecommit merge-pull-request-by-fast-forward --pull-request-id 123 --repository-name svc-a --source-commit-id 9a8b7c6d",
		cmd.String())
	assert.Equal(t, "merge pull request 123 (feature/retry -> main)", cmd.Label)
}

func TestMergeCommand_WithoutSourceCommit(t *testing.T) {
	pr := samplePullRequest()
	pr.Targets[0].SourceCommit = ""

	cmd, err := MergeCommand(aws.Session{}, pr)
	require.NoError(t, err)

	_, ok := cmd.Descriptor.Value("--source-commit-id")
	assert.False(t, ok)
}

func TestMergeCommand_Skipped(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*aws.PullRequest)
		wantField string
	}{
		{"no id", func(pr *aws.PullRequest) { pr.ID = "" }, "pull request id"},
		{"no target", func(pr *aws.PullRequest) { pr.Targets = nil }, "pull request target"},
		{"no repository", func(pr *aws.PullRequest) { pr.Targets[0].RepositoryName = "" }, "repository name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := samplePullRequest()
			tt.mutate(&pr)

			_, err := MergeCommand(aws.Session{}, pr)
			var skip *SkippedError
			require.True(t, errors.As(err, &skip))
			assert.Equal(t, ShapeMerge, skip.Shape)
			assert.Equal(t, tt.wantField, skip.Field)
		})
	}
}

func TestPipelineApprovalCommands(t *testing.T) {
	cmds, err := PipelineApprovalCommands(aws.Session{}, sampleApproval(), DefaultSummaries())
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	assert.Equal(t,
		"aws codepipeline put-approval-result --pipeline-name p1 --stage-name Deploy --action-name ManualApproval --result 'summary=Approved via awr,status=Approved' --token tok-1",
		cmds[0].String())
	assert.Equal(t,
		"aws codepipeline put-approval-result --pipeline-name p1 --stage-name Deploy --action-name ManualApproval --result 'summary=Rejected via awr,status=Rejected' --token tok-1",
		cmds[1].String())
}

func TestPipelineApprovalCommands_DifferOnlyInResult(t *testing.T) {
	cmds, err := PipelineApprovalCommands(aws.Session{}, sampleApproval(), Summaries{Approve: "ship it", Reject: "ship it"})
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	approved, rejected := cmds[0].Descriptor, cmds[1].Descriptor
	require.Len(t, rejected.Params, len(approved.Params))

	for i := range approved.Params {
		a, r := approved.Params[i], rejected.Params[i]
		assert.Equal(t, a.Flag, r.Flag)
		if a.Flag == "--result" {
			assert.Equal(t, "summary=ship it,status=Approved", a.Value)
			assert.Equal(t, "summary=ship it,status=Rejected", r.Value)
			continue
		}
		assert.Equal(t, a.Value, r.Value, "flag %s", a.Flag)
	}

	for _, c := range cmds {
		assert.Contains(t, c.String(), "--token tok-1")
	}
}

func TestPipelineApprovalCommands_Summaries(t *testing.T) {
	tests := []struct {
		name        string
		summaries   Summaries
		wantApprove string
		wantReject  string
	}{
		{"defaults on empty", Summaries{}, "summary=Approved via awr,status=Approved", "summary=Rejected via awr,status=Rejected"},
		{"custom", Summaries{Approve: "LGTM", Reject: "needs work"}, "summary=LGTM,status=Approved", "summary=needs work,status=Rejected"},
		{"commas replaced", Summaries{Approve: "ok, go", Reject: " no "}, "summary=ok; go,status=Approved", "summary=no,status=Rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds, err := PipelineApprovalCommands(aws.Session{}, sampleApproval(), tt.summaries)
			require.NoError(t, err)

			approve, _ := cmds[0].Descriptor.Value("--result")
			reject, _ := cmds[1].Descriptor.Value("--result")
			assert.Equal(t, tt.wantApprove, approve)
			assert.Equal(t, tt.wantReject, reject)
		})
	}
}

func TestPipelineApprovalCommands_Skipped(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*aws.PendingApproval)
		wantField string
	}{
		{"no pipeline", func(a *aws.PendingApproval) { a.Pipeline = "" }, "pipeline name"},
		{"no stage", func(a *aws.PendingApproval) { a.Stage = "" }, "stage name"},
		{"no action", func(a *aws.PendingApproval) { a.Action = "" }, "action name"},
		{"no token", func(a *aws.PendingApproval) { a.Token = "" }, "approval token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			approval := sampleApproval()
			tt.mutate(&approval)

			cmds, err := PipelineApprovalCommands(aws.Session{}, approval, DefaultSummaries())
			assert.Nil(t, cmds)

			var skip *SkippedError
			require.True(t, errors.As(err, &skip))
			assert.Equal(t, ShapePipelineApproval, skip.Shape)
			assert.Equal(t, tt.wantField, skip.Field)
		})
	}
}

func TestSkippedError_Error(t *testing.T) {
	err := &SkippedError{Field: "revision id", Shape: ShapeApprovalState}
	assert.Equal(t, "pull request approval state skipped: revision id is missing", err.Error())
}

func TestForPullRequest(t *testing.T) {
	b := ForPullRequest(aws.Session{}, samplePullRequest())
	assert.Len(t, b.Commands, 3)
	assert.Empty(t, b.Skipped)
	assert.False(t, b.IsEmpty())
}

func TestForPullRequest_NoRevisionKeepsMerge(t *testing.T) {
	pr := samplePullRequest()
	pr.RevisionID = ""

	b := ForPullRequest(aws.Session{}, pr)
	require.Len(t, b.Commands, 1)
	assert.Contains(t, b.Commands[0].String(), "merge-pull-request-by-fast-forward")
	require.Len(t, b.Skipped, 1)
	assert.Equal(t, ShapeApprovalState, b.Skipped[0].Shape)

	for _, c := range b.Commands {
		assert.NotContains(t, c.String(), "update-pull-request-approval-state")
	}
}

func TestForPullRequest_NothingBuildable(t *testing.T) {
	b := ForPullRequest(aws.Session{}, aws.PullRequest{})
	assert.True(t, b.IsEmpty())
	assert.Len(t, b.Skipped, 2)
}

func TestForPipeline(t *testing.T) {
	second := sampleApproval()
	second.Stage = "Prod"
	second.Token = "tok-2"
	broken := sampleApproval()
	broken.Token = ""

	b := ForPipeline(aws.Session{}, []aws.PendingApproval{sampleApproval(), second, broken}, DefaultSummaries())
	assert.Len(t, b.Commands, 4)
	require.Len(t, b.Skipped, 1)
	assert.Equal(t, "approval token", b.Skipped[0].Field)
}
