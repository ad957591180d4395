package aws

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = 30 * time.Second

// writeFakeAws writes an executable shell script standing in for the aws CLI.
func writeFakeAws(t *testing.T, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "aws")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestNew(t *testing.T) {
	a := New("aws", 60*time.Second)

	require.NotNil(t, a)

	_, ok := a.(*AwsCli)
	assert.True(t, ok, "expected *AwsCli")
}

func TestAwsCli_Validate(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:   "v2 on stdout",
			script: `echo "aws-cli/2.15.30 Python/3.11.8 Linux/6.5.0 exe/x86_64.ubuntu.22"`,
		},
		{
			name:    "v1 on stderr",
			script:  `echo "aws-cli/1.29.0 Python/3.8.10 Linux/5.15.0 botocore/1.31.0" >&2`,
			wantErr: "is not supported",
		},
		{
			name:    "garbage output",
			script:  `echo "command not recognised"`,
			wantErr: "unrecognized aws --version output",
		},
		{
			name:    "version command fails",
			script:  `exit 3`,
			wantErr: "--version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(writeFakeAws(t, tt.script), testTimeout)

			err := a.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestAwsCli_Validate_MissingBinary(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "no-such-aws"), testTimeout)

	err := a.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDependencyMissing)
	assert.Contains(t, err.Error(), "no-such-aws")
}

func TestAwsCli_Run(t *testing.T) {
	// Echo the argument vector back as a JSON string.
	path := writeFakeAws(t, `printf '{"args":"%s","pager":"%s"}' "$*" "$AWS_PAGER"`)
	a := New(path, testTimeout)

	out, err := a.Run(context.Background(), Session{Profile: "dev", Region: "eu-west-1"}, GetPullRequest("42"))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"args":"codecommit get-pull-request --pull-request-id 42 --profile dev --region eu-west-1 --output json","pager":""}`,
		string(out))
}

func TestAwsCli_Run_Failure(t *testing.T) {
	path := writeFakeAws(t, `echo "An error occurred (RepositoryDoesNotExistException)" >&2; exit 254`)
	a := New(path, testTimeout)

	_, err := a.Run(context.Background(), Session{Profile: "dev"}, GetRepository("gone"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RepositoryDoesNotExistException")
	assert.Contains(t, err.Error(), "get-repository")
}

func TestAwsCli_Run_Timeout(t *testing.T) {
	path := writeFakeAws(t, `exec sleep 5`)
	a := New(path, 100*time.Millisecond)

	_, err := a.Run(context.Background(), Session{}, ListPipelines())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out after 100ms")
}

func TestAwsCli_Run_RefusesMutation(t *testing.T) {
	path := writeFakeAws(t, `echo '{}'`)
	a := New(path, testTimeout)

	d := NewDescriptor("codecommit", "update-pull-request-approval-state").With("--pull-request-id", "1")
	_, err := a.Run(context.Background(), Session{}, d)
	assert.ErrorIs(t, err, ErrMutatingOperation)
}

func TestAwsCli_ListProfiles(t *testing.T) {
	path := writeFakeAws(t, `printf 'default\nsh-dev-pu\n\nprod\ndefault\n'`)
	a := New(path, testTimeout)

	profiles, err := a.ListProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "sh-dev-pu", "prod"}, profiles)
}

func TestParseProfiles(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{name: "empty", output: "", want: []string{}},
		{name: "single", output: "default", want: []string{"default"}},
		{name: "whitespace trimmed", output: "  dev  \r\nprod", want: []string{"dev", "prod"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseProfiles(tt.output))
		})
	}
}

func TestIsReadOnly(t *testing.T) {
	assert.True(t, isReadOnly("list-repositories"))
	assert.True(t, isReadOnly("get-pipeline-state"))
	assert.False(t, isReadOnly("put-approval-result"))
	assert.False(t, isReadOnly("merge-pull-request-by-fast-forward"))
}

// skipIfAwsNotAvailable skips the test if the aws CLI is not installed or has no usable credentials.
func skipIfAwsNotAvailable(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("aws"); err != nil {
		t.Skip("aws CLI not available")
	}

	cmd := exec.Command("aws", "sts", "get-caller-identity")
	if err := cmd.Run(); err != nil {
		t.Skip("aws CLI not authenticated")
	}
}

// Integration tests - these require aws to be installed and authenticated.

func TestAwsCli_ListPipelines_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	skipIfAwsNotAvailable(t)

	a := New("aws", testTimeout)
	require.NoError(t, a.Validate())

	out, err := a.Run(context.Background(), Session{}, ListPipelines())
	require.NoError(t, err)

	list, err := Decode[PipelineList](out)
	require.NoError(t, err)
	assert.NotNil(t, list.Pipelines)
}
