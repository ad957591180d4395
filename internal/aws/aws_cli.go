package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

var (
	// ErrDependencyMissing is returned when the aws binary cannot be found.
	ErrDependencyMissing = errors.New("required tool not found")

	// ErrMutatingOperation is returned when Run is asked to execute anything but a read.
	ErrMutatingOperation = errors.New("refusing to run a mutating aws operation")
)

// readOnlyPrefixes are the operation prefixes Run is allowed to execute.
var readOnlyPrefixes = []string{"list-", "get-", "describe-", "batch-get-"}

// AwsCli provides AWS reads by executing the aws CLI.
type AwsCli struct {
	binary  string
	log     *clog.Logger
	timeout time.Duration
}

var _ AWS = &AwsCli{}

// New creates a new AwsCli that executes the given binary (usually "aws")
// and aborts any call that runs longer than timeout.
func New(binary string, timeout time.Duration) AWS {
	return &AwsCli{
		binary:  binary,
		log:     clog.Default().WithPrefix("aws"),
		timeout: timeout,
	}
}

func (a *AwsCli) executeAwsCommand(ctx context.Context, args ...string) (string, error) {
	a.log.Debug("Executing aws command", "cmd", a.binary, "args", args)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.binary, args...)
	cmd.Env = append(os.Environ(), "AWS_PAGER=", "AWS_CLI_AUTO_PROMPT=off")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			a.log.Warn("aws command timed out", "args", args, "timeout", a.timeout, "error", err)
			return "", fmt.Errorf("aws %s timed out after %s", strings.Join(args, " "), a.timeout)
		}
		a.log.Warn("aws command failed", "args", args, "stderr", stderr.String(), "error", err)
		return "", fmt.Errorf("aws %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	output := strings.TrimSpace(stdout.String())
	a.log.Debug("aws command succeeded", "args", args, "outputLen", len(output))
	return output, nil
}

func (a *AwsCli) Validate() error {
	path, err := exec.LookPath(a.binary)
	if err != nil {
		return fmt.Errorf("%w: %s is not installed or not on PATH", ErrDependencyMissing, a.binary)
	}
	a.log.Debug("Found aws binary", "path", path)

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	// v1 prints its version to stderr, v2 to stdout.
	out, err := exec.CommandContext(ctx, a.binary, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %s --version: %w", a.binary, err)
	}

	version, err := ParseCLIVersion(string(out))
	if err != nil {
		return err
	}
	if err := CheckCLIVersion(version); err != nil {
		return err
	}

	a.log.Debug("aws CLI version accepted", "version", version.String())
	return nil
}

func (a *AwsCli) ListProfiles(ctx context.Context) ([]string, error) {
	output, err := a.executeAwsCommand(ctx, "configure", "list-profiles")
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return parseProfiles(output), nil
}

func (a *AwsCli) Run(ctx context.Context, sess Session, d Descriptor) ([]byte, error) {
	if !isReadOnly(d.Operation) {
		return nil, fmt.Errorf("%w: %s %s", ErrMutatingOperation, d.Service, d.Operation)
	}

	args := append(d.WithSession(sess).Args(), "--output", "json")
	output, err := a.executeAwsCommand(ctx, args...)
	if err != nil {
		return nil, err
	}
	return []byte(output), nil
}

func isReadOnly(operation string) bool {
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(operation, prefix) {
			return true
		}
	}
	return false
}

// parseProfiles splits `aws configure list-profiles` output into names,
// dropping blank lines and duplicates while keeping order.
func parseProfiles(output string) []string {
	profiles := []string{}
	seen := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		name := strings.TrimSpace(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		profiles = append(profiles, name)
	}
	return profiles
}
