package aws

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// minimumCLIVersion is the oldest aws CLI release with ISO timestamps and
// `configure list-profiles`.
const minimumCLIVersion = ">= 2.0.0"

// ParseCLIVersion extracts the version from `aws --version` output,
// e.g. "aws-cli/2.15.30 Python/3.11.8 Linux/6.5.0 exe/x86_64".
func ParseCLIVersion(output string) (*semver.Version, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty aws --version output")
	}
	raw, ok := strings.CutPrefix(fields[0], "aws-cli/")
	if !ok {
		return nil, fmt.Errorf("unrecognized aws --version output: %q", strings.TrimSpace(output))
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid aws CLI version %q: %w", raw, err)
	}
	return v, nil
}

// CheckCLIVersion returns an error when v is older than the supported minimum.
func CheckCLIVersion(v *semver.Version) error {
	constraint, err := semver.NewConstraint(minimumCLIVersion)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("aws CLI %s is not supported, need %s", v, minimumCLIVersion)
	}
	return nil
}
