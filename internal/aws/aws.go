package aws

import "context"

type AWS interface {

	// Validate checks that the aws CLI is installed and is version 2 or newer.
	// Returns an error wrapping ErrDependencyMissing if the binary cannot be found.
	Validate() error

	// ListProfiles returns the profiles configured for the aws CLI.
	ListProfiles(ctx context.Context) ([]string, error)

	// Run executes a read-only descriptor against the session and returns the raw JSON output.
	Run(ctx context.Context, sess Session, d Descriptor) ([]byte, error)
}
