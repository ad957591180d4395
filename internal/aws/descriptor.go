package aws

import (
	"strings"
)

// Session identifies the AWS CLI profile and region every call runs against.
// It is passed explicitly; nothing in this package reads AWS_PROFILE.
type Session struct {
	Profile string
	Region  string
}

// Param is one "--flag value" pair. An empty Value renders a bare flag.
type Param struct {
	Flag  string
	Value string
}

// Descriptor is a structured AWS CLI invocation: service, operation and an
// ordered parameter list. It is both executed by the CLI client and rendered
// as copy-paste text.
type Descriptor struct {
	Operation string
	Params    []Param
	Service   string
}

// NewDescriptor creates a descriptor for "aws <service> <operation>".
func NewDescriptor(service, operation string) Descriptor {
	return Descriptor{Operation: operation, Service: service}
}

// With returns a copy of d with the parameter appended.
func (d Descriptor) With(flag, value string) Descriptor {
	params := make([]Param, len(d.Params), len(d.Params)+1)
	copy(params, d.Params)
	d.Params = append(params, Param{Flag: flag, Value: value})
	return d
}

// WithSession appends --profile and --region when the session sets them.
func (d Descriptor) WithSession(sess Session) Descriptor {
	if sess.Profile != "" {
		d = d.With("--profile", sess.Profile)
	}
	if sess.Region != "" {
		d = d.With("--region", sess.Region)
	}
	return d
}

// Value returns the value of the first parameter with the given flag.
func (d Descriptor) Value(flag string) (string, bool) {
	for _, p := range d.Params {
		if p.Flag == flag {
			return p.Value, true
		}
	}
	return "", false
}

// Args returns the argument vector after the "aws" binary name.
func (d Descriptor) Args() []string {
	args := []string{d.Service, d.Operation}
	for _, p := range d.Params {
		args = append(args, p.Flag)
		if p.Value != "" {
			args = append(args, p.Value)
		}
	}
	return args
}

// Render formats the descriptor as a single shell command line.
// Values containing shell metacharacters are single-quoted.
func (d Descriptor) Render() string {
	parts := []string{"aws"}
	for _, arg := range d.Args() {
		parts = append(parts, shellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// String implements fmt.Stringer.
func (d Descriptor) String() string {
	return d.Render()
}

// shellSafe lists characters that never need quoting in a POSIX shell word.
const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./:=,@%+"

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.Trim(s, shellSafe) == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
