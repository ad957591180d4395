// Package awstest provides an in-memory aws.AWS for tests.
package awstest

import (
	"context"
	"fmt"

	"github.com/jmcampanini/awr/internal/aws"
)

// Fake answers Run calls from canned responses keyed by the rendered
// descriptor, e.g. "aws codecommit get-repository --repository-name svc-a".
// Session parameters are not part of the key.
type Fake struct {
	Calls       []string
	Errors      map[string]error
	ProfileErr  error
	Profiles    []string
	Responses   map[string]string
	Sessions    []aws.Session
	ValidateErr error
}

var _ aws.AWS = &Fake{}

// New creates an empty Fake.
func New() *Fake {
	return &Fake{
		Errors:    map[string]error{},
		Responses: map[string]string{},
	}
}

// On registers the response for a descriptor.
func (f *Fake) On(d aws.Descriptor, response string) *Fake {
	f.Responses[d.Render()] = response
	return f
}

// Fail registers an error for a descriptor.
func (f *Fake) Fail(d aws.Descriptor, err error) *Fake {
	f.Errors[d.Render()] = err
	return f
}

// CallCount returns how many times the descriptor was run.
func (f *Fake) CallCount(d aws.Descriptor) int {
	key := d.Render()
	n := 0
	for _, c := range f.Calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *Fake) Validate() error {
	return f.ValidateErr
}

func (f *Fake) ListProfiles(_ context.Context) ([]string, error) {
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	return f.Profiles, nil
}

func (f *Fake) Run(_ context.Context, sess aws.Session, d aws.Descriptor) ([]byte, error) {
	key := d.Render()
	f.Calls = append(f.Calls, key)
	f.Sessions = append(f.Sessions, sess)

	if err, ok := f.Errors[key]; ok {
		return nil, err
	}
	if resp, ok := f.Responses[key]; ok {
		return []byte(resp), nil
	}
	return nil, fmt.Errorf("aws %s %s failed: no canned response", d.Service, d.Operation)
}
