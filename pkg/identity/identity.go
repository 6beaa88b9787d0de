// Package identity adapts external sign-in providers. A provider proves who
// the user is; local sessions are issued elsewhere.
package identity

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnsupportedProvider = errors.New("identity: unsupported provider")
	ErrProviderRejected    = errors.New("identity: provider rejected sign-in")
	ErrInvalidState        = errors.New("identity: invalid oauth state")
)

// ExternalIdentity is what a provider tells us about the signed-in user.
type ExternalIdentity struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
}

// NormalizedEmail is the reconciliation join key.
func (e ExternalIdentity) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(e.Email))
}

type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}

// Registry resolves providers by name.
type Registry map[string]Provider

func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		if p != nil {
			r[p.Name()] = p
		}
	}
	return r
}

func (r Registry) Get(name string) (Provider, error) {
	p, ok := r[name]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return p, nil
}
