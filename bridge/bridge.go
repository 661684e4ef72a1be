//go:build linux

// Package bridge manages the host Linux bridge each container's veth pair
// is enslaved to. Creation is idempotent by design: the bridge outlives any
// single run, so a second invocation against the same --network-name must
// reuse it rather than fail.
package bridge

import (
	"errors"
	"fmt"

	"github.com/rabbitstack/rabbitc/netlinkclient"
)

// Identity describes a bridge device after Ensure returns. CIDR is empty
// when an existing bridge was reused, since reuse never re-addresses it.
type Identity struct {
	Name  string
	Index int
	CIDR  string
}

// CreationError wraps a netlink failure that is not an idempotent reuse.
type CreationError struct {
	Name string
	Err  error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("bridge: create %q: %v", e.Name, e.Err)
}

func (e *CreationError) Unwrap() error { return e.Err }

// Ensure creates the named bridge with the given gateway CIDR if it does not
// already exist. An existing bridge with the same name is reused as-is — no
// error, no re-address — matching the "at most one per name per namespace"
// invariant. Any other netlink failure is returned as a *CreationError.
func Ensure(client netlinkclient.Client, name, cidr string) (Identity, error) {
	err := client.CreateLink(netlinkclient.KindBridge, name)
	switch {
	case err == nil:
		link, lerr := client.LookupLinkByName(name)
		if lerr != nil {
			return Identity{}, &CreationError{Name: name, Err: lerr}
		}
		if err := client.SetLinkUp(link); err != nil {
			return Identity{}, &CreationError{Name: name, Err: err}
		}
		if err := client.AddAddress(link, cidr); err != nil {
			return Identity{}, &CreationError{Name: name, Err: err}
		}
		return Identity{Name: name, Index: link.Index, CIDR: cidr}, nil

	case errors.Is(err, netlinkclient.ErrAlreadyExists):
		link, lerr := client.LookupLinkByName(name)
		if lerr != nil {
			return Identity{}, &CreationError{Name: name, Err: lerr}
		}
		return Identity{Name: name, Index: link.Index}, nil

	default:
		return Identity{}, &CreationError{Name: name, Err: err}
	}
}
