//go:build linux

// Package veth provisions the veth pair that carries one container's
// traffic onto the host bridge, and configures the in-container end once
// the pair has crossed into the container's network namespace.
package veth

import (
	"fmt"

	"github.com/rabbitstack/rabbitc/netlinkclient"
)

// Error wraps a netlink failure with the provisioning step that produced
// it, so logs read as "veth: move-to-netns: ..." rather than a bare errno.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("veth: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Pair is the result of CreatePair: the host-side link's final (renamed)
// name, and the name of the still-host-resident peer that will later move
// into the container's netns under PeerName.
type Pair struct {
	HostName string
	PeerName string
}

// CreatePair creates a veth pair naming only the peer end (peerName); the
// kernel assigns the other end the default name "veth0". That end is
// looked up, renamed to "veth<random-7>" to avoid colliding with the next
// run's "veth0", brought up, and enslaved to bridgeName. generate produces
// the random suffix (ifname.Generate in production).
func CreatePair(client netlinkclient.Client, peerName, bridgeName string, generate func(int) (string, error)) (Pair, error) {
	if err := client.CreateLink(netlinkclient.KindVeth, peerName); err != nil {
		return Pair{}, &Error{Op: "create-pair", Err: err}
	}

	hostLink, err := client.LookupLinkByName("veth0")
	if err != nil {
		return Pair{}, &Error{Op: "lookup-kernel-assigned-peer", Err: err}
	}

	suffix, err := generate(7)
	if err != nil {
		return Pair{}, &Error{Op: "generate-host-name", Err: err}
	}
	hostName := "veth" + suffix

	hostLink, err = client.SetLinkName(hostLink, hostName)
	if err != nil {
		return Pair{}, &Error{Op: "rename-host-end", Err: err}
	}
	if err := client.SetLinkUp(hostLink); err != nil {
		return Pair{}, &Error{Op: "set-host-end-up", Err: err}
	}

	bridgeLink, err := client.LookupLinkByName(bridgeName)
	if err != nil {
		return Pair{}, &Error{Op: "lookup-bridge", Err: err}
	}
	if err := client.SetLinkMaster(hostLink, bridgeLink); err != nil {
		return Pair{}, &Error{Op: "attach-to-bridge", Err: err}
	}

	return Pair{HostName: hostName, PeerName: peerName}, nil
}

// MoveToNetns moves the named link into the network namespace of the
// process identified by pid. Must be called only after that process
// exists (post-clone), and before the container attempts to configure the
// peer — see the invariant in the data model.
func MoveToNetns(client netlinkclient.Client, peerName string, pid int) error {
	link, err := client.LookupLinkByName(peerName)
	if err != nil {
		return &Error{Op: "lookup-peer", Err: err}
	}
	if err := client.SetLinkNetnsPid(link, pid); err != nil {
		return &Error{Op: "move-to-netns", Err: err}
	}
	return nil
}

// SetupInContainer runs inside the container's network namespace (i.e. in
// the cloned child, after MoveToNetns has moved the peer link there). It brings up loopback, then binds cidr to peerName and brings
// that link up too.
func SetupInContainer(client netlinkclient.Client, peerName, cidr string) error {
	lo, err := client.LookupLinkByName("lo")
	if err != nil {
		return &Error{Op: "lookup-loopback", Err: err}
	}
	if err := client.SetLinkUp(lo); err != nil {
		return &Error{Op: "set-loopback-up", Err: err}
	}

	link, err := client.LookupLinkByName(peerName)
	if err != nil {
		return &Error{Op: "lookup-peer-in-container", Err: err}
	}
	if err := client.AddAddress(link, cidr); err != nil {
		return &Error{Op: "assign-address", Err: err}
	}
	if err := client.SetLinkUp(link); err != nil {
		return &Error{Op: "set-peer-up", Err: err}
	}
	return nil
}
