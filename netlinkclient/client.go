//go:build linux

// Package netlinkclient is the seam between the runtime's bring-up pipeline
// and the rtnetlink wire protocol. The rest of the tree never imports
// vishvananda/netlink directly; it calls through the Client interface here,
// so bridge and veth provisioning stay testable against a fake.
package netlinkclient

import "errors"

// LinkKind names the kernel device type requested at creation time.
type LinkKind string

const (
	KindBridge LinkKind = "bridge"
	KindVeth   LinkKind = "veth"
)

// Link identifies a kernel network device by its namespace-stable index.
type Link struct {
	Index int
	Name  string
}

// ErrAlreadyExists is returned when the kernel reports EEXIST for a create
// operation. Callers treat it as idempotent success, never as a failure.
var ErrAlreadyExists = errors.New("netlinkclient: link already exists")

// Client is the exact set of rtnetlink operations the bring-up pipeline
// needs: RTM_NEWLINK-shaped creation, RTM_SETLINK-shaped mutation, and
// RTM_NEWADDR-shaped addressing. Every method returns ErrAlreadyExists (via
// errors.Is) for a duplicate-creation EEXIST and the raw, wrapped netlink
// error otherwise — there is no richer error taxonomy at this layer.
type Client interface {
	// CreateLink issues RTM_NEWLINK with NLM_F_CREATE|NLM_F_EXCL|NLM_F_ACK
	// for the given kind and interface name.
	CreateLink(kind LinkKind, name string) error

	// LookupLinkByName resolves a link by its current name.
	LookupLinkByName(name string) (Link, error)

	// SetLinkUp brings the given link to the administrative UP state.
	SetLinkUp(link Link) error

	// AddAddress binds a universe-scoped CIDR address to the given link.
	AddAddress(link Link, cidr string) error

	// SetLinkName issues RTM_SETLINK with IFLA_IFNAME and returns the link
	// under its new name.
	SetLinkName(link Link, newName string) (Link, error)

	// SetLinkMaster issues RTM_SETLINK with IFLA_MASTER, enslaving link to
	// master (e.g. attaching a veth host end to a bridge).
	SetLinkMaster(link, master Link) error

	// SetLinkNetnsPid issues RTM_SETLINK with IFLA_NET_NS_PID, moving link
	// into the network namespace of the process identified by pid. After
	// this call the link is no longer visible in the caller's namespace.
	SetLinkNetnsPid(link Link, pid int) error
}
