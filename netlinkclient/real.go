//go:build linux

package netlinkclient

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/vishvananda/netlink"
)

type realClient struct{}

// New returns the production Client, backed by vishvananda/netlink.
func New() Client {
	return realClient{}
}

func (realClient) CreateLink(kind LinkKind, name string) error {
	var link netlink.Link

	switch kind {
	case KindBridge:
		link = &netlink.Bridge{LinkAttrs: netlink.LinkAttrs{Name: name}}
	case KindVeth:
		// Deliberately leaves PeerName unset: the kernel assigns the
		// other end the default "veth0" name, matching the runtime's
		// known veth-naming wart (only one endpoint is named here).
		link = &netlink.Veth{LinkAttrs: netlink.LinkAttrs{Name: name}}
	default:
		return fmt.Errorf("netlinkclient: unsupported link kind %q", kind)
	}

	return classify(netlink.LinkAdd(link))
}

func (realClient) LookupLinkByName(name string) (Link, error) {
	l, err := netlink.LinkByName(name)
	if err != nil {
		return Link{}, classify(err)
	}
	return toLink(l), nil
}

func (realClient) SetLinkUp(link Link) error {
	l, err := netlink.LinkByIndex(link.Index)
	if err != nil {
		return classify(err)
	}
	return classify(netlink.LinkSetUp(l))
}

func (realClient) AddAddress(link Link, cidr string) error {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("netlinkclient: parse cidr %q: %w", cidr, err)
	}

	l, err := netlink.LinkByIndex(link.Index)
	if err != nil {
		return classify(err)
	}

	addr := &netlink.Addr{
		IPNet: &net.IPNet{IP: ip, Mask: ipNet.Mask},
		Scope: int(netlink.SCOPE_UNIVERSE),
	}
	return classify(netlink.AddrAdd(l, addr))
}

func (realClient) SetLinkName(link Link, newName string) (Link, error) {
	l, err := netlink.LinkByIndex(link.Index)
	if err != nil {
		return Link{}, classify(err)
	}
	if err := netlink.LinkSetName(l, newName); err != nil {
		return Link{}, classify(err)
	}
	return Link{Index: link.Index, Name: newName}, nil
}

func (realClient) SetLinkMaster(link, master Link) error {
	l, err := netlink.LinkByIndex(link.Index)
	if err != nil {
		return classify(err)
	}
	m, err := netlink.LinkByIndex(master.Index)
	if err != nil {
		return classify(err)
	}
	return classify(netlink.LinkSetMaster(l, m))
}

func (realClient) SetLinkNetnsPid(link Link, pid int) error {
	l, err := netlink.LinkByIndex(link.Index)
	if err != nil {
		return classify(err)
	}
	return classify(netlink.LinkSetNsPid(l, pid))
}

func toLink(l netlink.Link) Link {
	return Link{Index: l.Attrs().Index, Name: l.Attrs().Name}
}

// classify maps a kernel EEXIST (surfaced by vishvananda/netlink either as
// os.ErrExist or the bare syscall errno) to ErrAlreadyExists, and passes
// every other error through wrapped but otherwise untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrExist) {
		return ErrAlreadyExists
	}
	return fmt.Errorf("netlinkclient: %w", err)
}
