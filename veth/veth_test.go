//go:build linux

package veth

import (
	"errors"
	"testing"

	"github.com/rabbitstack/rabbitc/netlinkclient"
)

func fixedName(n int) (string, error) {
	return "ab12cd3"[:n], nil
}

func TestCreatePairRenamesKernelAssignedPeerAndAttachesBridge(t *testing.T) {
	client := netlinkclient.NewFake()
	client.Seed("rabbitc0")

	pair, err := CreatePair(client, "ctr0", "rabbitc0", fixedName)
	if err != nil {
		t.Fatalf("CreatePair() error = %v", err)
	}
	if pair.HostName != "vethab12cd3" {
		t.Fatalf("unexpected host name: %q", pair.HostName)
	}
	if pair.PeerName != "ctr0" {
		t.Fatalf("unexpected peer name: %q", pair.PeerName)
	}

	wantCalls := []string{
		"CreateLink:veth:ctr0",
		"LookupLinkByName:veth0",
		"SetLinkName:veth0->vethab12cd3",
		"SetLinkUp:vethab12cd3",
		"LookupLinkByName:rabbitc0",
		"SetLinkMaster:vethab12cd3->rabbitc0",
	}
	assertCalls(t, client.Calls, wantCalls)
}

func TestCreatePairPropagatesCreateFailure(t *testing.T) {
	client := netlinkclient.NewFake()
	boom := errors.New("boom")
	client.CreateErr["ctr0"] = boom

	_, err := CreatePair(client, "ctr0", "rabbitc0", fixedName)
	if err == nil {
		t.Fatal("expected CreatePair() to fail")
	}
	var verr *Error
	if !errors.As(err, &verr) || verr.Op != "create-pair" {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestMoveToNetnsLooksUpThenMoves(t *testing.T) {
	client := netlinkclient.NewFake()
	client.Seed("vethab12cd3")

	if err := MoveToNetns(client, "vethab12cd3", 4242); err != nil {
		t.Fatalf("MoveToNetns() error = %v", err)
	}

	wantCalls := []string{
		"LookupLinkByName:vethab12cd3",
		"SetLinkNetnsPid:vethab12cd3",
	}
	assertCalls(t, client.Calls, wantCalls)
}

func TestMoveToNetnsPropagatesLookupFailure(t *testing.T) {
	client := netlinkclient.NewFake()

	err := MoveToNetns(client, "ghost0", 4242)
	if err == nil {
		t.Fatal("expected MoveToNetns() to fail")
	}
	var verr *Error
	if !errors.As(err, &verr) || verr.Op != "lookup-peer" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetupInContainerBringsUpLoopbackThenAddressesPeer(t *testing.T) {
	client := netlinkclient.NewFake()
	client.Seed("lo")
	client.Seed("ctr0")

	if err := SetupInContainer(client, "ctr0", "172.19.0.2/16"); err != nil {
		t.Fatalf("SetupInContainer() error = %v", err)
	}

	wantCalls := []string{
		"LookupLinkByName:lo",
		"SetLinkUp:lo",
		"LookupLinkByName:ctr0",
		"AddAddress:ctr0:172.19.0.2/16",
		"SetLinkUp:ctr0",
	}
	assertCalls(t, client.Calls, wantCalls)
}

func TestSetupInContainerPropagatesMissingPeer(t *testing.T) {
	client := netlinkclient.NewFake()
	client.Seed("lo")

	err := SetupInContainer(client, "ctr0", "172.19.0.2/16")
	if err == nil {
		t.Fatal("expected SetupInContainer() to fail")
	}
	var verr *Error
	if !errors.As(err, &verr) || verr.Op != "lookup-peer-in-container" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("call count mismatch: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}
