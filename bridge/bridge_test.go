//go:build linux

package bridge

import (
	"errors"
	"testing"

	"github.com/rabbitstack/rabbitc/netlinkclient"
)

func TestEnsureCreatesAndAddressesNewBridge(t *testing.T) {
	client := netlinkclient.NewFake()

	id, err := Ensure(client, "rabbitc0", "172.19.0.1/16")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if id.Name != "rabbitc0" || id.CIDR != "172.19.0.1/16" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	wantCalls := []string{
		"CreateLink:bridge:rabbitc0",
		"LookupLinkByName:rabbitc0",
		"SetLinkUp:rabbitc0",
		"AddAddress:rabbitc0:172.19.0.1/16",
	}
	assertCalls(t, client.Calls, wantCalls)
}

func TestEnsureReusesExistingBridgeWithoutReaddressing(t *testing.T) {
	client := netlinkclient.NewFake()
	client.Seed("rabbitc0")
	client.CreateErr["rabbitc0"] = netlinkclient.ErrAlreadyExists

	id, err := Ensure(client, "rabbitc0", "172.19.0.1/16")
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if id.CIDR != "" {
		t.Fatalf("expected no re-address on reuse, got CIDR %q", id.CIDR)
	}
	for _, call := range client.Calls {
		if call == "AddAddress:rabbitc0:172.19.0.1/16" {
			t.Fatalf("unexpected re-address call on reuse: %v", client.Calls)
		}
	}
}

func TestEnsurePropagatesOtherNetlinkErrors(t *testing.T) {
	client := netlinkclient.NewFake()
	boom := errors.New("boom")
	client.CreateErr["rabbitc0"] = boom

	_, err := Ensure(client, "rabbitc0", "172.19.0.1/16")
	if err == nil {
		t.Fatal("expected Ensure() to fail")
	}
	var creationErr *CreationError
	if !errors.As(err, &creationErr) {
		t.Fatalf("expected *CreationError, got %T: %v", err, err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error to unwrap to boom, got %v", err)
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
