// Package ifname generates the random interface names the bring-up pipeline
// uses for veth peers. There is no dedicated random-string library in the
// Go container ecosystem examined here; CNI plugins solve the identical
// problem (a short collision-resistant device name) with crypto/rand
// directly — see Celebrum-containerz-plugin/pkg/ip.RandomVethName — so this
// follows that precedent rather than reaching for math/rand or inventing a
// helper.
package ifname

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generate returns a random string of n alphanumeric characters, suitable
// for an interface name component (the kernel caps whole interface names at
// 15 bytes, so callers are expected to keep any fixed prefix short).
func Generate(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("ifname: read entropy: %w", err)
	}

	out := make([]byte, n)
	for i, b := range raw {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
