//go:build linux

package netlinkclient

// Fake is an in-memory Client for tests that exercise bridge/veth logic
// without a real rtnetlink socket or root privileges. Calls are recorded in
// order for assertions; per-name error injection lets tests drive the
// already-exists and generic-failure branches deliberately.
type Fake struct {
	Calls []string

	// CreateErr, keyed by link name, is returned by CreateLink instead of
	// succeeding.
	CreateErr map[string]error

	links  map[string]Link
	nextIx int
}

// NewFake returns a ready-to-use Fake with no pre-seeded links.
func NewFake() *Fake {
	return &Fake{
		CreateErr: make(map[string]error),
		links:     make(map[string]Link),
	}
}

// Seed pre-registers a link, as if it had already been created out of band
// (e.g. a bridge from a prior run).
func (f *Fake) Seed(name string) Link {
	f.nextIx++
	l := Link{Index: f.nextIx, Name: name}
	f.links[name] = l
	return l
}

func (f *Fake) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *Fake) CreateLink(kind LinkKind, name string) error {
	f.record("CreateLink:" + string(kind) + ":" + name)
	if err, ok := f.CreateErr[name]; ok {
		return err
	}
	if _, exists := f.links[name]; exists {
		return ErrAlreadyExists
	}
	f.nextIx++
	f.links[name] = Link{Index: f.nextIx, Name: name}
	if kind == KindVeth {
		// Like the kernel, give the unnamed other end the default "veth0".
		if _, exists := f.links["veth0"]; !exists {
			f.nextIx++
			f.links["veth0"] = Link{Index: f.nextIx, Name: "veth0"}
		}
	}
	return nil
}

func (f *Fake) LookupLinkByName(name string) (Link, error) {
	f.record("LookupLinkByName:" + name)
	l, ok := f.links[name]
	if !ok {
		return Link{}, errNotFound(name)
	}
	return l, nil
}

func (f *Fake) SetLinkUp(link Link) error {
	f.record("SetLinkUp:" + link.Name)
	return nil
}

func (f *Fake) AddAddress(link Link, cidr string) error {
	f.record("AddAddress:" + link.Name + ":" + cidr)
	return nil
}

func (f *Fake) SetLinkName(link Link, newName string) (Link, error) {
	f.record("SetLinkName:" + link.Name + "->" + newName)
	delete(f.links, link.Name)
	renamed := Link{Index: link.Index, Name: newName}
	f.links[newName] = renamed
	return renamed, nil
}

func (f *Fake) SetLinkMaster(link, master Link) error {
	f.record("SetLinkMaster:" + link.Name + "->" + master.Name)
	return nil
}

func (f *Fake) SetLinkNetnsPid(link Link, pid int) error {
	f.record("SetLinkNetnsPid:" + link.Name)
	delete(f.links, link.Name)
	return nil
}

type notFoundError string

func (e notFoundError) Error() string { return "netlinkclient: link not found: " + string(e) }

func errNotFound(name string) error { return notFoundError(name) }
