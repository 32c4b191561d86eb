package truelicense

import (
	"io"
	"sync"
)

// chainedManager adds parent fallback and free-trial-period generation on
// top of a cachingManager. Every operation tries the parent first: Load and
// Verify only fall through to self, and then to minting a fresh free-trial
// license, once the parent has been consulted and failed. Install and
// Uninstall likewise delegate to the parent first, falling back to self only
// when this manager is not itself capable of generating keys.
type chainedManager struct {
	self   *cachingManager
	parent ConsumerLicenseManager
	ctx    *Context
	params *parameters

	genOnce sync.Once
	canGen  bool
	genErr  error
}

func (m *chainedManager) Context() *Context             { return m.ctx }
func (m *chainedManager) Parameters() ManagerParameters { return m.self.Parameters() }
func (m *chainedManager) Unchecked() UncheckedConsumerLicenseManager {
	return uncheckedManager{checked: m}
}

// Install delegates to the parent first. If the parent install fails and
// this manager can generate its own keys, the parent's failure is
// authoritative and is returned as-is; only a manager incapable of
// generating keys falls back to installing into its own store.
func (m *chainedManager) Install(source Source) error {
	if m.parent != nil {
		if err := m.parent.Install(source); err != nil {
			if canGen, _ := m.canGenerate(); canGen {
				return err
			}
			return m.self.Install(source)
		}
		return nil
	}
	return m.self.Install(source)
}

// Uninstall mirrors Install: parent first, self only as a fallback for a
// manager that cannot generate its own keys.
func (m *chainedManager) Uninstall() error {
	if m.parent != nil {
		if err := m.parent.Uninstall(); err != nil {
			if canGen, _ := m.canGenerate(); canGen {
				return err
			}
			return m.self.Uninstall()
		}
		return nil
	}
	return m.self.Uninstall()
}

// canGenerate latches whether this manager can generate keys at all, probed
// once and remembered for the manager's lifetime: the probe generates a key
// from the context's license factory and saves it to a sink that discards
// the bytes, so a missing private key, a denied authorization or a weak
// encryption password all latch false. Repeated failed loads do not re-probe.
func (m *chainedManager) canGenerate() (bool, error) {
	m.genOnce.Do(func() {
		bean := m.ctx.License()
		bean.Subject = m.ctx.Subject()
		gen, err := m.self.base.GenerateKeyFrom(bean)
		if err == nil {
			_, err = gen.SaveTo(discardSink{})
		}
		m.canGen = err == nil
		m.genErr = err
	})
	return m.canGen, m.genErr
}

// discardSink is a Sink whose writer drops everything written to it.
type discardSink struct{}

func (discardSink) NewWriter() (io.WriteCloser, error) { return discardSink{}, nil }
func (discardSink) Write(p []byte) (int, error)        { return len(p), nil }
func (discardSink) Close() error                       { return nil }

// generateIffNewFtp mints a free-trial license and installs it into self's
// store, but only if the store is still empty: a second caller that lost the
// race to populate the store must not overwrite whatever the winner
// installed. The caller must already hold store's lock.
func (m *chainedManager) generateIffNewFtp(store Store) error {
	exists, err := store.Exists()
	if err != nil {
		return wrap(StoreFailure, err)
	}
	if exists {
		return newError(ValidationFailure, "free trial period already used")
	}

	bean := m.ctx.License()
	bean.Subject = m.ctx.Subject()

	gen, err := m.self.base.GenerateKeyFrom(bean)
	if err != nil {
		return err
	}
	if _, err := gen.SaveTo(store); err != nil {
		return err
	}
	m.self.decoderCache.Clear()
	m.self.licenseCache.Clear()
	return nil
}

// Load tries the parent exactly once before ever touching self: return the
// parent's license if it has one, otherwise fall through to self, and only
// once both parent and an unlocked self attempt have failed, retry self
// under the store lock (to catch a concurrent winner) before minting a
// free-trial license as a last resort.
func (m *chainedManager) Load() (License, error) {
	if err := m.ctx.Authorization().ClearLoad(m); err != nil {
		return License{}, wrap(AuthorizationDenied, err)
	}

	if m.parent != nil {
		if lic, err := m.parent.Load(); err == nil {
			return lic, nil
		}
	}

	store := m.self.base.store()
	if lic, err := m.self.decodeLicense(store); err == nil {
		return lic, nil
	}

	store.Lock()
	defer store.Unlock()

	lic, thirdErr := m.self.decodeLicense(store)
	if thirdErr == nil {
		return lic, nil
	}

	canGen, _ := m.canGenerate()
	if !canGen {
		return License{}, thirdErr
	}
	if err := m.generateIffNewFtp(store); err != nil {
		return License{}, thirdErr
	}
	return m.self.decodeLicense(store)
}

// Verify mirrors Load's fallback order: parent, then self, then self again
// under the store lock, then a freshly generated free-trial license.
func (m *chainedManager) Verify() error {
	if err := m.ctx.Authorization().ClearVerify(m); err != nil {
		return wrap(AuthorizationDenied, err)
	}

	if m.parent != nil {
		if err := m.parent.Verify(); err == nil {
			return nil
		}
	}

	store := m.self.base.store()
	if err := m.self.validate(store); err == nil {
		return nil
	}

	store.Lock()
	defer store.Unlock()

	thirdErr := m.self.validate(store)
	if thirdErr == nil {
		return nil
	}

	canGen, _ := m.canGenerate()
	if !canGen {
		return thirdErr
	}
	if err := m.generateIffNewFtp(store); err != nil {
		return thirdErr
	}
	return m.self.validate(store)
}
