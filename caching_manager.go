package truelicense

import "github.com/zzq1314zll/truelicense/internal/cache"

// cachingManager wraps a baseManager with a pair of source-keyed cache
// cells: one memoizing the verified Decoder, one memoizing the decoded
// License. A successful Install republishes both under the store's own
// identity so a subsequent Load/Verify against the store hits the cache
// immediately instead of re-authenticating bytes it just wrote.
type cachingManager struct {
	base *baseManager

	decoderCache *cache.Cell[Source, Decoder]
	licenseCache *cache.Cell[Source, License]
}

func newCachingManager(ctx *Context, params *parameters) *cachingManager {
	return &cachingManager{
		base:         &baseManager{ctx: ctx, params: params},
		decoderCache: cache.NewCell[Source, Decoder](),
		licenseCache: cache.NewCell[Source, License](),
	}
}

func (m *cachingManager) Context() *Context             { return m.base.ctx }
func (m *cachingManager) Parameters() ManagerParameters { return m.base.Parameters() }
func (m *cachingManager) Unchecked() UncheckedConsumerLicenseManager {
	return uncheckedManager{checked: m}
}

// authenticate is authenticateRaw with a cache in front, keyed by source
// identity: a fresh cell entry for source is returned as-is, otherwise the
// authentication is recomputed and the cell replaced.
func (m *cachingManager) authenticate(source Source) (Decoder, error) {
	if dec, ok := m.decoderCache.Lookup(source); ok {
		return dec, nil
	}
	dec, err := m.base.authenticateRaw(source)
	if err != nil {
		return nil, err
	}
	m.decoderCache.Store(source, dec, m.base.ctx.CachePeriod())
	return dec, nil
}

func (m *cachingManager) decodeLicense(source Source) (License, error) {
	if bean, ok := m.licenseCache.Lookup(source); ok {
		return bean, nil
	}
	dec, err := m.authenticate(source)
	if err != nil {
		return License{}, err
	}
	var bean License
	if err := dec.Decode(&bean); err != nil {
		return License{}, wrap(Unexpected, err)
	}
	m.licenseCache.Store(source, bean, m.base.ctx.CachePeriod())
	return bean, nil
}

func (m *cachingManager) validate(source Source) error {
	bean, err := m.decodeLicense(source)
	if err != nil {
		return err
	}
	return m.base.ctx.Validation().Validate(bean)
}

func (m *cachingManager) Install(source Source) error {
	if err := m.base.ctx.Authorization().ClearInstall(m); err != nil {
		return wrap(AuthorizationDenied, err)
	}
	store := m.base.store()
	store.Lock()
	defer store.Unlock()

	if _, err := m.decodeLicense(source); err != nil {
		return err
	}
	if err := copyStream(source, store); err != nil {
		return err
	}
	// The bytes now at rest under store are exactly those just verified
	// under source's identity; carry the cached decoder/license forward
	// instead of re-authenticating what was just installed.
	m.decoderCache.Rekey(source, store)
	m.licenseCache.Rekey(source, store)
	return nil
}

func (m *cachingManager) Load() (License, error) {
	if err := m.base.ctx.Authorization().ClearLoad(m); err != nil {
		return License{}, wrap(AuthorizationDenied, err)
	}
	return m.decodeLicense(m.base.store())
}

func (m *cachingManager) Verify() error {
	if err := m.base.ctx.Authorization().ClearVerify(m); err != nil {
		return wrap(AuthorizationDenied, err)
	}
	return m.validate(m.base.store())
}

func (m *cachingManager) Uninstall() error {
	if err := m.base.ctx.Authorization().ClearUninstall(m); err != nil {
		return wrap(AuthorizationDenied, err)
	}
	store := m.base.store()
	store.Lock()
	defer store.Unlock()

	if _, err := m.authenticate(store); err != nil {
		return err
	}
	if err := store.Delete(); err != nil {
		return wrap(StoreFailure, err)
	}
	m.decoderCache.Clear()
	m.licenseCache.Clear()
	return nil
}
