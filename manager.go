package truelicense

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
)

// ManagerParameters is the read-only view of a manager's configured
// parameters, exposed to callers via ConsumerLicenseManager.Parameters and
// VendorLicenseManager.Parameters.
type ManagerParameters struct {
	Authentication Authentication
	Encryption     Transformation
	FTPDays        int
}

// KeyGenerator is the lazy handle returned by GenerateKeyFrom: the effective
// license and the signed artifact are computed once, on first use, and
// reused by subsequent calls.
type KeyGenerator interface {
	License() (License, error)
	SaveTo(sink Sink) (KeyGenerator, error)
}

// VendorLicenseManager is the vendor side of the pipeline: it can mint
// signed license keys but has no store to install/load/verify/uninstall
// against.
type VendorLicenseManager interface {
	LicenseManager
	GenerateKeyFrom(bean License) (KeyGenerator, error)
	Parameters() ManagerParameters
}

// ConsumerLicenseManager is the consumer side: install, load, verify and
// uninstall a license key against a Store.
type ConsumerLicenseManager interface {
	LicenseManager
	Install(source Source) error
	Load() (License, error)
	Verify() error
	Uninstall() error
	Parameters() ManagerParameters
	Unchecked() UncheckedConsumerLicenseManager
}

// parameters is the internal manager-parameters bundle: required
// authentication, resolved encryption (own or inherited from parent),
// FTP window length, optional parent and store.
type parameters struct {
	authentication Authentication
	encryption     Transformation
	ftpDays        int
	parent         ConsumerLicenseManager
	store          Store
}

// initialization wraps ctx's initialization with the FTP countdown: when
// ftpDays > 0, notBefore is pinned to issued and notAfter is issued plus
// ftpDays calendar days, computed at generation time.
func (p *parameters) initialization(ctx *Context) LicenseInitialization {
	base := ctx.Initialization()
	if p.ftpDays <= 0 {
		return base
	}
	return LicenseInitializationFunc(func(bean *License) error {
		if err := base.Initialize(bean); err != nil {
			return err
		}
		notBefore := bean.Issued
		bean.NotBefore = &notBefore
		notAfter := bean.Issued.AddDate(0, 0, p.ftpDays)
		bean.NotAfter = &notAfter
		return nil
	})
}

// baseManager implements the install/load/verify/uninstall pipeline directly
// against params.store, with no caching and no parent fallback. It is the
// vendor manager as-is, and the innermost layer the caching and chained
// managers build on.
type baseManager struct {
	ctx    *Context
	params *parameters
}

func (m *baseManager) Context() *Context { return m.ctx }

func (m *baseManager) Parameters() ManagerParameters {
	return ManagerParameters{
		Authentication: m.params.authentication,
		Encryption:     m.params.encryption,
		FTPDays:        m.params.ftpDays,
	}
}

func (m *baseManager) store() Store { return m.params.store }

// GenerateKeyFrom is the vendor operation; it is also used internally by the
// chained manager's capability probe and free-trial generation.
func (m *baseManager) GenerateKeyFrom(bean License) (KeyGenerator, error) {
	if err := m.ctx.Authorization().ClearGenerate(m); err != nil {
		return nil, wrap(AuthorizationDenied, err)
	}
	return &keyGenerator{ctx: m.ctx, params: m.params, bean: bean}, nil
}

func (m *baseManager) Install(source Source) error {
	if err := m.ctx.Authorization().ClearInstall(m); err != nil {
		return wrap(AuthorizationDenied, err)
	}
	return m.installRaw(source)
}

func (m *baseManager) Load() (License, error) {
	if err := m.ctx.Authorization().ClearLoad(m); err != nil {
		return License{}, wrap(AuthorizationDenied, err)
	}
	return m.decodeLicenseRaw(m.store())
}

func (m *baseManager) Verify() error {
	if err := m.ctx.Authorization().ClearVerify(m); err != nil {
		return wrap(AuthorizationDenied, err)
	}
	return m.validateRaw(m.store())
}

func (m *baseManager) Uninstall() error {
	if err := m.ctx.Authorization().ClearUninstall(m); err != nil {
		return wrap(AuthorizationDenied, err)
	}
	// Authenticate the installed artifact before deleting it, so an
	// unauthenticated state is never reachable by uninstalling a tampered
	// store.
	if _, err := m.authenticateRaw(m.store()); err != nil {
		return err
	}
	if err := m.store().Delete(); err != nil {
		return wrap(StoreFailure, err)
	}
	return nil
}

func (m *baseManager) Unchecked() UncheckedConsumerLicenseManager {
	return uncheckedManager{checked: m}
}

// installRaw verifies source's signature (rejecting tampered or unsigned
// artifacts) and only then copies it into the store; authentication before
// persistence is mandatory.
func (m *baseManager) installRaw(source Source) error {
	if _, err := m.decodeLicenseRaw(source); err != nil {
		return err
	}
	return copyStream(source, m.store())
}

func (m *baseManager) authenticateRaw(source Source) (Decoder, error) {
	model, err := m.repositoryModel(source)
	if err != nil {
		return nil, err
	}
	rc := m.ctx.RepositoryContext().NewController(model, m.ctx.Codec())
	dec, err := m.params.authentication.Verify(rc)
	if err != nil {
		return nil, wrap(AuthenticationFailure, err)
	}
	return dec, nil
}

func (m *baseManager) decodeLicenseRaw(source Source) (License, error) {
	dec, err := m.authenticateRaw(source)
	if err != nil {
		return License{}, err
	}
	var bean License
	if err := dec.Decode(&bean); err != nil {
		return License{}, wrap(Unexpected, err)
	}
	return bean, nil
}

func (m *baseManager) validateRaw(source Source) error {
	bean, err := m.decodeLicenseRaw(source)
	if err != nil {
		return err
	}
	return m.ctx.Validation().Validate(bean)
}

// repositoryModel decrypts-then-decompresses source and decodes the
// repository model out of it. Failing to open source is a StoreFailure;
// failing to decrypt or decompress its bytes is an AuthenticationFailure.
func (m *baseManager) repositoryModel(source Source) (RepositoryModel, error) {
	raw, err := source.NewReader()
	if err != nil {
		return nil, wrap(StoreFailure, err)
	}
	r, err := AndThen(m.ctx.Compression(), m.params.encryption).WrapReader(raw)
	if err != nil {
		raw.Close()
		return nil, wrap(AuthenticationFailure, err)
	}
	defer r.Close()

	model := m.ctx.RepositoryContext().NewModel()
	if err := m.ctx.Codec().NewDecoder(r).Decode(model); err != nil {
		return nil, wrap(Unexpected, err)
	}
	return model, nil
}

// copyStream byte-copies source to sink verbatim (used to persist an
// already-verified artifact into the store).
func copyStream(source Source, sink Sink) error {
	r, err := source.NewReader()
	if err != nil {
		return wrap(StoreFailure, err)
	}
	defer r.Close()

	w, err := sink.NewWriter()
	if err != nil {
		return wrap(StoreFailure, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return wrap(StoreFailure, err)
	}
	if err := w.Close(); err != nil {
		return wrap(StoreFailure, err)
	}
	return nil
}

// keyGenerator implements KeyGenerator with a guarded, once-only init:
// duplicate (via codec round-trip) then initialize then validate then sign,
// exactly once, no matter how many times License or SaveTo are called.
type keyGenerator struct {
	ctx    *Context
	params *parameters
	bean   License

	once    sync.Once
	model   RepositoryModel
	decoder Decoder
	initErr error
}

func (g *keyGenerator) init() {
	g.once.Do(func() {
		var buf bytes.Buffer
		if err := g.ctx.Codec().NewEncoder(&buf).Encode(g.bean); err != nil {
			g.initErr = wrap(Unexpected, err)
			return
		}
		var duplicate License
		if err := g.ctx.Codec().NewDecoder(&buf).Decode(&duplicate); err != nil {
			g.initErr = wrap(Unexpected, err)
			return
		}

		if err := g.params.initialization(g.ctx).Initialize(&duplicate); err != nil {
			g.initErr = wrap(Unexpected, err)
			return
		}
		if err := g.ctx.Validation().Validate(duplicate); err != nil {
			g.initErr = err
			return
		}

		model := g.ctx.RepositoryContext().NewModel()
		rc := g.ctx.RepositoryContext().NewController(model, g.ctx.Codec())
		decoder, err := g.params.authentication.Sign(rc, duplicate)
		if err != nil {
			g.initErr = wrap(AuthenticationFailure, err)
			return
		}
		g.model = model
		g.decoder = decoder
		slog.Debug("truelicense: generated license key", "subject", duplicate.Subject, "holder", duplicate.Holder.String())
	})
}

func (g *keyGenerator) License() (License, error) {
	g.init()
	if g.initErr != nil {
		return License{}, g.initErr
	}
	var bean License
	if err := g.decoder.Decode(&bean); err != nil {
		return License{}, wrap(Unexpected, err)
	}
	return bean, nil
}

func (g *keyGenerator) SaveTo(sink Sink) (KeyGenerator, error) {
	g.init()
	if g.initErr != nil {
		return g, g.initErr
	}

	transform := AndThen(g.ctx.Compression(), g.params.encryption)
	mapped := MapSink(sink, transform)
	w, err := mapped.NewWriter()
	if err != nil {
		return g, wrap(StoreFailure, err)
	}
	if err := g.ctx.Codec().NewEncoder(w).Encode(g.model); err != nil {
		w.Close()
		return g, wrap(Unexpected, err)
	}
	if err := w.Close(); err != nil {
		return g, wrap(StoreFailure, err)
	}
	return g, nil
}
