package truelicense

// buildAuthentication resolves p against ctx's configured
// AuthenticationFactory. This is shared by both manager builders below; the
// original's recursive AuthenticationBuilder/up() nesting is flattened here
// into a single parameters value passed directly to the factory, since Go's
// lack of self-referential generic bounds makes that recursion awkward to
// express and a plain struct literal says the same thing.
func buildAuthentication(ctx *Context, p AuthenticationParameters) (Authentication, error) {
	if ctx.authenticationFactory == nil {
		return nil, newError(ConfigError, "authenticationFactory is required")
	}
	if p.Alias == "" {
		return nil, newError(ConfigError, "authentication alias is required")
	}
	auth, err := ctx.authenticationFactory(p)
	if err != nil {
		return nil, wrap(ConfigError, err)
	}
	return auth, nil
}

// buildEncryption resolves p against ctx's configured EncryptionFactory,
// defaulting the algorithm to the context's configured default when p leaves
// it blank.
func buildEncryption(ctx *Context, p EncryptionParameters) (Transformation, error) {
	if ctx.encryptionFactory == nil {
		return nil, newError(ConfigError, "encryptionFactory is required")
	}
	if p.Algorithm == "" {
		p.Algorithm = ctx.encryptionAlgorithm
	}
	if p.Protection == nil {
		return nil, newError(ConfigError, "encryption password protection is required")
	}
	t, err := ctx.encryptionFactory(p)
	if err != nil {
		return nil, wrap(ConfigError, err)
	}
	return t, nil
}

// VendorManagerBuilder builds a VendorLicenseManager: the side that mints
// signed license keys. It has no store.
type VendorManagerBuilder struct {
	ctx        *Context
	authParams AuthenticationParameters
	encParams  EncryptionParameters
}

// NewVendorManagerBuilder starts a vendor manager builder over ctx.
func NewVendorManagerBuilder(ctx *Context) *VendorManagerBuilder {
	return &VendorManagerBuilder{ctx: ctx}
}

func (b *VendorManagerBuilder) Authentication(p AuthenticationParameters) *VendorManagerBuilder {
	b.authParams = p
	return b
}

func (b *VendorManagerBuilder) Encryption(p EncryptionParameters) *VendorManagerBuilder {
	b.encParams = p
	return b
}

// Build validates and assembles the vendor manager.
func (b *VendorManagerBuilder) Build() (VendorLicenseManager, error) {
	if b.ctx == nil {
		return nil, newError(ConfigError, "context is required")
	}
	if b.authParams.KeyProtection != nil {
		b.authParams.KeyProtection = newCheckedPasswordProtection(b.ctx.passwordPolicy, b.authParams.KeyProtection)
	}
	auth, err := buildAuthentication(b.ctx, b.authParams)
	if err != nil {
		return nil, err
	}
	if b.encParams.Protection != nil {
		b.encParams.Protection = newCheckedPasswordProtection(b.ctx.passwordPolicy, b.encParams.Protection)
	}
	enc, err := buildEncryption(b.ctx, b.encParams)
	if err != nil {
		return nil, err
	}
	return &baseManager{ctx: b.ctx, params: &parameters{authentication: auth, encryption: enc}}, nil
}

// ConsumerManagerBuilder builds a ConsumerLicenseManager: install, load,
// verify and uninstall against a Store, with caching always on and parent
// fallback/free-trial generation enabled by setting Parent and FTPDays.
type ConsumerManagerBuilder struct {
	ctx        *Context
	authParams AuthenticationParameters
	encParams  EncryptionParameters
	store      Store
	ftpDays    int
	parent     ConsumerLicenseManager
}

// NewConsumerManagerBuilder starts a consumer manager builder over ctx.
func NewConsumerManagerBuilder(ctx *Context) *ConsumerManagerBuilder {
	return &ConsumerManagerBuilder{ctx: ctx}
}

func (b *ConsumerManagerBuilder) Authentication(p AuthenticationParameters) *ConsumerManagerBuilder {
	b.authParams = p
	return b
}

func (b *ConsumerManagerBuilder) Encryption(p EncryptionParameters) *ConsumerManagerBuilder {
	b.encParams = p
	return b
}

func (b *ConsumerManagerBuilder) Store(store Store) *ConsumerManagerBuilder {
	b.store = store
	return b
}

// FTPDays turns on free-trial-period generation: when this manager and its
// parent both fail to produce an installed, valid license, it mints one
// valid from issue time for the given number of calendar days. Zero (the
// default) disables free-trial generation.
func (b *ConsumerManagerBuilder) FTPDays(days int) *ConsumerManagerBuilder {
	b.ftpDays = days
	return b
}

// Parent sets the upstream ConsumerLicenseManager consulted when this
// manager's own store holds no valid license.
func (b *ConsumerManagerBuilder) Parent(parent ConsumerLicenseManager) *ConsumerManagerBuilder {
	b.parent = parent
	return b
}

// Build validates and assembles the consumer manager: a plain caching
// manager if neither Parent nor FTPDays was set, or a chained manager
// wrapping it otherwise.
func (b *ConsumerManagerBuilder) Build() (ConsumerLicenseManager, error) {
	if b.ctx == nil {
		return nil, newError(ConfigError, "context is required")
	}
	if b.store == nil {
		return nil, newError(ConfigError, "store is required")
	}
	if b.authParams.StoreProtection != nil {
		b.authParams.StoreProtection = newCheckedPasswordProtection(b.ctx.passwordPolicy, b.authParams.StoreProtection)
	}
	auth, err := buildAuthentication(b.ctx, b.authParams)
	if err != nil {
		return nil, err
	}

	var enc Transformation
	if b.encParams.Protection == nil && b.parent != nil {
		// No encryption configured of our own: inherit the parent's, since a
		// chained consumer typically shares one key-protection scheme across
		// the whole fallback chain.
		enc = b.parent.Parameters().Encryption
	} else {
		encParams := b.encParams
		if encParams.Protection != nil {
			encParams.Protection = newCheckedPasswordProtection(b.ctx.passwordPolicy, encParams.Protection)
		}
		enc, err = buildEncryption(b.ctx, encParams)
		if err != nil {
			return nil, err
		}
	}

	params := &parameters{
		authentication: auth,
		encryption:     enc,
		ftpDays:        b.ftpDays,
		parent:         b.parent,
		store:          b.store,
	}
	cm := newCachingManager(b.ctx, params)
	if b.parent == nil && b.ftpDays == 0 {
		// No fallback and no free-trial generation: a plain caching manager
		// covers the full contract, so don't pay for the chained manager's
		// extra capability probe and generate-on-miss logic.
		return cm, nil
	}
	return &chainedManager{self: cm, parent: b.parent, ctx: b.ctx, params: params}, nil
}
