package truelicense

import "time"

const defaultCachePeriod = 30 * time.Minute

// Context is the immutable, shared bundle of collaborators (codec,
// compression, encryption, authentication, clock, policy) every
// manager needs. Build one with NewContextBuilder; every manager built from
// it shares this single instance.
type Context struct {
	codec                  Codec
	compression            Transformation
	encryptionAlgorithm    string
	encryptionFactory      EncryptionFactory
	licenseFactory         func() License
	repositoryContext      RepositoryContext
	keystoreType           string
	subject                string
	initialization         LicenseInitialization // user-supplied "first", may be nil
	initializationMode     CompositionMode
	validation             LicenseValidation // user-supplied "first", may be nil
	validationMode         CompositionMode
	authenticationFactory  AuthenticationFactory
	passwordPolicy         PasswordPolicy
	clock                  Clock
	authorization          LicenseManagementAuthorization
	cachePeriod            time.Duration
}

// Initialization returns the effective LicenseInitialization: the built-in
// default, composed with any user-supplied hook per the configured mode.
func (c *Context) Initialization() LicenseInitialization {
	builtin := DefaultInitialization{ctx: c}
	if c.initialization == nil {
		return builtin
	}
	return composeInitialization(c.initialization, builtin, c.initializationMode)
}

// Validation returns the effective LicenseValidation, analogous to
// Initialization.
func (c *Context) Validation() LicenseValidation {
	builtin := DefaultValidation{ctx: c}
	if c.validation == nil {
		return builtin
	}
	return composeValidation(c.validation, builtin, c.validationMode)
}

// License returns a fresh bean from the configured license factory.
func (c *Context) License() License { return c.licenseFactory() }

// Now reads the configured Clock.
func (c *Context) Now() time.Time { return c.clock.Now() }

// Subject returns the configured product identifier.
func (c *Context) Subject() string { return c.subject }

// CachePeriod returns the configured cache TTL.
func (c *Context) CachePeriod() time.Duration { return c.cachePeriod }

// Authorization returns the configured authorization gate.
func (c *Context) Authorization() LicenseManagementAuthorization { return c.authorization }

// Codec returns the configured codec.
func (c *Context) Codec() Codec { return c.codec }

// Compression returns the configured compression transformation.
func (c *Context) Compression() Transformation { return c.compression }

// RepositoryContext returns the configured repository context.
func (c *Context) RepositoryContext() RepositoryContext { return c.repositoryContext }

// ContextBuilder fluently configures a Context. Build fails with a
// ConfigError-kind *Error if a required field is missing or invalid (spec
// §4.1).
type ContextBuilder struct {
	c                      Context
	codecSet               bool
	compressionSet         bool
	encryptionFactorySet   bool
	licenseFactorySet      bool
	repositoryContextSet   bool
}

// NewContextBuilder returns a builder pre-loaded with sensible defaults:
// minimum-strength password policy, wall clock, permit-all authorization,
// 30 minute cache period, and a license factory returning a bean with
// ConsumerAmount 1.
func NewContextBuilder() *ContextBuilder {
	b := &ContextBuilder{}
	b.c.passwordPolicy = MinimumPasswordPolicy{}
	b.c.clock = SystemClock{}
	b.c.authorization = PermitAllAuthorization{}
	b.c.cachePeriod = defaultCachePeriod
	b.c.initializationMode = Decorate
	b.c.validationMode = Decorate
	b.c.licenseFactory = func() License { return License{ConsumerAmount: 1} }
	b.licenseFactorySet = true
	return b
}

func (b *ContextBuilder) Codec(codec Codec) *ContextBuilder {
	b.c.codec = codec
	b.codecSet = codec != nil
	return b
}

func (b *ContextBuilder) Compression(t Transformation) *ContextBuilder {
	b.c.compression = t
	b.compressionSet = t != nil
	return b
}

func (b *ContextBuilder) EncryptionAlgorithm(algorithm string) *ContextBuilder {
	b.c.encryptionAlgorithm = algorithm
	return b
}

func (b *ContextBuilder) EncryptionFactory(f EncryptionFactory) *ContextBuilder {
	b.c.encryptionFactory = f
	b.encryptionFactorySet = f != nil
	return b
}

func (b *ContextBuilder) LicenseFactory(f func() License) *ContextBuilder {
	if f == nil {
		b.c.licenseFactory = func() License { return License{ConsumerAmount: 1} }
		b.licenseFactorySet = true
		return b
	}
	b.c.licenseFactory = f
	b.licenseFactorySet = true
	return b
}

func (b *ContextBuilder) RepositoryContext(rc RepositoryContext) *ContextBuilder {
	b.c.repositoryContext = rc
	b.repositoryContextSet = rc != nil
	return b
}

func (b *ContextBuilder) KeystoreType(keystoreType string) *ContextBuilder {
	b.c.keystoreType = keystoreType
	return b
}

func (b *ContextBuilder) Subject(subject string) *ContextBuilder {
	b.c.subject = subject
	return b
}

func (b *ContextBuilder) Initialization(init LicenseInitialization) *ContextBuilder {
	b.c.initialization = init
	return b
}

func (b *ContextBuilder) InitializationComposition(mode CompositionMode) *ContextBuilder {
	b.c.initializationMode = mode
	return b
}

func (b *ContextBuilder) Validation(v LicenseValidation) *ContextBuilder {
	b.c.validation = v
	return b
}

func (b *ContextBuilder) ValidationComposition(mode CompositionMode) *ContextBuilder {
	b.c.validationMode = mode
	return b
}

func (b *ContextBuilder) AuthenticationFactory(f AuthenticationFactory) *ContextBuilder {
	b.c.authenticationFactory = f
	return b
}

func (b *ContextBuilder) PasswordPolicy(p PasswordPolicy) *ContextBuilder {
	if p == nil {
		p = MinimumPasswordPolicy{}
	}
	b.c.passwordPolicy = p
	return b
}

func (b *ContextBuilder) Clock(clock Clock) *ContextBuilder {
	if clock == nil {
		clock = SystemClock{}
	}
	b.c.clock = clock
	return b
}

func (b *ContextBuilder) Authorization(a LicenseManagementAuthorization) *ContextBuilder {
	if a == nil {
		a = PermitAllAuthorization{}
	}
	b.c.authorization = a
	return b
}

// CachePeriod sets the cache TTL. A negative duration fails Build with a
// ConfigError.
func (b *ContextBuilder) CachePeriod(d time.Duration) *ContextBuilder {
	b.c.cachePeriod = d
	return b
}

// Build validates required fields and returns the immutable Context.
func (b *ContextBuilder) Build() (*Context, error) {
	if !b.codecSet {
		return nil, newError(ConfigError, "codec is required")
	}
	if !b.compressionSet {
		return nil, newError(ConfigError, "compression is required")
	}
	if b.c.encryptionAlgorithm == "" {
		return nil, newError(ConfigError, "encryptionAlgorithm is required and must be non-empty")
	}
	if !b.encryptionFactorySet {
		return nil, newError(ConfigError, "encryptionFactory is required")
	}
	if !b.repositoryContextSet {
		return nil, newError(ConfigError, "repositoryContext is required")
	}
	if b.c.keystoreType == "" {
		return nil, newError(ConfigError, "keystoreType is required and must be non-empty")
	}
	if b.c.subject == "" {
		return nil, newError(ConfigError, "subject is required and must be non-empty")
	}
	if b.c.cachePeriod < 0 {
		return nil, newError(ConfigError, "cachePeriodMillis must not be negative")
	}

	c := b.c // copy out of the builder so later mutation of b cannot reach the Context
	return &c, nil
}
