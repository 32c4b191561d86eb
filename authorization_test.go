package truelicense

import (
	"testing"

	"github.com/zzq1314zll/truelicense/aesgcm"
	"github.com/zzq1314zll/truelicense/deflate"
	"github.com/zzq1314zll/truelicense/jsoncodec"
	"github.com/zzq1314zll/truelicense/notary"
)

type denyGenerateAuthorization struct{ PermitAllAuthorization }

func (denyGenerateAuthorization) ClearGenerate(LicenseManager) error {
	return newError(AuthorizationDenied, "license generation is disabled in this deployment")
}

func TestAuthorizationDenialBlocksGenerate(t *testing.T) {
	ctx, err := NewContextBuilder().
		Codec(jsoncodec.New()).
		Compression(deflate.New()).
		EncryptionAlgorithm("AES-256-GCM").
		EncryptionFactory(aesgcm.New).
		RepositoryContext(DefaultRepositoryContext{}).
		KeystoreType("jwk").
		Subject("acme-widgets").
		AuthenticationFactory(notary.New).
		Authorization(denyGenerateAuthorization{}).
		Build()
	if err != nil {
		t.Fatalf("building context: %v", err)
	}
	vendor := testVendor(t, ctx, nil)

	if _, err := vendor.GenerateKeyFrom(License{ConsumerAmount: 1}); !IsKind(err, AuthorizationDenied) {
		t.Errorf("kind = %v, want AuthorizationDenied", Cause(err))
	}
}

func TestPermitAllAuthorizationClearsEverything(t *testing.T) {
	a := PermitAllAuthorization{}
	if err := a.ClearGenerate(nil); err != nil {
		t.Errorf("ClearGenerate: %v", err)
	}
	if err := a.ClearInstall(nil); err != nil {
		t.Errorf("ClearInstall: %v", err)
	}
	if err := a.ClearLoad(nil); err != nil {
		t.Errorf("ClearLoad: %v", err)
	}
	if err := a.ClearVerify(nil); err != nil {
		t.Errorf("ClearVerify: %v", err)
	}
	if err := a.ClearUninstall(nil); err != nil {
		t.Errorf("ClearUninstall: %v", err)
	}
}
