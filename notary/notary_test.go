package notary

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"testing"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/zzq1314zll/truelicense"
	"github.com/zzq1314zll/truelicense/jsoncodec"
)

type staticSource struct{ data []byte }

func (s staticSource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func jwkKeystore(t *testing.T, alias string) truelicense.Source {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating RSA key: %v", err)
	}
	key, err := jwk.Import(priv)
	if err != nil {
		t.Fatalf("jwk.Import: %v", err)
	}
	if err := key.Set(jwk.KeyIDKey, alias); err != nil {
		t.Fatalf("setting kid: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		t.Fatalf("AddKey: %v", err)
	}
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshaling JWK set: %v", err)
	}
	return staticSource{data: data}
}

func newController() truelicense.RepositoryController {
	rc := truelicense.DefaultRepositoryContext{}
	return rc.NewController(rc.NewModel(), jsoncodec.New())
}

func TestEphemeralNotarySignsAndVerifies(t *testing.T) {
	notary, err := New(truelicense.AuthenticationParameters{Alias: "vendor"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rc := newController()
	bean := truelicense.License{Subject: "acme-widgets"}
	if _, err := notary.Sign(rc, bean); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	dec, err := notary.Verify(rc)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	var out truelicense.License
	if err := dec.Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Subject != bean.Subject {
		t.Errorf("Subject = %q, want %q", out.Subject, bean.Subject)
	}
}

func TestEphemeralNotaryAssignsAliasWhenUnset(t *testing.T) {
	n, err := New(truelicense.AuthenticationParameters{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.(*Notary).alias == "" {
		t.Error("expected a non-empty generated alias")
	}
}

func TestSharedJWKKeystoreVerifiesAcrossInstances(t *testing.T) {
	keystore := jwkKeystore(t, "vendor")

	signer, err := New(truelicense.AuthenticationParameters{Alias: "vendor", Source: keystore})
	if err != nil {
		t.Fatalf("building signer notary: %v", err)
	}
	verifier, err := New(truelicense.AuthenticationParameters{Alias: "vendor", Source: keystore})
	if err != nil {
		t.Fatalf("building verifier notary: %v", err)
	}

	rc := newController()
	if _, err := signer.Sign(rc, truelicense.License{Subject: "acme-widgets"}); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := verifier.Verify(rc); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	keystore := jwkKeystore(t, "vendor")
	signer, err := New(truelicense.AuthenticationParameters{Alias: "vendor", Source: keystore})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rc := newController()
	if _, err := signer.Sign(rc, truelicense.License{Subject: "acme-widgets"}); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	rc.Model().SetPayload(append(rc.Model().Payload(), 'x'))

	if _, err := signer.Verify(rc); err == nil {
		t.Fatal("expected verification to fail for a tampered payload")
	}
}

func TestUnknownAliasRejected(t *testing.T) {
	keystore := jwkKeystore(t, "vendor")
	if _, err := New(truelicense.AuthenticationParameters{Alias: "nope", Source: keystore}); err == nil {
		t.Fatal("expected an error for an alias not present in the keystore")
	}
}

func TestUnknownAlgorithmRejected(t *testing.T) {
	if _, err := New(truelicense.AuthenticationParameters{Alias: "vendor", Algorithm: "not-a-real-alg"}); err == nil {
		t.Fatal("expected an error for an unrecognized signature algorithm")
	}
}
