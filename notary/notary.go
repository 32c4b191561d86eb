// Package notary is the default truelicense.Authentication: RSA signing and
// verification of the repository payload via JWS (detached payload) using
// github.com/lestrrat-go/jwx/v3. When no keystore source is supplied, it
// generates a fresh in-process RSA keypair for ephemeral signing and
// verification.
package notary

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/pkg/errors"

	"github.com/zzq1314zll/truelicense"
)

const defaultAlgorithm = "RS256"

// Notary implements truelicense.Authentication over an RSA keypair. A
// verify-only Notary (no private key — the shape of a consumer-only
// deployment) returns an error from Sign, which the license manager reports
// as an AuthenticationFailure.
type Notary struct {
	alias      string
	algorithm  jwa.SignatureAlgorithm
	privateKey *rsa.PrivateKey // nil for a verify-only (consumer) notary
	publicKey  *rsa.PublicKey
}

// New builds a Notary from AuthenticationParameters, matching
// truelicense.AuthenticationFactory. When params.Source is nil, a fresh
// RSA-2048 keypair is generated in-process (suitable for tests and for a
// chained manager's "can I generate?" probe). When params.Source is set,
// it is read as a JSON JWK Set (params.StoreType is not consulted) and the
// key is selected by params.Alias acting as the JWK's "kid".
func New(params truelicense.AuthenticationParameters) (truelicense.Authentication, error) {
	alg, err := algorithmFor(params.Algorithm)
	if err != nil {
		return nil, err
	}

	if params.Source == nil {
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, errors.Wrap(err, "notary: generating RSA key")
		}
		alias := params.Alias
		if alias == "" {
			// An ephemeral keystore (tests, the chained manager's
			// capability probe) has no caller-chosen kid; mint one so log
			// lines and any future multi-key keystore have something
			// stable to key off.
			alias = uuid.NewString()
		}
		slog.Debug("notary: generated ephemeral RSA keypair", "alias", alias)
		return &Notary{alias: alias, algorithm: alg, privateKey: priv, publicKey: &priv.PublicKey}, nil
	}

	return fromJWKSet(params, alg)
}

func algorithmFor(name string) (jwa.SignatureAlgorithm, error) {
	if name == "" {
		name = defaultAlgorithm
	}
	alg, ok := jwa.LookupSignatureAlgorithm(name)
	if !ok {
		return jwa.EmptySignatureAlgorithm(), errors.Errorf("notary: unknown algorithm %q", name)
	}
	return alg, nil
}

func fromJWKSet(params truelicense.AuthenticationParameters, alg jwa.SignatureAlgorithm) (*Notary, error) {
	r, err := params.Source.NewReader()
	if err != nil {
		return nil, errors.Wrap(err, "notary: opening keystore source")
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "notary: reading keystore source")
	}

	set, err := jwk.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "notary: parsing JWK set")
	}

	key, ok := set.LookupKeyID(params.Alias)
	if !ok {
		return nil, errors.Errorf("notary: alias %q not found in keystore", params.Alias)
	}

	n := &Notary{alias: params.Alias, algorithm: alg}

	var pub rsa.PublicKey
	if err := jwk.Export(key, &pub); err == nil {
		n.publicKey = &pub
	}
	var priv rsa.PrivateKey
	if err := jwk.Export(key, &priv); err == nil {
		n.privateKey = &priv
		if n.publicKey == nil {
			n.publicKey = &priv.PublicKey
		}
	}
	if n.publicKey == nil {
		return nil, errors.Errorf("notary: alias %q is neither an RSA public nor private key", params.Alias)
	}
	return n, nil
}

// Sign encodes bean through rc's codec, signs the resulting payload with a
// detached JWS, and publishes payload+signature into rc's model.
func (n *Notary) Sign(rc truelicense.RepositoryController, bean truelicense.License) (truelicense.Decoder, error) {
	if n.privateKey == nil {
		return nil, errors.New("notary: no private key available to sign (consumer-only keystore)")
	}

	var buf bytes.Buffer
	if err := rc.Codec().NewEncoder(&buf).Encode(bean); err != nil {
		return nil, errors.Wrap(err, "notary: encoding payload")
	}
	payload := buf.Bytes()

	sig, err := jws.Sign(nil, jws.WithKey(n.algorithm, n.privateKey), jws.WithDetachedPayload(payload))
	if err != nil {
		return nil, errors.Wrap(err, "notary: signing payload")
	}

	rc.Model().SetPayload(payload)
	rc.Model().SetSignature(sig)

	return &payloadDecoder{codec: rc.Codec(), payload: payload}, nil
}

// Verify checks rc's model signature against its payload and, on success,
// returns a Decoder over the verified payload.
func (n *Notary) Verify(rc truelicense.RepositoryController) (truelicense.Decoder, error) {
	payload := rc.Model().Payload()
	sig := rc.Model().Signature()

	if _, err := jws.Verify(sig, jws.WithKey(n.algorithm, n.publicKey), jws.WithDetachedPayload(payload)); err != nil {
		return nil, errors.Wrap(err, "notary: signature verification failed")
	}

	return &payloadDecoder{codec: rc.Codec(), payload: payload}, nil
}

// payloadDecoder decodes fresh from the verified payload bytes on every
// call, so repeated Decode calls are idempotent.
type payloadDecoder struct {
	codec   truelicense.Codec
	payload []byte
}

func (d *payloadDecoder) Decode(v any) error {
	return d.codec.NewDecoder(bytes.NewReader(d.payload)).Decode(v)
}

var _ truelicense.AuthenticationFactory = New
