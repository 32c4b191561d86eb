// Package aesgcm is the default encryption truelicense.Transformation:
// AES-256-GCM with the key derived from a truelicense.PasswordProtection
// secret via PBKDF2-SHA256 (golang.org/x/crypto/pbkdf2). AES-GCM itself and
// its key-schedule come from the standard library's crypto/aes and
// crypto/cipher. It is a reference default, not a requirement that every
// deployment use it — any Transformation works in its place.
package aesgcm

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"

	"github.com/zzq1314zll/truelicense"
)

const (
	saltLen       = 16
	nonceLen      = 12
	keyLen        = 32 // AES-256
	pbkdf2Rounds  = 100_000
)

// Transformation implements truelicense.Transformation. The whole stream is
// buffered: GCM authenticates the payload as a single unit, which fits the
// license-artifact sizes this library targets.
type Transformation struct {
	protection truelicense.PasswordProtection
}

// New builds an encryption transformation from an EncryptionFactory's
// parameters. The algorithm field is accepted for symmetry with the
// interface contract but is not branched on: this package only ever speaks
// AES-256-GCM.
func New(params truelicense.EncryptionParameters) (truelicense.Transformation, error) {
	if params.Protection == nil {
		return nil, errors.New("aesgcm: password protection is required")
	}
	return Transformation{protection: params.Protection}, nil
}

func (t Transformation) deriveKey(salt []byte, usage truelicense.PasswordUsage) ([]byte, error) {
	secret, err := t.protection.Password(usage)
	if err != nil {
		return nil, err
	}
	defer zero(secret)
	return pbkdf2.Key(secret, salt, pbkdf2Rounds, keyLen, sha256.New), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

type writeCloser struct {
	t    Transformation
	next io.WriteCloser
	buf  bytes.Buffer
}

func (w *writeCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *writeCloser) Close() error {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: generating salt")
	}
	key, err := w.t.deriveKey(salt, truelicense.PasswordWrite)
	if err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: deriving key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: constructing cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: constructing GCM")
	}
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: generating nonce")
	}
	ciphertext := gcm.Seal(nil, nonce, w.buf.Bytes(), nil)

	if _, err := w.next.Write(salt); err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: writing salt")
	}
	if _, err := w.next.Write(nonce); err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: writing nonce")
	}
	if _, err := w.next.Write(ciphertext); err != nil {
		w.next.Close()
		return errors.Wrap(err, "aesgcm: writing ciphertext")
	}
	return w.next.Close()
}

func (t Transformation) WrapWriter(w io.WriteCloser) (io.WriteCloser, error) {
	return &writeCloser{t: t, next: w}, nil
}

type readCloser struct {
	*bytes.Reader
	next io.ReadCloser
}

func (r *readCloser) Close() error { return r.next.Close() }

func (t Transformation) WrapReader(r io.ReadCloser) (io.ReadCloser, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "aesgcm: reading ciphertext stream")
	}
	if len(all) < saltLen+nonceLen {
		return nil, errors.New("aesgcm: ciphertext stream too short")
	}
	salt, nonce, ciphertext := all[:saltLen], all[saltLen:saltLen+nonceLen], all[saltLen+nonceLen:]

	key, err := t.deriveKey(salt, truelicense.PasswordRead)
	if err != nil {
		return nil, errors.Wrap(err, "aesgcm: deriving key")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "aesgcm: constructing cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "aesgcm: constructing GCM")
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.Wrap(err, "aesgcm: authentication failed, wrong password or tampered data")
	}
	return &readCloser{Reader: bytes.NewReader(plaintext), next: r}, nil
}

var _ truelicense.Transformation = Transformation{}
var _ truelicense.EncryptionFactory = New
