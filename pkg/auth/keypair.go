package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strings"
)

// Keypair holds an ed25519 signing key together with its principal.
type Keypair struct {
	principal Principal
	private   ed25519.PrivateKey
}

// GenerateKeypair creates a new random keypair.
func GenerateKeypair() (Keypair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, err
	}
	return newKeypair(priv)
}

// KeypairFromSeed restores a keypair from its "S..." secret seed.
func KeypairFromSeed(seed string) (Keypair, error) {
	raw, err := decodeStrkey(versionSeed, strings.TrimSpace(seed))
	if err != nil {
		return Keypair{}, errors.Join(ErrInvalidSeed, err)
	}
	return newKeypair(ed25519.NewKeyFromSeed(raw))
}

func newKeypair(priv ed25519.PrivateKey) (Keypair, error) {
	p, err := PrincipalFromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{principal: p, private: priv}, nil
}

// Principal returns the public identity of the keypair.
func (k Keypair) Principal() Principal {
	return k.principal
}

// Seed returns the secret seed in strkey form. Treat it as a credential.
func (k Keypair) Seed() string {
	return encodeStrkey(versionSeed, k.private.Seed())
}

// Sign signs msg with the private key.
func (k Keypair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.private, msg)
}
