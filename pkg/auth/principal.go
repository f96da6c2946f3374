package auth

import (
	"crypto/ed25519"
	"errors"
	"strings"
)

// Principal identifies an authenticatable actor: an ed25519 public key in
// strkey form ("G" followed by 55 base32 characters).
type Principal string

// ParsePrincipal validates s and returns it as a Principal.
// Surrounding whitespace is ignored.
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if _, err := decodeStrkey(versionAccountID, s); err != nil {
		return "", errors.Join(ErrInvalidPrincipal, err)
	}
	return Principal(s), nil
}

// MustParsePrincipal is like ParsePrincipal but panics on error.
func MustParsePrincipal(s string) Principal {
	p, err := ParsePrincipal(s)
	if err != nil {
		panic(err)
	}
	return p
}

// PrincipalFromPublicKey encodes an ed25519 public key as a Principal.
func PrincipalFromPublicKey(pub ed25519.PublicKey) (Principal, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", ErrInvalidPrincipal
	}
	return Principal(encodeStrkey(versionAccountID, pub)), nil
}

// PublicKey decodes the ed25519 public key behind the principal.
func (p Principal) PublicKey() (ed25519.PublicKey, error) {
	raw, err := decodeStrkey(versionAccountID, string(p))
	if err != nil {
		return nil, errors.Join(ErrInvalidPrincipal, err)
	}
	return ed25519.PublicKey(raw), nil
}

// Valid reports whether p is a well-formed principal.
func (p Principal) Valid() bool {
	_, err := p.PublicKey()
	return err == nil
}

func (p Principal) String() string {
	return string(p)
}

// Short returns an abbreviated form for logs, e.g. "GABC...WXYZ".
func (p Principal) Short() string {
	s := string(p)
	if len(s) <= 12 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}
