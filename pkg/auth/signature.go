package auth

import "crypto/ed25519"

// Verify checks that sig is a valid signature of msg by principal p.
func Verify(p Principal, msg, sig []byte) error {
	pub, err := p.PublicKey()
	if err != nil {
		return err
	}
	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(pub, msg, sig) {
		return ErrSignatureInvalid
	}
	return nil
}
