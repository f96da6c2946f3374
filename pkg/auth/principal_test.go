package auth_test

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainpe/payvalidator/pkg/auth"
)

func TestPrincipalRoundTrip(t *testing.T) {
	t.Parallel()

	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)

	p := kp.Principal()
	assert.True(t, strings.HasPrefix(p.String(), "G"))
	assert.Len(t, p.String(), 56)
	assert.True(t, p.Valid())

	parsed, err := auth.ParsePrincipal("  " + p.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	pub, err := p.PublicKey()
	require.NoError(t, err)
	assert.Len(t, pub, ed25519.PublicKeySize)
}

func TestPrincipalFromKnownKey(t *testing.T) {
	t.Parallel()

	// All-zero key encodes to the well-known Stellar address below.
	p, err := auth.PrincipalFromPublicKey(make(ed25519.PublicKey, ed25519.PublicKeySize))
	require.NoError(t, err)
	assert.Equal(t, auth.Principal("GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"), p)
}

func TestParsePrincipal_Invalid(t *testing.T) {
	t.Parallel()

	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)
	valid := kp.Principal().String()

	// Flip one character in the body to break the checksum.
	last := valid[len(valid)-5]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	corrupted := valid[:len(valid)-5] + string(replacement) + valid[len(valid)-4:]

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "garbage", input: "not-a-principal"},
		{name: "seed instead of account", input: kp.Seed()},
		{name: "truncated", input: valid[:40]},
		{name: "bad checksum", input: corrupted},
		{name: "lowercase", input: strings.ToLower(valid)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.ParsePrincipal(tt.input)
			assert.ErrorIs(t, err, auth.ErrInvalidPrincipal)
		})
	}
}

func TestKeypairFromSeed(t *testing.T) {
	t.Parallel()

	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)

	restored, err := auth.KeypairFromSeed(kp.Seed())
	require.NoError(t, err)
	assert.Equal(t, kp.Principal(), restored.Principal())
	assert.True(t, strings.HasPrefix(kp.Seed(), "S"))

	_, err = auth.KeypairFromSeed(kp.Principal().String())
	assert.ErrorIs(t, err, auth.ErrInvalidSeed)
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	kp, err := auth.GenerateKeypair()
	require.NoError(t, err)
	other, err := auth.GenerateKeypair()
	require.NoError(t, err)

	msg := []byte("register pay_test123")
	sig := kp.Sign(msg)

	require.NoError(t, auth.Verify(kp.Principal(), msg, sig))
	assert.ErrorIs(t, auth.Verify(other.Principal(), msg, sig), auth.ErrSignatureInvalid)
	assert.ErrorIs(t, auth.Verify(kp.Principal(), []byte("tampered"), sig), auth.ErrSignatureInvalid)
	assert.ErrorIs(t, auth.Verify(kp.Principal(), msg, sig[:10]), auth.ErrSignatureInvalid)
}

func TestPrincipalShort(t *testing.T) {
	t.Parallel()

	p := auth.Principal("GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF")
	assert.Equal(t, "GAAA...AWHF", p.Short())
	assert.Equal(t, "GABC", auth.Principal("GABC").Short())
}
