package passwd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestDeterministic(t *testing.T) {
	require := require.New(t)
	for _, p := range []string{"", "pw", "admin123", "a much longer passphrase with spaces"} {
		require.Equal(Digest(p), Digest(p))
	}
}

func TestDigestKnownVector(t *testing.T) {
	// SHA-256("password"), hex
	require.Equal(t,
		"5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		Digest("password"))
}

func TestDigestShape(t *testing.T) {
	require := require.New(t)
	d := Digest("pw1")
	require.Len(d, DigestLen)
	for _, r := range d {
		require.Contains("0123456789abcdef", string(r))
	}
}

func TestDigestDistinct(t *testing.T) {
	require := require.New(t)
	require.NotEqual(Digest("pw1"), Digest("pw2"))
	require.NotEqual(Digest(""), Digest(" "))
}

func TestVerify(t *testing.T) {
	require := require.New(t)
	d := Digest("secret")
	require.True(Verify(d, "secret"))
	require.False(Verify(d, "Secret"))
	require.False(Verify(d, ""))
	require.False(Verify("", "secret"))
}
