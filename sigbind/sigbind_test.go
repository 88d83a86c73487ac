package sigbind

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T, bits int) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, bits)
	require.NoError(t, err)
	return key
}

func TestSignSpliceExtractVerifyRoundTrip(t *testing.T) {
	key := genKey(t, 1024) // 128-byte signature, matches SIGNATURE_MODULUS index 1
	body := []byte("pre-signature header bytes followed by payload")

	sig, err := Sign(body, key, pdu.HashSHA256)
	require.NoError(t, err)
	require.Len(t, sig, 128)

	insertOffset := 10
	file, err := SpliceIn(body, sig, insertOffset)
	require.NoError(t, err)
	require.Equal(t, len(body)+3+len(sig), len(file))

	span := pdu.Span{Start: insertOffset, End: insertOffset + 3 + len(sig)}
	recovered, extractedSig, err := Extract(file, span)
	require.NoError(t, err)
	require.Equal(t, body, recovered)
	require.Equal(t, sig, extractedSig)

	require.NoError(t, Verify(recovered, extractedSig, &key.PublicKey, pdu.HashSHA256))
}

func TestVerifyFailsOnTamperedBody(t *testing.T) {
	key := genKey(t, 1024)
	body := []byte("original content")

	sig, err := Sign(body, key, pdu.HashSHA1)
	require.NoError(t, err)

	tampered := append([]byte{}, body...)
	tampered[0] ^= 0xff

	err = Verify(tampered, sig, &key.PublicKey, pdu.HashSHA1)
	require.Error(t, err)
	require.Equal(t, errors.InvalidSignature, err.(*errors.EnvelopeError).Code())
}

func TestExtractRejectsSpanMismatch(t *testing.T) {
	key := genKey(t, 1024)
	body := []byte("0123456789")
	sig, err := Sign(body, key, pdu.HashSHA256)
	require.NoError(t, err)

	file, err := SpliceIn(body, sig, 5)
	require.NoError(t, err)

	_, _, err = Extract(file, pdu.Span{Start: 0, End: 3})
	require.Error(t, err)
}

func TestExtractRejectsOutOfRangeSpan(t *testing.T) {
	_, _, err := Extract([]byte{1, 2, 3}, pdu.Span{Start: 1, End: 100})
	require.Error(t, err)
	require.Equal(t, errors.Truncated, err.(*errors.EnvelopeError).Code())
}

func TestSignRejectsUnsupportedHashAlgorithm(t *testing.T) {
	key := genKey(t, 1024)
	_, err := Sign([]byte("x"), key, pdu.HashAlgID(99))
	require.Error(t, err)
	require.Equal(t, errors.UnsupportedAlgorithm, err.(*errors.EnvelopeError).Code())
}

func TestSpliceInRejectsOutOfRangeOffset(t *testing.T) {
	_, err := SpliceIn([]byte("abc"), []byte("sig"), 99)
	require.Error(t, err)
}
