package pki

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/hash"
	"github.com/stretchr/testify/require"
)

func selfSignedCertAndKey(t *testing.T, subject, issuer string, serial int64) (*x509.Certificate, *rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: subject},
		Issuer:       pkix.Name{CommonName: issuer},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	// crypto/x509 copies the issued certificate's Issuer from the parent's Subject, so the parent
	// carries the requested issuer name; the same key still signs.
	parent := &x509.Certificate{Subject: pkix.Name{CommonName: issuer}}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, key, der
}

func TestLoadCertAndKeyFromPEM(t *testing.T) {
	cert, key, der := selfSignedCertAndKey(t, "CN=TFTP", "CN=TFTP", 1)

	var buf bytes.Buffer
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: der}))
	require.NoError(t, pem.Encode(&buf, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))

	gotCert, gotKey, err := LoadCertAndKeyFromPEM(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, cert.Raw, gotCert.Raw)
	require.NotNil(t, gotKey)
}

func TestLoadCertAndKeyFromPEMEmpty(t *testing.T) {
	_, _, err := LoadCertAndKeyFromPEM([]byte("not pem data"))
	require.Error(t, err)
	require.Equal(t, errors.MissingField, err.(*errors.EnvelopeError).Code())
}

func TestSubjectIssuerRFC4514(t *testing.T) {
	cert, _, _ := selfSignedCertAndKey(t, "TFTP", "SAST", 2)
	require.Contains(t, SubjectRFC4514(cert), "TFTP")
	require.Contains(t, IssuerRFC4514(cert), "SAST")
	require.Equal(t, "", SubjectRFC4514(nil))
}

func TestSerialNumber(t *testing.T) {
	cert, _, _ := selfSignedCertAndKey(t, "x", "x", 66)
	require.Equal(t, []byte{0x42}, SerialNumber(cert))
}

func TestExportPublicKeyRSA(t *testing.T) {
	_, key, _ := selfSignedCertAndKey(t, "x", "x", 1)
	der, err := ExportPublicKey(&key.PublicKey)
	require.NoError(t, err)

	parsed, err := x509.ParsePKCS1PublicKey(der)
	require.NoError(t, err)
	require.Equal(t, key.PublicKey.N, parsed.N)
}

func TestExportPublicKeyUnsupported(t *testing.T) {
	_, err := ExportPublicKey("not a key")
	require.Error(t, err)
	require.Equal(t, errors.UnsupportedKeyType, err.(*errors.EnvelopeError).Code())
}

func TestRSASignVerifyRoundTrip(t *testing.T) {
	_, key, _ := selfSignedCertAndKey(t, "x", "x", 1)
	data := []byte("hello envelope")

	sig, err := RSASignPKCS1v15(key, data, hash.SHA2_256)
	require.NoError(t, err)
	require.NoError(t, RSAVerifyPKCS1v15(&key.PublicKey, data, sig, hash.SHA2_256))

	require.Error(t, RSAVerifyPKCS1v15(&key.PublicKey, []byte("tampered"), sig, hash.SHA2_256))
}

func TestRSAKeyWrapRoundTrip(t *testing.T) {
	_, key, _ := selfSignedCertAndKey(t, "x", "x", 1)
	aesKey := bytes.Repeat([]byte{0x11}, 16)

	wrapped, err := RSAWrapKeyPKCS1v15(&key.PublicKey, aesKey)
	require.NoError(t, err)

	recovered, err := RSAUnwrapKeyPKCS1v15(key, wrapped)
	require.NoError(t, err)
	require.Equal(t, aesKey, recovered)
}

func TestAESCBCRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 16)
	iv := bytes.Repeat([]byte{0x02}, 16)
	plaintext := bytes.Repeat([]byte{0x0d}, 32)

	ciphertext, err := AESCBCEncrypt(key, iv, plaintext)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, ciphertext)

	recovered, err := AESCBCDecrypt(key, iv, ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, recovered)
}

func TestAESCBCRejectsUnalignedPlaintext(t *testing.T) {
	key := bytes.Repeat([]byte{0x01}, 16)
	iv := bytes.Repeat([]byte{0x02}, 16)
	_, err := AESCBCEncrypt(key, iv, []byte("not16"))
	require.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	cert, _, _ := selfSignedCertAndKey(t, "x", "x", 1)

	sha, err := Fingerprint(cert, hash.SHA2_256)
	require.NoError(t, err)
	require.Len(t, sha, 32)

	md5sum, err := FingerprintMD5(cert)
	require.NoError(t, err)
	require.Len(t, md5sum, 16)
}

func TestWrapPKCS7CertificatesRoundTrip(t *testing.T) {
	cert, _, _ := selfSignedCertAndKey(t, "signing-authority", "signing-authority", 7)

	der, err := WrapPKCS7Certificates(cert)
	require.NoError(t, err)

	certs, err := CertificatesFromPKCS7(der)
	require.NoError(t, err)
	require.Len(t, certs, 1)
	require.Equal(t, cert.Raw, certs[0].Raw)
}

func TestWrapPKCS7CertificatesRejectsNil(t *testing.T) {
	_, err := WrapPKCS7Certificates(nil)
	require.Error(t, err)
}

func TestParseRSAPublicKeyDERRoundTrip(t *testing.T) {
	_, key, _ := selfSignedCertAndKey(t, "x", "x", 1)

	der, err := RSAPublicKeyDER(&key.PublicKey)
	require.NoError(t, err)

	parsed, err := ParseRSAPublicKeyDER(der)
	require.NoError(t, err)
	require.Equal(t, key.PublicKey.N, parsed.N)
	require.Equal(t, key.PublicKey.E, parsed.E)
}

func TestParseRSAPublicKeyDERRejectsGarbage(t *testing.T) {
	_, err := ParseRSAPublicKeyDER([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
	require.Equal(t, errors.InvalidCertificate, err.(*errors.EnvelopeError).Code())
}

func TestParseECUncompressedPointRoundTrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	point, err := ECUncompressedPoint(&key.PublicKey)
	require.NoError(t, err)

	parsed, err := ParseECUncompressedPoint(elliptic.P256(), point)
	require.NoError(t, err)
	require.Equal(t, key.PublicKey.X, parsed.X)
	require.Equal(t, key.PublicKey.Y, parsed.Y)
}

func TestParseECUncompressedPointRejectsGarbage(t *testing.T) {
	_, err := ParseECUncompressedPoint(elliptic.P256(), []byte{0x04, 0x01, 0x02})
	require.Error(t, err)
}
