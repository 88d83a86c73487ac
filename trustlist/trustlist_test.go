package trustlist

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/stretchr/testify/require"
)

func selfSignedCert(t *testing.T, cn string, serial int64, key *rsa.PrivateKey) *x509.Certificate {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: cn},
		Issuer:       pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func buildTestList(t *testing.T) ([]byte, *rsa.PrivateKey, *x509.Certificate) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	saCert := selfSignedCert(t, "signing-authority", 1, key)
	saRecord, err := RecordFromCertificate(saCert, RoleSigningAuthority)
	require.NoError(t, err)

	fsKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	fsCert := selfSignedCert(t, "file-server", 2, fsKey)
	fsRecord, err := RecordFromCertificate(fsCert, RoleFileServer)
	require.NoError(t, err)

	spec := BuildSpec{
		SignerSubject: "CN=signing-authority",
		SignerIssuer:  "CN=signing-authority",
		SignerSerial:  saRecord.Serial,
		SignerKey:     key,
		HashAlgorithm: pdu.HashSHA512,
		Filename:      "trustlist.tlv",
		Timestamp:     1700000000,
		LayoutVersion: [2]byte{1, 1},
		Records:       []CertificateRecord{saRecord, fsRecord},
	}

	file, err := Build(spec)
	require.NoError(t, err)
	return file, key, saCert
}

func TestBuildParseVerifyTrustList(t *testing.T) {
	file, _, saCert := buildTestList(t)

	env, err := Parse(file)
	require.NoError(t, err)
	require.Len(t, env.Records, 2)
	require.Equal(t, [2]byte{1, 1}, *env.Header.SignerVersion)

	signer, err := SigningAuthority(env)
	require.NoError(t, err)
	require.Equal(t, saCert.Raw, signer.CertificateDER)

	require.NoError(t, Verify(file, env))
}

func TestSigningAuthorityMissing(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	fsCert := selfSignedCert(t, "file-server", 9, key)
	fsRecord, err := RecordFromCertificate(fsCert, RoleFileServer)
	require.NoError(t, err)

	spec := BuildSpec{
		SignerSubject: "CN=x",
		SignerIssuer:  "CN=x",
		SignerSerial:  []byte{0x01},
		SignerKey:     key,
		HashAlgorithm: pdu.HashSHA1,
		Filename:      "tl.tlv",
		LayoutVersion: [2]byte{1, 0},
		Records:       []CertificateRecord{fsRecord},
	}
	file, err := Build(spec)
	require.NoError(t, err)

	env, err := Parse(file)
	require.NoError(t, err)

	_, err = SigningAuthority(env)
	require.Error(t, err)
	require.Equal(t, errors.MissingField, err.(*errors.EnvelopeError).Code())
}

func TestVerifyRejectsTamperedRecord(t *testing.T) {
	file, _, _ := buildTestList(t)

	tampered := append([]byte{}, file...)
	tampered[len(tampered)-1] ^= 0xff

	env, err := Parse(tampered)
	require.NoError(t, err)

	err = Verify(tampered, env)
	require.Error(t, err)
}

func TestRecordFromCertificateRejectsNil(t *testing.T) {
	_, err := RecordFromCertificate(nil, RoleFileServer)
	require.Error(t, err)
}

func TestRoleString(t *testing.T) {
	require.Equal(t, "signing-authority", RoleSigningAuthority.String())
	require.Equal(t, "telephony-verification-service", RoleTelephonyVerificationSvc.String())
	require.Equal(t, "unknown", Role(99).String())
}
