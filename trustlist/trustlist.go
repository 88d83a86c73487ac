/*
 * Copyright 2020 Guardtime, Inc.
 *
 * This file is part of the Guardtime client SDK.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES, CONDITIONS, OR OTHER LICENSES OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 * "Guardtime" and "KSI" are trademarks or registered trademarks of
 * Guardtime, Inc., and no license to trademarks is granted; Guardtime
 * reserves and retains all trademark rights.
 */

package trustlist

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/sipsentry/tlvenvelope/pki"
	"github.com/sipsentry/tlvenvelope/sigbind"
)

// BuildSpec describes a trust-list envelope to assemble.
type BuildSpec struct {
	SignerSubject string
	SignerIssuer  string
	SignerSerial  []byte
	SignerKey     *rsa.PrivateKey

	HashAlgorithm pdu.HashAlgID
	Filename      string
	Timestamp     uint32
	LayoutVersion [2]byte // e.g. {1, 0} or {1, 1}

	Records []CertificateRecord
}

// Envelope is a parsed trust-list file: its decoded header plus the decoded certificate records.
type Envelope struct {
	Header  *pdu.HeaderView
	Records []CertificateRecord
}

// Build assembles, signs and returns the complete trust-list file bytes.
func Build(spec BuildSpec) ([]byte, error) {
	log.Debug("trustlist: building record-list envelope")

	payload, err := encodeRecords(spec.Records)
	if err != nil {
		return nil, err
	}

	headerSpec := pdu.HeaderSpec{
		Major: 1, Minor: 0,
		SignerSubject: spec.SignerSubject,
		SignerIssuer:  spec.SignerIssuer,
		SignerSerial:  spec.SignerSerial,
		HashAlgorithm: spec.HashAlgorithm,
		SignatureLen:  spec.SignerKey.Size(),
		Filename:      spec.Filename,
		Timestamp:     spec.Timestamp,
		SignerVersion: &spec.LayoutVersion,
	}

	header, sigInsertOffset, _, err := pdu.AssembleHeader(headerSpec)
	if err != nil {
		return nil, err
	}

	preSign := append(append([]byte{}, header...), payload...)

	sig, err := sigbind.Sign(preSign, spec.SignerKey, spec.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	return sigbind.SpliceIn(preSign, sig, sigInsertOffset)
}

func encodeRecords(records []CertificateRecord) ([]byte, error) {
	var out []byte
	for _, rec := range records {
		enc, err := encodeRecord(rec)
		if err != nil {
			return nil, errors.Err(err).AppendMessage("Failed to encode record.")
		}
		out = append(out, enc...)
	}
	return out, nil
}

// Parse walks fileBytes' header, then decodes every certificate record in the payload.
func Parse(fileBytes []byte) (*Envelope, error) {
	log.Debug("trustlist: parsing record-list envelope")

	hv, err := pdu.WalkHeader(fileBytes)
	if err != nil {
		return &Envelope{Header: hv}, err
	}
	if hv.HeaderLength > len(fileBytes) {
		return &Envelope{Header: hv}, errors.New(errors.Truncated).
			AppendMessage("HEADER_LENGTH exceeds the file size.")
	}

	payload := fileBytes[hv.HeaderLength:]
	var records []CertificateRecord
	offset := 0
	for offset < len(payload) {
		rec, next, err := decodeRecord(payload, offset)
		if err != nil {
			return &Envelope{Header: hv, Records: records}, err
		}
		records = append(records, rec)
		offset = next
	}

	return &Envelope{Header: hv, Records: records}, nil
}

// SigningAuthority returns the single record whose role is signing-authority and whose serial
// matches the header's signer serial - the invariant §3 requires every trust list to satisfy.
func SigningAuthority(env *Envelope) (*CertificateRecord, error) {
	if env == nil || env.Header == nil {
		return nil, errors.New(errors.InvalidArgument)
	}

	var found *CertificateRecord
	for i := range env.Records {
		rec := &env.Records[i]
		if rec.Role != RoleSigningAuthority {
			continue
		}
		if !bytes.Equal(rec.Serial, env.Header.SignerSerial) {
			continue
		}
		if found != nil {
			return nil, errors.New(errors.InvalidCertificate).
				AppendMessage("Trust list has more than one matching signing-authority record.")
		}
		found = rec
	}
	if found == nil {
		return nil, errors.New(errors.MissingField).
			AppendMessage("Trust list has no signing-authority record matching the header's signer serial.")
	}
	return found, nil
}

// Verify locates the signing-authority record, parses its embedded certificate's public key and
// checks the envelope signature against it.
func Verify(fileBytes []byte, env *Envelope) error {
	if env == nil || env.Header == nil {
		return errors.New(errors.InvalidArgument)
	}

	signer, err := SigningAuthority(env)
	if err != nil {
		return err
	}

	cert, err := x509.ParseCertificate(signer.CertificateDER)
	if err != nil {
		return errors.New(errors.InvalidCertificate).SetExtError(err).
			AppendMessage("Failed to parse signing-authority certificate.")
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return errors.New(errors.UnsupportedKeyType).
			AppendMessage("Signing-authority certificate does not carry an RSA public key.")
	}

	recordPub, err := pki.ParseRSAPublicKeyDER(signer.PublicKeyDER)
	if err != nil {
		return errors.Err(err).AppendMessage("Failed to parse signing-authority record's PUBLIC_KEY element.")
	}
	if recordPub.E != pub.E || recordPub.N.Cmp(pub.N) != 0 {
		return errors.New(errors.InvalidCertificate).
			AppendMessage("Signing-authority record's PUBLIC_KEY element does not match its CERTIFICATE.")
	}

	without, sig, err := sigbind.Extract(fileBytes, env.Header.SignatureSpan)
	if err != nil {
		return err
	}
	return sigbind.Verify(without, sig, pub, env.Header.HashAlgorithm)
}
