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
	"crypto/x509"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/pki"
	"github.com/sipsentry/tlvenvelope/tlv"
)

// CertificateRecord is one entry of a trust list: a certificate plus the role it plays.
type CertificateRecord struct {
	Subject string
	Issuer  string
	Serial  []byte
	Role    Role

	PublicKeyDER   []byte // RSA PKCS#1 DER, or EC X9.62 uncompressed point
	Signature      []byte // the certificate's own signature, copied verbatim
	CertificateDER []byte // full X.509 DER
}

// String renders a human-readable summary of the record.
func (r *CertificateRecord) String() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", r.Subject)
	fmt.Fprintf(&b, "Issuer: %s\n", r.Issuer)
	fmt.Fprintf(&b, "Serial Number: %x\n", r.Serial)
	fmt.Fprintf(&b, "Role: %s\n", r.Role)
	fmt.Fprintf(&b, "Public Key: %d bytes\n", len(r.PublicKeyDER))
	fmt.Fprintf(&b, "Certificate: %d bytes\n", len(r.CertificateDER))
	return b.String()
}

// RecordFromCertificate builds a CertificateRecord from an X.509 certificate, exporting its
// public key per §4.4.2 step 4 (PKCS#1 DER for RSA, X9.62 uncompressed point for EC).
func RecordFromCertificate(cert *x509.Certificate, role Role) (CertificateRecord, error) {
	if cert == nil {
		return CertificateRecord{}, errors.New(errors.InvalidArgument)
	}
	pubDER, err := pki.ExportPublicKey(cert.PublicKey)
	if err != nil {
		return CertificateRecord{}, err
	}
	return CertificateRecord{
		Subject:        pki.SubjectRFC4514(cert),
		Issuer:         pki.IssuerRFC4514(cert),
		Serial:         pki.SerialNumber(cert),
		Role:           role,
		PublicKeyDER:   pubDER,
		Signature:      append([]byte{}, cert.Signature...),
		CertificateDER: append([]byte{}, cert.Raw...),
	}, nil
}

// encodeRecord serializes rec, reserving and back-patching RECORD_LENGTH exactly as §4.4.2
// describes for the envelope's own HEADER_LENGTH.
func encodeRecord(rec CertificateRecord) ([]byte, error) {
	b := tlv.NewBuilder()
	if err := b.Append(TagRecordLength, []byte{0, 0}); err != nil {
		return nil, err
	}
	lenFieldOffset := b.Len() - 2

	if err := b.Append(TagSubjectName, encodeCString(rec.Subject)); err != nil {
		return nil, err
	}
	if err := b.Append(TagIssuerName, encodeCString(rec.Issuer)); err != nil {
		return nil, err
	}
	if err := b.Append(TagSerialNumber, rec.Serial); err != nil {
		return nil, err
	}
	role := make([]byte, 2)
	binary.BigEndian.PutUint16(role, uint16(rec.Role))
	if err := b.Append(TagRole, role); err != nil {
		return nil, err
	}
	if err := b.Append(TagPublicKey, rec.PublicKeyDER); err != nil {
		return nil, err
	}
	if err := b.Append(TagSignature, rec.Signature); err != nil {
		return nil, err
	}
	if err := b.Append(TagCertificate, rec.CertificateDER); err != nil {
		return nil, err
	}

	buf := b.Bytes()
	binary.BigEndian.PutUint16(buf[lenFieldOffset:lenFieldOffset+2], uint16(len(buf)))
	return buf, nil
}

// decodeRecord decodes one CertificateRecord starting at offset, returning the offset of the
// next record.
func decodeRecord(buf []byte, offset int) (CertificateRecord, int, error) {
	elem, _, _, next, err := tlv.DecodeNext(buf, offset)
	if err != nil {
		return CertificateRecord{}, 0, errors.Err(err, errors.Truncated)
	}
	if elem.Tag != TagRecordLength || len(elem.Value) != 2 {
		return CertificateRecord{}, 0, errors.New(errors.BadTag).
			AppendMessage("Trust list record must begin with a 2-byte RECORD_LENGTH element.")
	}
	recLen := int(binary.BigEndian.Uint16(elem.Value))
	recEnd := offset + recLen
	if recLen < 3 || recEnd > len(buf) {
		return CertificateRecord{}, 0, errors.New(errors.Truncated).
			AppendMessage("RECORD_LENGTH extends past the end of the payload.")
	}

	var rec CertificateRecord
	cur := next
	for cur < recEnd {
		elemStart := cur
		e, _, _, nx, err := tlv.DecodeNext(buf, cur)
		if err != nil {
			return CertificateRecord{}, 0, errors.Err(err, errors.Truncated)
		}

		switch e.Tag {
		case TagSubjectName:
			rec.Subject = decodeCString(e.Value)
		case TagIssuerName:
			rec.Issuer = decodeCString(e.Value)
		case TagSerialNumber:
			rec.Serial = append([]byte{}, e.Value...)
		case TagRole:
			if len(e.Value) != 2 {
				return CertificateRecord{}, 0, errors.New(errors.MissingField).AppendMessage("ROLE must be 2 bytes.")
			}
			rec.Role = Role(binary.BigEndian.Uint16(e.Value))
		case TagPublicKey:
			rec.PublicKeyDER = append([]byte{}, e.Value...)
		case TagSignature:
			rec.Signature = append([]byte{}, e.Value...)
		case TagCertificate:
			rec.CertificateDER = append([]byte{}, e.Value...)
		case TagIPAddress, TagCertificateHash, TagRecordHashAlgo:
			// Recognized, never emitted - read and ignored.
		default:
			return CertificateRecord{}, 0, errors.New(errors.UnknownTag).
				AppendMessage(fmt.Sprintf("Unknown record tag 0x%02x at offset %d.", e.Tag, elemStart))
		}
		cur = nx
	}

	return rec, recEnd, nil
}

func decodeCString(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

func encodeCString(s string) []byte {
	out := make([]byte, len(s)+1)
	copy(out, s)
	return out
}
