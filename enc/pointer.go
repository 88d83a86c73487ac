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

package enc

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/hex"
	"encoding/xml"

	"github.com/google/uuid"

	"github.com/sipsentry/tlvenvelope/errors"
	"github.com/sipsentry/tlvenvelope/pki"
	"github.com/sipsentry/tlvenvelope/sgn"
)

// sourceDevice captures only the child elements the pointer envelope preserves from the
// plaintext <device> document; everything else in the source XML is dropped.
type sourceDevice struct {
	XMLName         xml.Name `xml:"device"`
	IPAddressMode   string   `xml:"ipAddressMode"`
	LoadInformation string   `xml:"loadInformation"`
	CapfAuthMode    string   `xml:"capfAuthMode"`
	CapfList        string   `xml:"capfList"`
}

// pointerDevice is the companion pointer envelope's derived XML shape (§4.4.3 step 9).
type pointerDevice struct {
	XMLName         xml.Name `xml:"device"`
	FullConfig      bool     `xml:"fullConfig"`
	IPAddressMode   string   `xml:"ipAddressMode,omitempty"`
	LoadInformation string   `xml:"loadInformation,omitempty"`
	CapfAuthMode    string   `xml:"capfAuthMode,omitempty"`
	CapfList        string   `xml:"capfList,omitempty"`
	CertHash        string   `xml:"certHash"`
	EncrConfig      bool     `xml:"encrConfig"`
	ConfigID        string   `xml:"configId,omitempty"`
}

// BuildPointerXML derives the companion pointer envelope's payload from the plaintext
// configuration XML that was just encrypted and the recipient device certificate whose
// fingerprint it carries. configID is an additive correlation id (see DESIGN.md); pass
// uuid.Nil to omit it from the rendered document.
func BuildPointerXML(plaintextXML []byte, recipientCert *x509.Certificate, configID uuid.UUID) ([]byte, error) {
	var src sourceDevice
	if err := xml.Unmarshal(plaintextXML, &src); err != nil {
		return nil, errors.New(errors.InvalidArgument).SetExtError(err).
			AppendMessage("Failed to parse plaintext configuration XML.")
	}

	certHash, err := pki.FingerprintMD5(recipientCert)
	if err != nil {
		return nil, err
	}

	doc := pointerDevice{
		FullConfig:      false,
		IPAddressMode:   src.IPAddressMode,
		LoadInformation: src.LoadInformation,
		CapfAuthMode:    src.CapfAuthMode,
		CapfList:        src.CapfList,
		CertHash:        hex.EncodeToString(certHash),
		EncrConfig:      true,
	}
	if configID != uuid.Nil {
		doc.ConfigID = configID.String()
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).
			AppendMessage("Failed to render pointer envelope XML.")
	}
	return append([]byte(xml.Header), out...), nil
}

// ParsePointerXML decodes a pointer envelope's payload back into its element values, for
// operators who want to inspect a .sgn pointer file without also holding the recipient key.
func ParsePointerXML(payload []byte) (fullConfig bool, ipAddressMode, loadInformation, capfAuthMode, capfList, certHash string, encrConfig bool, configID string, err error) {
	var doc pointerDevice
	if uerr := xml.Unmarshal(payload, &doc); uerr != nil {
		return false, "", "", "", "", "", false, "", errors.New(errors.InvalidArgument).SetExtError(uerr).
			AppendMessage("Failed to parse pointer envelope XML.")
	}
	return doc.FullConfig, doc.IPAddressMode, doc.LoadInformation, doc.CapfAuthMode, doc.CapfList,
		doc.CertHash, doc.EncrConfig, doc.ConfigID, nil
}

// BuildPointerEnvelope assembles the companion pointer envelope (opaque profile, version 1.0)
// around the derived pointer XML and signs it with the same signer identity as the ENC file it
// accompanies.
func BuildPointerEnvelope(spec BuildSpec, configID uuid.UUID) ([]byte, error) {
	pointerXML, err := BuildPointerXML(spec.PlaintextXML, spec.RecipientCert, configID)
	if err != nil {
		return nil, err
	}

	return sgn.Build(sgn.BuildSpec{
		SignerSubject: spec.SignerSubject,
		SignerIssuer:  spec.SignerIssuer,
		SignerSerial:  spec.SignerSerial,
		SignerKey:     spec.SignerKey,
		HashAlgorithm: spec.HashAlgorithm,
		Filename:      spec.Filename,
		Timestamp:     spec.Timestamp,
		Payload:       pointerXML,
	})
}

// VerifyPointerEnvelope checks the pointer envelope's signature against pub.
func VerifyPointerEnvelope(fileBytes []byte, env *sgn.Envelope, pub *rsa.PublicKey) error {
	return sgn.Verify(fileBytes, env, pub)
}
