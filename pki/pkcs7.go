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

package pki

import (
	"crypto/x509"

	"github.com/fullsailor/pkcs7"

	"github.com/sipsentry/tlvenvelope/errors"
)

// WrapPKCS7Certificates bundles a single certificate into a PKCS#7 "certificates-only" SignedData
// structure (the .p7b shape), a distribution format trust-list operators commonly exchange
// signing-authority certificates in alongside the envelope's own RECORD profile.
func WrapPKCS7Certificates(cert *x509.Certificate) ([]byte, error) {
	if cert == nil {
		return nil, errors.New(errors.InvalidArgument).AppendMessage("No certificate to bundle.")
	}

	der, err := pkcs7.DegenerateCertificate(cert.Raw)
	if err != nil {
		return nil, errors.New(errors.ExternalError).SetExtError(err).
			AppendMessage("Failed to build PKCS#7 certificates-only structure.")
	}
	return der, nil
}

// CertificatesFromPKCS7 extracts the embedded certificates from a PKCS#7 structure (signed or
// certificates-only), for importing a trust-list update shipped in that format.
func CertificatesFromPKCS7(der []byte) ([]*x509.Certificate, error) {
	parsed, err := pkcs7.Parse(der)
	if err != nil {
		return nil, errors.New(errors.InvalidCertificate).SetExtError(err).
			AppendMessage("Failed to parse PKCS#7 structure.")
	}
	return parsed.Certificates, nil
}
