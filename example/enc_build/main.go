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

// enc_build encrypts a plaintext device configuration XML (input path must end in ".cnf.xml")
// under a recipient device certificate, writing the encrypted envelope and its companion pointer
// envelope per §4.4.3, then deletes the plaintext input.
package main

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sipsentry/tlvenvelope/enc"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/log/logrusadapter"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/sipsentry/tlvenvelope/pki"
)

type argVal int

const (
	argProgName argVal = iota
	argPlaintextFile
	argSignerPEM
	argRecipientCertPEM
	nofArgs
)

func main() {
	exit := 0
	defer func() { os.Exit(exit) }()

	if len(os.Args) != int(nofArgs) {
		fmt.Printf("Usage:\n  %s <config.cnf.xml> <signer-cert-and-key.pem> <recipient-device-cert.pem>\n", os.Args[argProgName])
		exit = 1
		return
	}
	if !strings.HasSuffix(os.Args[argPlaintextFile], ".cnf.xml") {
		fmt.Println("Plaintext input must have a .cnf.xml suffix.")
		exit = 1
		return
	}

	log.SetLogger(logrusadapter.New(logrus.StandardLogger()))

	plaintext, err := os.ReadFile(os.Args[argPlaintextFile])
	if err != nil {
		fmt.Println("Failed to read plaintext configuration:", err)
		exit = 1
		return
	}

	signerPEM, err := os.ReadFile(os.Args[argSignerPEM])
	if err != nil {
		fmt.Println("Failed to read signer PEM:", err)
		exit = 1
		return
	}
	signerCert, signer, err := pki.LoadCertAndKeyFromPEM(signerPEM)
	if err != nil {
		fmt.Println("Failed to load signer certificate/key:", err)
		exit = 1
		return
	}
	rsaSignerKey, ok := signer.(*rsa.PrivateKey)
	if !ok {
		fmt.Println("Signer key is not RSA.")
		exit = 1
		return
	}

	recipientPEM, err := os.ReadFile(os.Args[argRecipientCertPEM])
	if err != nil {
		fmt.Println("Failed to read recipient device certificate:", err)
		exit = 1
		return
	}
	recipientCert, _, err := pki.LoadCertAndKeyFromPEM(recipientPEM)
	if err != nil {
		fmt.Println("Failed to load recipient device certificate:", err)
		exit = 1
		return
	}

	base := strings.TrimSuffix(os.Args[argPlaintextFile], ".cnf.xml")

	spec := enc.BuildSpec{
		SignerSubject:           pki.SubjectRFC4514(signerCert),
		SignerIssuer:            pki.IssuerRFC4514(signerCert),
		SignerSerial:            pki.SerialNumber(signerCert),
		SignerKey:               rsaSignerKey,
		HashAlgorithm:           pdu.HashSHA1,
		EncryptionHashAlgorithm: pdu.HashSHA1,
		Filename:                base,
		Timestamp:               uint32(time.Now().Unix()),
		RecipientCert:           recipientCert,
		PlaintextXML:            plaintext,
	}

	encFile, pointerFile, err := enc.BuildWithPointer(spec, uuid.New())
	if err != nil {
		fmt.Println("Failed to build encrypted envelope:", err)
		exit = 1
		return
	}

	encPath := base + ".enc.sgn"
	pointerPath := base + ".sgn"
	if err := os.WriteFile(encPath, encFile, 0644); err != nil {
		fmt.Println("Failed to write encrypted envelope:", err)
		exit = 1
		return
	}
	if err := os.WriteFile(pointerPath, pointerFile, 0644); err != nil {
		fmt.Println("Failed to write pointer envelope:", err)
		exit = 1
		return
	}

	// §4.4.3 step 9: the plaintext input is deleted only after both output files are on disk.
	if err := os.Remove(os.Args[argPlaintextFile]); err != nil {
		fmt.Println("Failed to remove plaintext input:", err)
		exit = 1
		return
	}

	fmt.Println("Wrote", encPath, "and", pointerPath)
}
