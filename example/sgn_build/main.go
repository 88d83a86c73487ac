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

// sgn_build signs an arbitrary payload file into an opaque-profile (SGN) envelope.
package main

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/log/logrusadapter"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/sipsentry/tlvenvelope/pki"
	"github.com/sipsentry/tlvenvelope/sgn"
)

type argVal int

const (
	argProgName argVal = iota
	argPayloadFile
	argSignerPEM
	nofArgs
)

func main() {
	exit := 0
	defer func() { os.Exit(exit) }()

	if len(os.Args) != int(nofArgs) {
		fmt.Printf("Usage:\n  %s <payload-file> <signer-cert-and-key.pem>\n", os.Args[argProgName])
		exit = 1
		return
	}

	log.SetLogger(logrusadapter.New(logrus.StandardLogger()))

	payload, err := os.ReadFile(os.Args[argPayloadFile])
	if err != nil {
		fmt.Println("Failed to read payload file:", err)
		exit = 1
		return
	}

	pemData, err := os.ReadFile(os.Args[argSignerPEM])
	if err != nil {
		fmt.Println("Failed to read signer PEM file:", err)
		exit = 1
		return
	}
	cert, signer, err := pki.LoadCertAndKeyFromPEM(pemData)
	if err != nil {
		fmt.Println("Failed to load signer certificate/key:", err)
		exit = 1
		return
	}
	rsaKey, ok := signer.(*rsa.PrivateKey)
	if !ok {
		fmt.Println("Signer key is not RSA.")
		exit = 1
		return
	}

	file, err := sgn.Build(sgn.BuildSpec{
		SignerSubject: pki.SubjectRFC4514(cert),
		SignerIssuer:  pki.IssuerRFC4514(cert),
		SignerSerial:  pki.SerialNumber(cert),
		SignerKey:     rsaKey,
		HashAlgorithm: pdu.HashSHA1,
		Filename:      os.Args[argPayloadFile],
		Timestamp:     uint32(time.Now().Unix()),
		Payload:       payload,
	})
	if err != nil {
		fmt.Println("Failed to build envelope:", err)
		exit = 1
		return
	}

	outPath := os.Args[argPayloadFile] + ".sgn"
	if err := os.WriteFile(outPath, file, 0644); err != nil {
		fmt.Println("Failed to write envelope file:", err)
		exit = 1
		return
	}
	fmt.Println("Wrote", outPath)
}
