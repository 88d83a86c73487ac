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

// sgn_strip verifies (if a signer certificate is given) and strips an opaque-profile (SGN)
// envelope back to its original payload bytes.
package main

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/log/logrusadapter"
	"github.com/sipsentry/tlvenvelope/pki"
	"github.com/sipsentry/tlvenvelope/sgn"
)

type argVal int

const (
	argProgName argVal = iota
	argEnvelopeFile
	minArgs
)

// argSignerCertPEM is the optional third argument's index: a signer certificate to verify
// against. Omit it to skip verification and just strip.
const argSignerCertPEM = 2

func main() {
	exit := 0
	defer func() { os.Exit(exit) }()

	if len(os.Args) < int(minArgs) {
		fmt.Printf("Usage:\n  %s <envelope-file> [signer-cert.pem]\n", os.Args[argProgName])
		exit = 1
		return
	}

	log.SetLogger(logrusadapter.New(logrus.StandardLogger()))

	file, err := os.ReadFile(os.Args[argEnvelopeFile])
	if err != nil {
		fmt.Println("Failed to read envelope file:", err)
		exit = 1
		return
	}

	env, err := sgn.Parse(file)
	if err != nil {
		fmt.Print(env.Header)
		fmt.Println("Failed to parse envelope:", err)
		exit = 1
		return
	}
	fmt.Print(env.Header)

	if len(os.Args) > argSignerCertPEM {
		pemData, err := os.ReadFile(os.Args[argSignerCertPEM])
		if err != nil {
			fmt.Println("Failed to read signer certificate:", err)
			exit = 1
			return
		}
		cert, _, err := pki.LoadCertAndKeyFromPEM(pemData)
		if err != nil {
			fmt.Println("Failed to load signer certificate:", err)
			exit = 1
			return
		}
		pub, ok := cert.PublicKey.(*rsa.PublicKey)
		if !ok {
			fmt.Println("Signer certificate does not carry an RSA public key.")
			exit = 1
			return
		}
		if err := sgn.Verify(file, env, pub); err != nil {
			fmt.Println("Invalid signature:", err)
		} else {
			fmt.Println("Valid signature")
		}
	}

	// §6 strip path: input.rsplit('.', 1)[0] - drop the envelope's own extension (.sgn, .sha512, ...).
	outPath := os.Args[argEnvelopeFile]
	if idx := strings.LastIndex(outPath, "."); idx >= 0 {
		outPath = outPath[:idx]
	}
	if err := os.WriteFile(outPath, env.Payload, 0644); err != nil {
		fmt.Println("Failed to write stripped payload:", err)
		exit = 1
		return
	}
	fmt.Println("Wrote", outPath)
}
