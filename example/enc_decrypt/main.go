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

// enc_decrypt recovers the plaintext device configuration from an encrypted envelope (§4.4.3
// decrypt path), writing it back to the base path and unlinking the pointer and encrypted files.
//
// Usage:
//
//	enc_decrypt <base.enc.sgn> <recipient-device-key.pem>
package main

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sipsentry/tlvenvelope/enc"
	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/log/logrusadapter"
	"github.com/sipsentry/tlvenvelope/pki"
)

type argVal int

const (
	argProgName argVal = iota
	argEncFile
	argRecipientKeyPEM
	nofArgs
)

func main() {
	exit := 0
	defer func() { os.Exit(exit) }()

	if len(os.Args) != int(nofArgs) {
		fmt.Printf("Usage:\n  %s <base.enc.sgn> <recipient-device-key.pem>\n", os.Args[argProgName])
		exit = 1
		return
	}
	if !strings.HasSuffix(os.Args[argEncFile], ".enc.sgn") {
		fmt.Println("Encrypted envelope input must have an .enc.sgn suffix.")
		exit = 1
		return
	}

	log.SetLogger(logrusadapter.New(logrus.StandardLogger()))

	file, err := os.ReadFile(os.Args[argEncFile])
	if err != nil {
		fmt.Println("Failed to read encrypted envelope:", err)
		exit = 1
		return
	}

	keyPEM, err := os.ReadFile(os.Args[argRecipientKeyPEM])
	if err != nil {
		fmt.Println("Failed to read recipient key:", err)
		exit = 1
		return
	}
	_, signer, err := pki.LoadCertAndKeyFromPEM(keyPEM)
	if err != nil {
		fmt.Println("Failed to load recipient key:", err)
		exit = 1
		return
	}
	recipientKey, ok := signer.(*rsa.PrivateKey)
	if !ok {
		fmt.Println("Recipient key is not RSA.")
		exit = 1
		return
	}

	env, err := enc.Parse(file)
	if err != nil {
		fmt.Println("Failed to parse encrypted envelope:", err)
		exit = 1
		return
	}

	plaintext, err := enc.Decrypt(env, recipientKey)
	if err != nil {
		fmt.Println("Failed to decrypt configuration:", err)
		exit = 1
		return
	}

	base := strings.TrimSuffix(os.Args[argEncFile], ".enc.sgn")
	if err := os.WriteFile(base, plaintext, 0644); err != nil {
		fmt.Println("Failed to write decrypted configuration:", err)
		exit = 1
		return
	}

	pointerPath := base + ".sgn"
	if err := os.Remove(pointerPath); err != nil {
		fmt.Println("Failed to remove pointer envelope:", err)
		exit = 1
		return
	}
	if err := os.Remove(os.Args[argEncFile]); err != nil {
		fmt.Println("Failed to remove encrypted envelope:", err)
		exit = 1
		return
	}

	fmt.Println("Wrote", base)
}
