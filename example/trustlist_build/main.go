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

// trustlist_build assembles a record-list (trust-list) envelope from a signing-authority PEM
// (cert+key) plus any number of additional role-tagged member certificates.
//
// Usage:
//
//	trustlist_build <out.tlv> <signing-authority.pem> <role>=<member-cert.pem> [<role>=<member-cert.pem> ...]
//
// <role> is one of: call-manager, call-manager-plus-file-server, file-server, auth-proxy,
// app-server, telephony-verification-service.
package main

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/log/logrusadapter"
	"github.com/sipsentry/tlvenvelope/pdu"
	"github.com/sipsentry/tlvenvelope/pki"
	"github.com/sipsentry/tlvenvelope/trustlist"
)

type argVal int

const (
	argProgName argVal = iota
	argOutFile
	argAuthorityPEM
	minArgs
)

func roleFromName(name string) (trustlist.Role, bool) {
	switch name {
	case "call-manager":
		return trustlist.RoleCallManager, true
	case "call-manager-plus-file-server":
		return trustlist.RoleCallManagerPlusFileServer, true
	case "file-server":
		return trustlist.RoleFileServer, true
	case "auth-proxy":
		return trustlist.RoleAuthProxy, true
	case "app-server":
		return trustlist.RoleAppServer, true
	case "telephony-verification-service":
		return trustlist.RoleTelephonyVerificationSvc, true
	default:
		return 0, false
	}
}

func main() {
	exit := 0
	defer func() { os.Exit(exit) }()

	if len(os.Args) < int(minArgs) {
		fmt.Printf("Usage:\n  %s <out.tlv> <signing-authority.pem> <role>=<member-cert.pem> ...\n", os.Args[argProgName])
		exit = 1
		return
	}

	log.SetLogger(logrusadapter.New(logrus.StandardLogger()))

	pemData, err := os.ReadFile(os.Args[argAuthorityPEM])
	if err != nil {
		fmt.Println("Failed to read signing-authority PEM:", err)
		exit = 1
		return
	}
	authorityCert, signer, err := pki.LoadCertAndKeyFromPEM(pemData)
	if err != nil {
		fmt.Println("Failed to load signing-authority certificate/key:", err)
		exit = 1
		return
	}
	rsaKey, ok := signer.(*rsa.PrivateKey)
	if !ok {
		fmt.Println("Signing-authority key is not RSA.")
		exit = 1
		return
	}

	authorityRecord, err := trustlist.RecordFromCertificate(authorityCert, trustlist.RoleSigningAuthority)
	if err != nil {
		fmt.Println("Failed to build signing-authority record:", err)
		exit = 1
		return
	}
	records := []trustlist.CertificateRecord{authorityRecord}

	for _, arg := range os.Args[argAuthorityPEM+1:] {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			fmt.Println("Malformed role=cert-path argument:", arg)
			exit = 1
			return
		}
		role, ok := roleFromName(parts[0])
		if !ok {
			fmt.Println("Unknown role:", parts[0])
			exit = 1
			return
		}
		memberPEM, err := os.ReadFile(parts[1])
		if err != nil {
			fmt.Println("Failed to read member certificate:", err)
			exit = 1
			return
		}
		memberCert, _, err := pki.LoadCertAndKeyFromPEM(memberPEM)
		if err != nil {
			fmt.Println("Failed to load member certificate:", err)
			exit = 1
			return
		}
		record, err := trustlist.RecordFromCertificate(memberCert, role)
		if err != nil {
			fmt.Println("Failed to build member record:", err)
			exit = 1
			return
		}
		records = append(records, record)
	}

	file, err := trustlist.Build(trustlist.BuildSpec{
		SignerSubject: pki.SubjectRFC4514(authorityCert),
		SignerIssuer:  pki.IssuerRFC4514(authorityCert),
		SignerSerial:  pki.SerialNumber(authorityCert),
		SignerKey:     rsaKey,
		HashAlgorithm: pdu.HashSHA512,
		Filename:      os.Args[argOutFile],
		Timestamp:     uint32(time.Now().Unix()),
		LayoutVersion: [2]byte{1, 1},
		Records:       records,
	})
	if err != nil {
		fmt.Println("Failed to build trust list:", err)
		exit = 1
		return
	}

	if err := os.WriteFile(os.Args[argOutFile], file, 0644); err != nil {
		fmt.Println("Failed to write trust list:", err)
		exit = 1
		return
	}
	fmt.Println("Wrote", os.Args[argOutFile])
}
