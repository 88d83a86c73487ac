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

// trustlist_parse prints a record-list (trust-list) envelope's header and records, and reports
// whether its signature verifies against the embedded signing-authority certificate.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sipsentry/tlvenvelope/log"
	"github.com/sipsentry/tlvenvelope/log/logrusadapter"
	"github.com/sipsentry/tlvenvelope/trustlist"
)

type argVal int

const (
	argProgName argVal = iota
	argTrustListFile
	nofArgs
)

func main() {
	exit := 0
	defer func() { os.Exit(exit) }()

	if len(os.Args) != int(nofArgs) {
		fmt.Printf("Usage:\n  %s <trustlist.tlv>\n", os.Args[argProgName])
		exit = 1
		return
	}

	log.SetLogger(logrusadapter.New(logrus.StandardLogger()))

	file, err := os.ReadFile(os.Args[argTrustListFile])
	if err != nil {
		fmt.Println("Failed to read trust list file:", err)
		exit = 1
		return
	}

	env, err := trustlist.Parse(file)
	if err != nil {
		fmt.Print(env.Header)
		fmt.Println("Failed to parse trust list:", err)
		exit = 1
		return
	}
	fmt.Print(env.Header)

	for i, rec := range env.Records {
		fmt.Printf("Record %d:\n%s\n", i, rec.String())
	}

	if err := trustlist.Verify(file, env); err != nil {
		fmt.Println("Invalid signature:", err)
		exit = 1
		return
	}
	fmt.Println("Valid signature")
}
