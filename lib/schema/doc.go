// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the request and response bodies of the
// operator socket actions. lottery-server produces them and
// lottery-ctl consumes them, printing them as JSON, so they carry
// `json` tags (see lib/codec).
package schema
