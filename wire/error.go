// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"github.com/pkg/errors"
)

var (
	// ErrTruncated means a read ran past the end of the buffer.
	ErrTruncated = errors.New("Truncated")

	// ErrTrailingBytes means a strict deserialization left unconsumed bytes.
	ErrTrailingBytes = errors.New("Trailing Bytes")

	// ErrInvalidVarInt means a variable length integer is inconsistent with its context, for
	// example an element count above the maximum the codec accepts.
	ErrInvalidVarInt = errors.New("Invalid VarInt")

	// ErrMissingIssuance means an input was added with the issuance flag bit set but no issuance
	// record.
	ErrMissingIssuance = errors.New("Missing Issuance")

	// ErrOutOfRange means an operation addressed a non-existent input or output.
	ErrOutOfRange = errors.New("Out Of Range")
)
