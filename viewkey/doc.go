// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package viewkey implements view tag derivation for confidential transaction
outputs.

A view key is a secp256k1 key pair used solely to detect (and later decrypt)
outputs addressed to its holder; it carries no spending authority.  For every
confidential output, the transaction creator performs an ECDH exchange between
the output's ephemeral key and the recipient's public view key and compresses
the shared point into a fixed-length pseudorandom tag.  The recipient derives
the identical tag from their private view key and the output's public
ephemeral key.  Tags are what block producers insert into per-block filters
and what scanning clients test against them.

Without the private view key, a tag is computationally indistinguishable from
a uniformly random 32-byte string, so publishing tags (or filters built from
them) reveals nothing about output ownership.
*/
package viewkey
