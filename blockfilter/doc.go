// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockfilter provides per-block view tag filters for confidential
transaction scanning.

These filters are a reversal of how bloom filters are typically used by a
light client: the block producer commits to a filter over the view tags of
every confidential output in the block, and scanning clients match their own
locally derived tags against the filter rather than uploading key material to
other nodes.  If a tag matches, the client should fetch the block and attempt
to decrypt the matching outputs; if it does not, the block is certainly
irrelevant and can be skipped.

The filter trades a bounded, tunable false-positive rate for that speedup and
never produces false negatives.  Producer and consumer share a deterministic
index derivation, so a filter built here matches the same tags on any
conforming implementation.
*/
package blockfilter
