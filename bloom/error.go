// Copyright (c) 2024-2026 The Perimera developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bloom

import "errors"

// ErrMismatchedFilters signifies an attempt to merge filters that were
// created with different size or hash function parameters.
var ErrMismatchedFilters = errors.New("mismatched filter parameters")
