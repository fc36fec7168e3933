// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package binidx

import "errors"

// ErrBadFormat is returned from Open when the magic number doesn't
// match either supported index version.
var ErrBadFormat = errors.New("binidx: bad format")

// ErrOutOfRange is returned from Index.AtChecked when the requested
// offset falls outside [0, 4^nt].
var ErrOutOfRange = errors.New("binidx: index out of range")
