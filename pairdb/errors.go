// Copyright 2013-2015, Derrick Wood <dwood@cs.jhu.edu>
// Copyright 2023 The bit Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package pairdb

import "errors"

// ErrBadFormat is returned from Open when the magic number doesn't
// match or the value width isn't the one value width this package
// supports.
var ErrBadFormat = errors.New("pairdb: bad format")
