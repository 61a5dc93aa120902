// SPDX-License-Identifier: EPL-2.0

package opus

import "errors"

var (
	ErrNotOpusFile         = errors.New("not an Ogg Opus file")
	ErrInvalidHeader       = errors.New("invalid OpusHead packet")
	ErrUnsupportedChannels = errors.New("unsupported Opus channel count")
)
