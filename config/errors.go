// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrInvalidValue = errors.New("invalid setting value")
	ErrUnknownValue = errors.New("unknown setting value")
)
