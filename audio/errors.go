// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrNotSeekable    = errors.New("source is not seekable")
)

// EngineError is the numeric result code returned across the engine API.
// Zero means success and is never returned as an error value; callers get
// nil instead.
type EngineError int

const (
	ErrQueueFull               EngineError = -21
	ErrBadThread               EngineError = -20
	ErrNotSupported            EngineError = -19
	ErrNoAudioDevice           EngineError = -18
	ErrCouldNotConnect         EngineError = -17
	ErrMemoryMapFail           EngineError = -16
	ErrInvalidURLFormat        EngineError = -15
	ErrOpeningTempFile         EngineError = -14
	ErrInvalidHeader           EngineError = -13
	ErrCurlFail                EngineError = -12
	ErrInvalidChannelCount     EngineError = -11
	ErrCannotInitDecoder       EngineError = -10
	ErrOpeningFile             EngineError = -9
	ErrNoAsset                 EngineError = -8
	ErrCannotAllocateMemory    EngineError = -7
	ErrCannotCreateAudioDevice EngineError = -6
	ErrCannotInitialiseCore    EngineError = -5
	ErrInvalidBufferSize       EngineError = -4
	ErrInvalidSampleRate       EngineError = -3
	ErrNoObjectsInPool         EngineError = -2
	ErrFail                    EngineError = -1
	OK                         EngineError = 0
)

var engineErrorNames = map[EngineError]string{
	ErrQueueFull:               "queue full",
	ErrBadThread:               "called from the wrong thread",
	ErrNotSupported:            "not supported",
	ErrNoAudioDevice:           "no audio device",
	ErrCouldNotConnect:         "could not connect",
	ErrMemoryMapFail:           "memory map failed",
	ErrInvalidURLFormat:        "invalid url format",
	ErrOpeningTempFile:         "error opening temp file",
	ErrInvalidHeader:           "invalid header",
	ErrCurlFail:                "network transfer failed",
	ErrInvalidChannelCount:     "invalid channel count",
	ErrCannotInitDecoder:       "cannot initialise decoder",
	ErrOpeningFile:             "error opening file",
	ErrNoAsset:                 "no asset",
	ErrCannotAllocateMemory:    "cannot allocate memory",
	ErrCannotCreateAudioDevice: "cannot create audio device",
	ErrCannotInitialiseCore:    "cannot initialise core",
	ErrInvalidBufferSize:       "invalid buffer size",
	ErrInvalidSampleRate:       "invalid sample rate",
	ErrNoObjectsInPool:         "no objects in pool",
	ErrFail:                    "fail",
	OK:                         "ok",
}

func (e EngineError) Error() string {
	if s, ok := engineErrorNames[e]; ok {
		return s
	}
	return fmt.Sprintf("engine error %d", int(e))
}

// Code maps err to its EngineError. nil maps to OK, errors that carry no
// code map to ErrFail.
func Code(err error) EngineError {
	if err == nil {
		return OK
	}

	var code EngineError
	if errors.As(err, &code) {
		return code
	}

	return ErrFail
}

// Wrap annotates err while keeping code reachable through errors.Is.
func Wrap(code EngineError, err error) error {
	if err == nil {
		return code
	}
	return fmt.Errorf("%w: %w", code, err)
}
