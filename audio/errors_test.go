// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestEngineError_Values(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  EngineError
		want int
	}{
		{ErrQueueFull, -21},
		{ErrBadThread, -20},
		{ErrNotSupported, -19},
		{ErrInvalidHeader, -13},
		{ErrInvalidChannelCount, -11},
		{ErrOpeningFile, -9},
		{ErrInvalidBufferSize, -4},
		{ErrNoObjectsInPool, -2},
		{ErrFail, -1},
		{OK, 0},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			t.Parallel()

			if int(tt.err) != tt.want {
				t.Errorf("%v = %d, want %d", tt.err, int(tt.err), tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want EngineError
	}{
		{"nil", nil, OK},
		{"plain code", ErrQueueFull, ErrQueueFull},
		{"wrapped code", fmt.Errorf("enqueue: %w", ErrBadThread), ErrBadThread},
		{"wrap helper", Wrap(ErrOpeningFile, io.ErrUnexpectedEOF), ErrOpeningFile},
		{"foreign error", io.EOF, ErrFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	t.Parallel()

	err := Wrap(ErrInvalidHeader, io.ErrUnexpectedEOF)

	if !errors.Is(err, ErrInvalidHeader) {
		t.Error("errors.Is(err, ErrInvalidHeader) = false")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is(err, io.ErrUnexpectedEOF) = false")
	}
	if Wrap(ErrFail, nil) != ErrFail {
		t.Error("Wrap(code, nil) should return the bare code")
	}
}

func TestEngineError_UnknownString(t *testing.T) {
	t.Parallel()

	if got := EngineError(-99).Error(); got != "engine error -99" {
		t.Errorf("Error() = %q", got)
	}
}
