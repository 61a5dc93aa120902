// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ik5/spat360/render"
)

const envPrefix = "SPAT360_"

// FromEnv returns Default overlaid with the SPAT360_* variables found in
// the process environment and in files. With no files it reads ./.env when
// present. The process environment is never modified.
func FromEnv(files ...string) (EngineInitSettings, error) {
	s := Default()

	vars, err := readEnvFiles(files)
	if err != nil {
		return s, err
	}

	lookup := func(key string) (string, bool) {
		key = envPrefix + key
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SAMPLE_RATE", &s.Audio.SampleRate},
		{"BUFFER_SIZE", &s.Audio.BufferSize},
		{"QUEUE_POOL", &s.Memory.SpatDecoderQueuePoolSize},
		{"FILE_POOL", &s.Memory.SpatDecoderFilePoolSize},
		{"OBJECT_POOL", &s.Memory.AudioObjectPoolSize},
		{"VIRTUALIZER_POOL", &s.Memory.SpeakersVirtualizerPoolSize},
		{"QUEUE_SIZE_PER_CHANNEL", &s.Memory.SpatQueueSizePerChannel},
	}
	for _, f := range ints {
		v, ok := lookup(f.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return s, fmt.Errorf("%s%s=%q: %w", envPrefix, f.key, v, ErrInvalidValue)
		}
		*f.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"EVENT_THREAD", &s.Threads.UseEventThread},
		{"DECODER_THREAD", &s.Threads.UseDecoderThread},
	}
	for _, f := range bools {
		v, ok := lookup(f.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return s, fmt.Errorf("%s%s=%q: %w", envPrefix, f.key, v, ErrInvalidValue)
		}
		*f.dst = b
	}

	if v, ok := lookup("DEVICE"); ok {
		if err := parseDevice(&s.Audio, v); err != nil {
			return s, err
		}
	}

	if v, ok := lookup("RENDERER"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "ambisonic":
			s.Experimental.AmbisonicRenderer = render.Ambisonic
		case "virtual_speaker":
			s.Experimental.AmbisonicRenderer = render.VirtualSpeaker
		default:
			return s, fmt.Errorf("%sRENDERER=%q: %w", envPrefix, v, ErrUnknownValue)
		}
	}

	if v, ok := lookup("ASSET_ROOT"); ok {
		s.Platform.AssetRoot = v
	}

	return s, nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		vars, err := godotenv.Read()
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
		return vars, nil
	}

	vars, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("reading env files: %w", err)
	}
	return vars, nil
}

// parseDevice accepts default, disabled or custom:<name>.
func parseDevice(a *AudioSettings, v string) error {
	v = strings.TrimSpace(v)
	kind, name, _ := strings.Cut(v, ":")

	switch strings.ToLower(kind) {
	case "default":
		a.DeviceType = DeviceDefault
	case "disabled":
		a.DeviceType = DeviceDisabled
	case "custom":
		if name == "" {
			return fmt.Errorf("%sDEVICE=%q: missing device name: %w", envPrefix, v, ErrInvalidValue)
		}
		a.DeviceType = DeviceCustom
		a.CustomDeviceName = name
	default:
		return fmt.Errorf("%sDEVICE=%q: %w", envPrefix, v, ErrUnknownValue)
	}
	return nil
}
