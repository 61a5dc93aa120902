// SPDX-License-Identifier: EPL-2.0

// Package config holds the settings an engine is created with.
//
// EngineInitSettings is consumed once by engine.New and never read again,
// so changing a value after creation has no effect. Start from Default and
// override what you need:
//
//	s := config.Default()
//	s.Audio.SampleRate = 48000
//	s.Audio.DeviceType = config.DeviceDisabled
//	if err := s.Validate(); err != nil {
//	    return err
//	}
//
// # Environment
//
// FromEnv builds settings from SPAT360_* variables, read from the process
// environment and from .env files. Process variables win over file values.
//
//	SPAT360_SAMPLE_RATE=48000
//	SPAT360_BUFFER_SIZE=512
//	SPAT360_DEVICE=custom:USB Audio
//	SPAT360_OBJECT_POOL=32
//	SPAT360_DECODER_THREAD=false
//	SPAT360_RENDERER=virtual_speaker
//	SPAT360_ASSET_ROOT=/opt/game/assets
package config
