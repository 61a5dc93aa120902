// SPDX-License-Identifier: EPL-2.0

package audio

// ChannelMap names a fixed interleaved channel layout.
type ChannelMap int

const (
	TBE_8_2 ChannelMap = iota
	TBE_8
	TBE_6_2
	TBE_6
	TBE_4_2
	TBE_4
	TBE_8_PAIR0
	TBE_8_PAIR1
	TBE_8_PAIR2
	TBE_8_PAIR3
	TBE_CHANNEL0
	TBE_CHANNEL1
	TBE_CHANNEL2
	TBE_CHANNEL3
	TBE_CHANNEL4
	TBE_CHANNEL5
	TBE_CHANNEL6
	TBE_CHANNEL7
	HEADLOCKED_STEREO
	HEADLOCKED_CHANNEL0
	HEADLOCKED_CHANNEL1
	AMBIX_4
	AMBIX_9
	AMBIX_9_2
	STEREO
	INVALID
)

// NumChannelMaps is the number of valid maps; INVALID is not counted.
const NumChannelMaps = int(INVALID)

// MaxChannels is the widest layout any map describes.
const MaxChannels = 11

var channelMapNames = [...]string{
	TBE_8_2:             "TBE_8_2",
	TBE_8:               "TBE_8",
	TBE_6_2:             "TBE_6_2",
	TBE_6:               "TBE_6",
	TBE_4_2:             "TBE_4_2",
	TBE_4:               "TBE_4",
	TBE_8_PAIR0:         "TBE_8_PAIR0",
	TBE_8_PAIR1:         "TBE_8_PAIR1",
	TBE_8_PAIR2:         "TBE_8_PAIR2",
	TBE_8_PAIR3:         "TBE_8_PAIR3",
	TBE_CHANNEL0:        "TBE_CHANNEL0",
	TBE_CHANNEL1:        "TBE_CHANNEL1",
	TBE_CHANNEL2:        "TBE_CHANNEL2",
	TBE_CHANNEL3:        "TBE_CHANNEL3",
	TBE_CHANNEL4:        "TBE_CHANNEL4",
	TBE_CHANNEL5:        "TBE_CHANNEL5",
	TBE_CHANNEL6:        "TBE_CHANNEL6",
	TBE_CHANNEL7:        "TBE_CHANNEL7",
	HEADLOCKED_STEREO:   "HEADLOCKED_STEREO",
	HEADLOCKED_CHANNEL0: "HEADLOCKED_CHANNEL0",
	HEADLOCKED_CHANNEL1: "HEADLOCKED_CHANNEL1",
	AMBIX_4:             "AMBIX_4",
	AMBIX_9:             "AMBIX_9",
	AMBIX_9_2:           "AMBIX_9_2",
	STEREO:              "STEREO",
	INVALID:             "INVALID",
}

func (m ChannelMap) String() string {
	if m < 0 || m > INVALID {
		return "INVALID"
	}
	return channelMapNames[m]
}

// Valid reports whether m names a real layout.
func (m ChannelMap) Valid() bool {
	return m >= 0 && m < INVALID
}

// NumChannels returns the interleaved channel count of m, or 0 for INVALID.
func (m ChannelMap) NumChannels() int {
	switch m {
	case TBE_8_2:
		return 10
	case TBE_8, TBE_6_2:
		return 8
	case TBE_6, TBE_4_2:
		return 6
	case TBE_4, AMBIX_4:
		return 4
	case TBE_8_PAIR0, TBE_8_PAIR1, TBE_8_PAIR2, TBE_8_PAIR3,
		HEADLOCKED_STEREO, STEREO:
		return 2
	case TBE_CHANNEL0, TBE_CHANNEL1, TBE_CHANNEL2, TBE_CHANNEL3,
		TBE_CHANNEL4, TBE_CHANNEL5, TBE_CHANNEL6, TBE_CHANNEL7,
		HEADLOCKED_CHANNEL0, HEADLOCKED_CHANNEL1:
		return 1
	case AMBIX_9:
		return 9
	case AMBIX_9_2:
		return 11
	default:
		return 0
	}
}

// MapForChannels picks the full-layout map that carries n channels. It is
// used when an asset does not match the map it was opened with.
func MapForChannels(n int) (ChannelMap, bool) {
	switch n {
	case 1:
		return TBE_CHANNEL0, true
	case 2:
		return STEREO, true
	case 4:
		return TBE_4, true
	case 6:
		return TBE_6, true
	case 8:
		return TBE_8, true
	case 9:
		return AMBIX_9, true
	case 10:
		return TBE_8_2, true
	case 11:
		return AMBIX_9_2, true
	default:
		return INVALID, false
	}
}
