// SPDX-License-Identifier: EPL-2.0

package audio

import "testing"

func TestChannelMap_NumChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		m    ChannelMap
		want int
	}{
		{TBE_8_2, 10},
		{TBE_8, 8},
		{TBE_6_2, 8},
		{TBE_6, 6},
		{TBE_4_2, 6},
		{TBE_4, 4},
		{TBE_8_PAIR0, 2},
		{TBE_8_PAIR3, 2},
		{TBE_CHANNEL0, 1},
		{TBE_CHANNEL7, 1},
		{HEADLOCKED_STEREO, 2},
		{HEADLOCKED_CHANNEL0, 1},
		{HEADLOCKED_CHANNEL1, 1},
		{AMBIX_4, 4},
		{AMBIX_9, 9},
		{AMBIX_9_2, 11},
		{STEREO, 2},
		{INVALID, 0},
		{ChannelMap(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.m.String(), func(t *testing.T) {
			t.Parallel()

			if got := tt.m.NumChannels(); got != tt.want {
				t.Errorf("%v.NumChannels() = %d, want %d", tt.m, got, tt.want)
			}
			// pure function of the enum
			if got := tt.m.NumChannels(); got != tt.want {
				t.Errorf("second call = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestChannelMap_AllValidMapsFitMaxChannels(t *testing.T) {
	t.Parallel()

	for m := ChannelMap(0); m < INVALID; m++ {
		n := m.NumChannels()
		if n <= 0 || n > MaxChannels {
			t.Errorf("%v.NumChannels() = %d, want 1..%d", m, n, MaxChannels)
		}
		if !m.Valid() {
			t.Errorf("%v.Valid() = false", m)
		}
	}
	if INVALID.Valid() {
		t.Error("INVALID.Valid() = true")
	}
}

func TestMapForChannels(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 4, 6, 8, 9, 10, 11} {
		m, ok := MapForChannels(n)
		if !ok {
			t.Errorf("MapForChannels(%d) ok = false", n)
			continue
		}
		if m.NumChannels() != n {
			t.Errorf("MapForChannels(%d) = %v with %d channels", n, m, m.NumChannels())
		}
	}

	if _, ok := MapForChannels(3); ok {
		t.Error("MapForChannels(3) ok = true, want false")
	}
}
