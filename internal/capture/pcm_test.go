package capture

import "testing"

func TestAppendMono(t *testing.T) {
	t.Run("stereo averages channels", func(t *testing.T) {
		interleaved := []int16{100, 200, -50, 50, 7, 9}
		got := appendMono(nil, interleaved, 2)
		want := []int16{150, 0, 8}

		if len(got) != len(want) {
			t.Fatalf("got %d samples, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
			}
		}
	})

	t.Run("mono passes through", func(t *testing.T) {
		got := appendMono(nil, []int16{1, 2, 3}, 1)
		if len(got) != 3 || got[0] != 1 || got[2] != 3 {
			t.Errorf("mono passthrough broken: %v", got)
		}
	})

	t.Run("partial trailing frame dropped", func(t *testing.T) {
		got := appendMono(nil, []int16{10, 20, 30}, 2)
		if len(got) != 1 || got[0] != 15 {
			t.Errorf("got %v, want single averaged frame", got)
		}
	})

	t.Run("appends to existing buffer", func(t *testing.T) {
		got := appendMono([]int16{1}, []int16{4, 6}, 2)
		if len(got) != 2 || got[0] != 1 || got[1] != 5 {
			t.Errorf("got %v", got)
		}
	})
}

func TestSamplesBytesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768}
	back := bytesToSamples(samplesToBytes(samples))

	if len(back) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(back), len(samples))
	}
	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("sample %d = %d, want %d", i, back[i], samples[i])
		}
	}
}
