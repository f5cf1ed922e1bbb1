package config

import "testing"

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"1700000000", 1700000000, false},
		{"2023-11-14T22:13:20Z", 1700000000, false},
		{" 1700000000 ", 1700000000, false},
		{"not-a-time", 0, true},
		{"2023-11-14", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseTimestamp(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) failed: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTimestamp(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParsePairs(t *testing.T) {
	pairs, err := ParsePairs([]string{"0xabc=0xdef", " token = feed "})
	if err != nil {
		t.Fatalf("ParsePairs failed: %v", err)
	}
	if pairs["0xabc"] != "0xdef" {
		t.Fatalf("pairs[0xabc] = %s, want 0xdef", pairs["0xabc"])
	}
	if pairs["token"] != "feed" {
		t.Fatalf("pairs[token] = %s, want feed (whitespace trimmed)", pairs["token"])
	}

	for _, bad := range []string{"no-separator", "=value", "key="} {
		if _, err := ParsePairs([]string{bad}); err == nil {
			t.Fatalf("ParsePairs(%q) expected error", bad)
		}
	}
}
