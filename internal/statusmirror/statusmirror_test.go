package statusmirror

import "testing"

func TestKey(t *testing.T) {
	cases := []struct {
		jobID string
		want  string
	}{
		{"abc-123", "ingest:job:abc-123"},
		{"", "ingest:job:"},
	}
	for _, tc := range cases {
		if got := Key(tc.jobID); got != tc.want {
			t.Errorf("Key(%q) = %q, want %q", tc.jobID, got, tc.want)
		}
	}
}
