package harvester

import (
	"regexp"
	"testing"
	"time"
)

func TestNamer_Next(t *testing.T) {
	var n Namer
	at := time.Date(2026, 10, 19, 8, 30, 5, 0, time.UTC)

	first := n.Next("cam1", at)
	second := n.Next("cam1", at)

	if first != "cam1_20261019_083005_000001.jpg" {
		t.Errorf("unexpected name: %s", first)
	}
	if first == second {
		t.Errorf("names within the same second must differ: %s", first)
	}
	if ok, _ := regexp.MatchString(`^cam1_\d{8}_\d{6}_\d{6}\.jpg$`, second); !ok {
		t.Errorf("unexpected layout: %s", second)
	}
}

func TestVideoURL(t *testing.T) {
	cases := []struct {
		base, uri, want string
	}{
		{"http://host/stream/", "seg42.ts", "http://host/stream/seg42.ts"},
		{"http://host/stream/", "https://cdn/seg1.ts", "https://cdn/seg1.ts"},
		{"", "http://cdn/seg2.ts", "http://cdn/seg2.ts"},
	}
	for _, c := range cases {
		if got := VideoURL(c.base, c.uri); got != c.want {
			t.Errorf("VideoURL(%q, %q) = %q, want %q", c.base, c.uri, got, c.want)
		}
	}
}
