package capture

import (
	"errors"
	"testing"
)

func TestParseShareURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantLat float64
		wantLng float64
	}{
		{
			name:    "plain share link",
			url:     "https://wplace.live/?lat=35.225&lng=-106.60&zoom=15",
			wantLat: 35.225,
			wantLng: -106.60,
		},
		{
			name:    "no zoom parameter",
			url:     "https://wplace.live/?lat=51.5&lng=-0.12",
			wantLat: 51.5,
			wantLng: -0.12,
		},
		{
			name:    "wrapper link with place=",
			url:     "https://example.com/go?place=https%3A%2F%2Fwplace.live%2F%3Flat%3D-33.8688%26lng%3D151.2093%26zoom%3D12",
			wantLat: -33.8688,
			wantLng: 151.2093,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseShareURL(tt.url)
			if err != nil {
				t.Fatalf("ParseShareURL(%q) error: %v", tt.url, err)
			}
			if p.Lat != tt.wantLat || p.Lng != tt.wantLng {
				t.Errorf("got (%v, %v), want (%v, %v)", p.Lat, p.Lng, tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestParseShareURL_Invalid(t *testing.T) {
	urls := []string{
		"https://wplace.live/",
		"https://wplace.live/?lat=35.2",
		"https://wplace.live/?lng=-106.6",
		"https://wplace.live/?lat=abc&lng=-106.6",
		"https://wplace.live/?lat=35.2&lng=east",
		"https://wplace.live/?lat=95&lng=0",
		"https://wplace.live/?lat=0&lng=181",
		"https://example.com/go?place=notaurl%",
	}
	for _, u := range urls {
		_, err := ParseShareURL(u)
		if err == nil {
			t.Errorf("ParseShareURL(%q) should fail", u)
			continue
		}
		var urlErr *InvalidURLError
		if !errors.As(err, &urlErr) {
			t.Errorf("ParseShareURL(%q) error type = %T, want *InvalidURLError", u, err)
		}
	}
}
