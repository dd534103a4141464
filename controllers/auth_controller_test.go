package controllers

import "testing"

func TestIsSafeRedirect(t *testing.T) {
	tests := []struct {
		next string
		want bool
	}{
		{"/", true},
		{"/follow/", true},
		{"/profile/leo/?page=2", true},
		{"/posts/1/#comments", true},
		{"", false},
		{"follow/", false},
		{"//evil.example", false},
		{"///evil.example", false},
		{"/\\evil.example", false},
		{"/\t/evil.example", false},
		{"/\n/evil.example", false},
		{"/\r/evil.example", false},
		{"/\x00/evil.example", false},
		{"/\x7f/evil.example", false},
		{"https://evil.example/", false},
		{"javascript:alert(1)", false},
		{"/%2F/evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			if got := isSafeRedirect(tt.next); got != tt.want {
				t.Errorf("isSafeRedirect(%q) = %v, want %v", tt.next, got, tt.want)
			}
		})
	}
}
