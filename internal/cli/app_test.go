package cli

import (
	"testing"
)

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMessage string
		wantMinutes int
		wantErr     bool
	}{
		{"simple", "Take a break@30", "Take a break", 30, false},
		{"message contains at sign", "email me@home@15", "email me@home", 15, false},
		{"trims whitespace", "  Stretch  @ 45 ", "Stretch", 45, false},
		{"missing separator", "Take a break", "", 0, true},
		{"empty message", "@30", "", 0, true},
		{"blank message", "   @30", "", 0, true},
		{"non-numeric minutes", "msg@soon", "", 0, true},
		{"zero minutes", "msg@0", "", 0, true},
		{"negative minutes", "msg@-5", "", 0, true},
		{"above max", "msg@20000", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, minutes, err := parseSeed(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseSeed(%q) expected error, got %q/%d", tt.input, message, minutes)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSeed(%q): %v", tt.input, err)
			}
			if message != tt.wantMessage {
				t.Errorf("message = %q, want %q", message, tt.wantMessage)
			}
			if minutes != tt.wantMinutes {
				t.Errorf("minutes = %d, want %d", minutes, tt.wantMinutes)
			}
		})
	}
}
