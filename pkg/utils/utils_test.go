package utils

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id1 := NewVideoID()
	id2 := NewVideoID()

	if id1 == id2 {
		t.Error("expected different IDs")
	}
	if !strings.HasPrefix(id1, "vid_") {
		t.Errorf("expected prefix 'vid_', got %s", id1)
	}
	if len(id1) != len("vid_")+12 {
		t.Errorf("unexpected id length: %s", id1)
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal string", "hello", "hello"},
		{"with control chars", "hello\x00world", "helloworld"},
		{"with newline", "hello\nworld", "hello\nworld"},
		{"with whitespace", "  hello  ", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := SanitizeString(tt.input); result != tt.expected {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@Example.COM  "); got != "user@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"john@fluvid.com", "j***@fluvid.com"},
		{"a@fluvid.com", "*@fluvid.com"},
		{"notanemail", "n*********"},
	}

	for _, tt := range tests {
		if got := MaskEmail(tt.input); got != tt.expected {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "tutorial", "go", "", "Tutorial"})
	if strings.Join(got, ",") != "go,tutorial" {
		t.Errorf("NormalizeTags() = %v", got)
	}
}

func TestParseTimecode(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"12:30", 750, false},
		{"1:02:03", 3723, false},
		{"90:00", 5400, false},
		{"12:60", 0, true},
		{"1:60:00", 0, true},
		{"12", 0, true},
		{"a:b", 0, true},
		{":30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimecode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimecode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTimecode(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{750, "12:30"},
		{3723, "1:02:03"},
		{-5, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTimecode(tt.seconds); got != tt.expected {
			t.Errorf("FormatTimecode(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
	if got := FormatChapterTime(65); got != "01:05" {
		t.Errorf("FormatChapterTime(65) = %q", got)
	}
}
