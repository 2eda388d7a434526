package model

import (
	"errors"
	"testing"
)

func TestValidateSpan(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		length     int
		wantErr    bool
	}{
		{name: "whole text", start: 0, end: 5, length: 5},
		{name: "single rune", start: 2, end: 3, length: 5},
		{name: "empty span", start: 2, end: 2, length: 5, wantErr: true},
		{name: "reversed", start: 3, end: 1, length: 5, wantErr: true},
		{name: "negative start", start: -1, end: 2, length: 5, wantErr: true},
		{name: "end past text", start: 0, end: 6, length: 5, wantErr: true},
		{name: "empty text", start: 0, end: 1, length: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpan(tt.start, tt.end, tt.length)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpan) {
					t.Errorf("ValidateSpan(%d, %d, %d) error = %v, want ErrInvalidSpan", tt.start, tt.end, tt.length, err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateSpan(%d, %d, %d) error = %v", tt.start, tt.end, tt.length, err)
			}
		})
	}
}

func TestValidateSpan_Exhaustive(t *testing.T) {
	for length := 0; length <= 6; length++ {
		for start := -2; start <= 8; start++ {
			for end := -2; end <= 8; end++ {
				valid := 0 <= start && start < end && end <= length
				err := ValidateSpan(start, end, length)
				if valid && err != nil {
					t.Fatalf("ValidateSpan(%d, %d, %d) = %v, want nil", start, end, length, err)
				}
				if !valid && !errors.Is(err, ErrInvalidSpan) {
					t.Fatalf("ValidateSpan(%d, %d, %d) = %v, want ErrInvalidSpan", start, end, length, err)
				}
			}
		}
	}
}

func TestSpan_Slice(t *testing.T) {
	sp := Span{StartIndex: 0, EndIndex: 2}
	if got := sp.Slice("日本語"); got != "日本" {
		t.Errorf("Slice() = %q, want %q", got, "日本")
	}
	if got := TextLength("日本語"); got != 3 {
		t.Errorf("TextLength() = %d, want 3", got)
	}
}
