package thermal

import (
	"strings"
	"testing"
)

func TestNewSnapshot(t *testing.T) {
	s, err := NewSnapshot(2, 2, []float64{20.123, 25.456, 18.011, 30.999})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if s.Max != 31.0 {
		t.Errorf("Max = %v, want 31.0", s.Max)
	}
	if s.Min != 18.01 {
		t.Errorf("Min = %v, want 18.01", s.Min)
	}
}

func TestNewSnapshotLengthMismatch(t *testing.T) {
	if _, err := NewSnapshot(2, 2, []float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for short frame")
	}
	if _, err := NewSnapshot(2, 2, nil); err != ErrEmptySnapshot {
		t.Fatalf("expected ErrEmptySnapshot, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid",
			body: `{"width":2,"height":1,"temps":[20.0,25.0],"max":25.0,"min":20.0}`,
		},
		{
			name:    "malformed json",
			body:    `{"width":2,`,
			wantErr: "decode snapshot",
		},
		{
			name:    "length mismatch",
			body:    `{"width":3,"height":2,"temps":[1,2,3],"max":3,"min":1}`,
			wantErr: "does not match",
		},
		{
			name:    "zero dimensions",
			body:    `{"width":0,"height":0,"temps":[],"max":0,"min":0}`,
			wantErr: "invalid dimensions",
		},
		{
			name:    "non-finite value",
			body:    `{"width":1,"height":1,"temps":[null],"max":0,"min":0}`,
			wantErr: "decode snapshot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.body))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if s.Width != 2 || s.Height != 1 {
					t.Errorf("got %dx%d, want 2x1", s.Width, s.Height)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Decode error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestAt(t *testing.T) {
	s, err := NewSnapshot(3, 2, []float64{0, 1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	if got := s.At(2, 1); got != 5 {
		t.Errorf("At(2,1) = %v, want 5", got)
	}
	if got := s.At(1, 0); got != 1 {
		t.Errorf("At(1,0) = %v, want 1", got)
	}
}
