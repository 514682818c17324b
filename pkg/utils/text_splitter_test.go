package utils

import (
	"strings"
	"testing"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		chunkSize int
		overlap   int
		wantCount int
	}{
		{
			name:      "short text fits in one chunk",
			text:      "hello",
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "exactly chunk size is one chunk",
			text:      strings.Repeat("a", 100),
			chunkSize: 100,
			overlap:   10,
			wantCount: 1,
		},
		{
			name:      "splits with overlap",
			text:      strings.Repeat("a", 10),
			chunkSize: 4,
			overlap:   1,
			wantCount: 3, // [0:4) [3:7) [6:10)
		},
		{
			name:      "zero overlap",
			text:      strings.Repeat("a", 10),
			chunkSize: 5,
			overlap:   0,
			wantCount: 2,
		},
		{
			name:      "multibyte runes are not cut",
			text:      strings.Repeat("质量问题退货", 50), // 300 runes
			chunkSize: 120,
			overlap:   20,
			wantCount: 3, // [0:120) [100:220) [200:300)
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := SplitText(tt.text, tt.chunkSize, tt.overlap)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(chunks) != tt.wantCount {
				t.Fatalf("expected %d chunks, got %d", tt.wantCount, len(chunks))
			}

			// Every chunk must respect the size bound.
			for i, c := range chunks {
				if n := len([]rune(c)); n > tt.chunkSize {
					t.Errorf("chunk %d has %d runes, exceeds chunk size %d", i, n, tt.chunkSize)
				}
			}

			// Full coverage: advancing by (chunkSize - overlap) per chunk and
			// ending at the text length means no character was dropped.
			runes := []rune(tt.text)
			step := tt.chunkSize - tt.overlap
			covered := 0
			for i, c := range chunks {
				start := i * step
				if covered < start {
					t.Fatalf("gap before chunk %d: covered %d, chunk starts at %d", i, covered, start)
				}
				covered = start + len([]rune(c))
			}
			if covered != len(runes) {
				t.Errorf("chunks cover %d runes, text has %d", covered, len(runes))
			}
		})
	}
}

func TestSplitTextChunkCountFormula(t *testing.T) {
	// For len > chunkSize: count = ceil((len - overlap) / (chunkSize - overlap)).
	for _, n := range []int{101, 150, 199, 200, 357, 1000} {
		text := strings.Repeat("x", n)
		chunkSize, overlap := 100, 20
		chunks, err := SplitText(text, chunkSize, overlap)
		if err != nil {
			t.Fatalf("len=%d: %v", n, err)
		}
		step := chunkSize - overlap
		want := ((n - overlap) + step - 1) / step
		if n <= chunkSize {
			want = 1
		}
		if len(chunks) != want {
			t.Errorf("len=%d: expected %d chunks, got %d", n, want, len(chunks))
		}
	}
}

func TestSplitTextDeterministic(t *testing.T) {
	text := strings.Repeat("订单物流配送", 200)
	a, err := SplitText(text, 300, 50)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := SplitText(text, 300, 50)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitTextInvalidArgs(t *testing.T) {
	if _, err := SplitText("abc", 0, 0); err == nil {
		t.Error("expected error for zero chunk size")
	}
	if _, err := SplitText("abc", 10, 10); err == nil {
		t.Error("expected error for overlap == chunkSize")
	}
	if _, err := SplitText("abc", 10, 15); err == nil {
		t.Error("expected error for overlap > chunkSize")
	}
	if _, err := SplitText("abc", 10, -1); err == nil {
		t.Error("expected error for negative overlap")
	}
}
