package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	// Save and restore original environment
	originalEnv := os.Getenv("JOB_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("JOB_WORKERS", originalEnv)
		} else {
			os.Unsetenv("JOB_WORKERS")
		}
	}()

	os.Unsetenv("JOB_WORKERS")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "Mixed task (1.5x multiplier)",
			multiplier: 1.5,
			limit:      0,
			minExpect:  1,
			maxExpect:  int(float64(availableCPU)*1.5) + 1,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Very low multiplier clamps to 1",
			multiplier: 0.1,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect {
				t.Errorf("Count(%v, %d) = %d, expected >= %d", tt.multiplier, tt.limit, got, tt.minExpect)
			}

			if got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected <= %d", tt.multiplier, tt.limit, got, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int
		fallback bool
	}{
		{
			name:     "Valid override",
			envValue: "8",
			limit:    0,
			expected: 8,
		},
		{
			name:     "Override capped by limit",
			envValue: "20",
			limit:    10,
			expected: 10,
		},
		{
			name:     "Override below limit",
			envValue: "5",
			limit:    10,
			expected: 5,
		},
		{
			name:     "Non-numeric override falls back",
			envValue: "invalid",
			limit:    0,
			fallback: true,
		},
		{
			name:     "Zero override falls back",
			envValue: "0",
			limit:    0,
			fallback: true,
		},
		{
			name:     "Negative override falls back",
			envValue: "-5",
			limit:    0,
			fallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("JOB_WORKERS", tt.envValue)
			defer os.Unsetenv("JOB_WORKERS")

			got := Count(1.0, tt.limit)

			if tt.fallback {
				// Should fall back to the default calculation
				if got < 1 {
					t.Errorf("Count with invalid override should return at least 1, got %d", got)
				}
			} else if got != tt.expected {
				t.Errorf("Count(1.0, %d) with JOB_WORKERS=%s = %d, want %d", tt.limit, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestForHelpers(t *testing.T) {
	os.Unsetenv("JOB_WORKERS")
	defer os.Unsetenv("JOB_WORKERS")

	tests := []struct {
		name  string
		fn    func(int) int
		limit int
	}{
		{"ForCPU no limit", ForCPU, 0},
		{"ForCPU limit 4", ForCPU, 4},
		{"ForIO no limit", ForIO, 0},
		{"ForIO limit 8", ForIO, 8},
		{"ForMixed no limit", ForMixed, 0},
		{"ForMixed limit 1", ForMixed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(tt.limit)

			if got < 1 {
				t.Errorf("%s = %d, want >= 1", tt.name, got)
			}
			if tt.limit > 0 && got > tt.limit {
				t.Errorf("%s = %d, should not exceed limit %d", tt.name, got, tt.limit)
			}
		})
	}
}

func TestCountBoundaries(t *testing.T) {
	os.Unsetenv("JOB_WORKERS")
	defer os.Unsetenv("JOB_WORKERS")

	tests := []struct {
		name       string
		multiplier float64
		limit      int
	}{
		{"Zero multiplier", 0.0, 0},
		{"Negative multiplier", -1.0, 0},
		{"Very high multiplier", 100.0, 0},
		{"Very high limit", 1.0, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			// Should never return less than 1
			if got < 1 {
				t.Errorf("Count(%v, %d) = %d, should never be less than 1", tt.multiplier, tt.limit, got)
			}

			if tt.limit > 0 && got > tt.limit {
				t.Errorf("Count(%v, %d) = %d, should not exceed limit", tt.multiplier, tt.limit, got)
			}
		})
	}
}

func TestWorkerCountConsistency(t *testing.T) {
	os.Unsetenv("JOB_WORKERS")
	defer os.Unsetenv("JOB_WORKERS")

	// Multiple calls with same parameters should return same result
	first := Count(1.5, 10)
	for i := 0; i < 5; i++ {
		got := Count(1.5, 10)
		if got != first {
			t.Errorf("Count(1.5, 10) returned different results: first=%d, iteration %d=%d", first, i, got)
		}
	}
}
