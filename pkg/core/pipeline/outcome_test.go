package pipeline

import "testing"

func TestFileStatus(t *testing.T) {
	tests := []struct {
		name     string
		accepted int
		rejected int
		want     FileStatus
	}{
		{"all accepted", 5, 0, StatusSucceeded},
		{"mixed", 3, 2, StatusPartiallySucceeded},
		{"all rejected", 0, 5, StatusFailed},
		{"nothing at all", 0, 0, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fileStatus(tt.accepted, tt.rejected); got != tt.want {
				t.Errorf("fileStatus(%d, %d) = %s, want %s", tt.accepted, tt.rejected, got, tt.want)
			}
		})
	}
}

func TestOverallStatus(t *testing.T) {
	f := func(statuses ...FileStatus) []FileOutcome {
		out := make([]FileOutcome, len(statuses))
		for i, s := range statuses {
			out[i].Status = s
		}
		return out
	}

	tests := []struct {
		name  string
		files []FileOutcome
		want  BatchStatus
	}{
		{"no files", nil, BatchAllFailed},
		{"single success", f(StatusSucceeded), BatchAllSucceeded},
		{"single failure", f(StatusFailed), BatchAllFailed},
		{"every file failed", f(StatusFailed, StatusFailed, StatusFailed), BatchAllFailed},
		{"one failure among successes", f(StatusSucceeded, StatusFailed), BatchMixed},
		// Partial success is still success at batch level: the rule is
		// asymmetric on purpose.
		{"partials count as success", f(StatusPartiallySucceeded, StatusSucceeded), BatchAllSucceeded},
		{"partial plus failure", f(StatusPartiallySucceeded, StatusFailed), BatchMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverallStatus(tt.files); got != tt.want {
				t.Errorf("OverallStatus = %s, want %s", got, tt.want)
			}
		})
	}
}
