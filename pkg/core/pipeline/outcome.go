package pipeline

import "time"

// FileStatus is the terminal state of one uploaded file.
type FileStatus string

const (
	// StatusSucceeded: every extracted row became an accepted record.
	StatusSucceeded FileStatus = "Succeeded"
	// StatusPartiallySucceeded: at least one accepted, at least one rejected.
	StatusPartiallySucceeded FileStatus = "PartiallySucceeded"
	// StatusFailed: zero records accepted.
	StatusFailed FileStatus = "Failed"
)

// BatchStatus is the derived overall state of an upload submission.
type BatchStatus string

const (
	// BatchAllSucceeded: no file Failed. PartiallySucceeded files still
	// count as successes at batch level.
	BatchAllSucceeded BatchStatus = "AllSucceeded"
	// BatchAllFailed: every single file Failed.
	BatchAllFailed BatchStatus = "AllFailed"
	// BatchMixed: some files Failed, some did not.
	BatchMixed BatchStatus = "Mixed"
)

// FileOutcome reports one file's fate.
type FileOutcome struct {
	FileName         string     `json:"fileName"`
	SchemaType       string     `json:"schemaType"`
	RowsExtracted    int        `json:"rowsExtracted"`
	RecordsAccepted  int        `json:"recordsAccepted"`
	RecordsRejected  int        `json:"recordsRejected"`
	RejectionReasons []string   `json:"rejectionReasons,omitempty"`
	UsedFallback     bool       `json:"usedFallback"`
	Status           FileStatus `json:"status"`
	Error            string     `json:"error,omitempty"`
}

// BatchOutcome is the structured report returned to the caller: one entry
// per uploaded file plus the derived overall status. Callers must inspect
// per-file detail to learn which files need re-upload.
type BatchOutcome struct {
	BatchID     string        `json:"batchId"`
	UserID      string        `json:"userId"`
	Files       []FileOutcome `json:"files"`
	Status      BatchStatus   `json:"status"`
	CompletedAt time.Time     `json:"completedAt"`
}

// fileStatus derives the terminal status from accept/reject counts.
func fileStatus(accepted, rejected int) FileStatus {
	switch {
	case accepted == 0:
		return StatusFailed
	case rejected > 0:
		return StatusPartiallySucceeded
	default:
		return StatusSucceeded
	}
}

// OverallStatus applies the asymmetric aggregate rule: AllFailed only when
// every file Failed, AllSucceeded when none did, Mixed otherwise.
func OverallStatus(files []FileOutcome) BatchStatus {
	failed := 0
	for _, f := range files {
		if f.Status == StatusFailed {
			failed++
		}
	}
	switch {
	case len(files) == 0:
		return BatchAllFailed
	case failed == len(files):
		return BatchAllFailed
	case failed == 0:
		return BatchAllSucceeded
	default:
		return BatchMixed
	}
}
