package constants

// DocStatus is the canonical status for rows in documents.
type DocStatus string

// Stable values (store these exact strings in DB).
const (
	DocStatusQueued     DocStatus = "QUEUED"     // accepted, waiting for a worker
	DocStatusProcessing DocStatus = "PROCESSING" // pipeline running
	DocStatusCompleted  DocStatus = "COMPLETED"  // result stored
	DocStatusFailed     DocStatus = "FAILED"     // terminal failure
)
