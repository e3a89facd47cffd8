package queue

const (
	// TaskIngest carries a storage-write notification for an uploads
	// object; the worker turns it into renditions plus a metadata
	// record.
	TaskIngest = "ingest"
	// TaskAnalyze asks the worker to run vision analysis for one image
	// and merge the results into its record.
	TaskAnalyze = "analyze"
	// TaskSweep reclaims upload objects that never gained a metadata
	// record.
	TaskSweep = "sweep"
)

// TaskPayload is the wire form of every stream entry. Unused fields
// stay empty depending on the task type.
type TaskPayload struct {
	TaskID  string `json:"taskId"`
	Type    string `json:"type"`
	Key     string `json:"key,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
	UserID  string `json:"userId,omitempty"`
	ImageID string `json:"imageId,omitempty"`
}
