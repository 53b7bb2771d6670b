// pkg/registry/schema.go
package registry

// TaskRegistry is the catalog of lead-pipeline task types. It feeds the
// worker-generator scaffolding and documents the BPMN contract of each
// service task.
type TaskRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Tasks       []Task `json:"tasks"`
}

// Task describes one service task of the lead pipeline.
type Task struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	TaskType    string `json:"taskType"`
	Version     string `json:"version"`
	Status      string `json:"status"`

	// BestEffort tasks never throw BPMN errors: on failure they complete
	// the job with a negative flag and the pipeline moves on.
	BestEffort bool `json:"bestEffort"`

	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Timeout      string                 `json:"timeout"`
	MaxRetries   int                    `json:"maxRetries"`
	Tags         []string               `json:"tags"`
}
