// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
)

func LoadRegistry(path string) (*TaskRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TaskRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindTask looks a task up by its ID.
func (r *TaskRegistry) FindTask(id string) (*Task, error) {
	for i := range r.Tasks {
		if r.Tasks[i].ID == id {
			return &r.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %q not found in registry", id)
}
