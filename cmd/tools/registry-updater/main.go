// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"raiox-platform/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Task ID (e.g., score-lead)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Score Lead)")
	description := addCmd.String("description", "", "Description")
	taskType := addCmd.String("taskType", "", "Zeebe Task Type (e.g., score-lead)")
	version := addCmd.String("version", "1.0.0", "Version")
	status := addCmd.String("status", "planned", "Implementation Status (planned, in-progress, completed, verified)")
	bestEffort := addCmd.Bool("bestEffort", false, "Task completes with a negative flag instead of throwing BPMN errors")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Task ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/task-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" || *taskType == "" {
			fmt.Println("Error: id, displayName, description, and taskType are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		task := registry.Task{
			ID:           *idAdd,
			DisplayName:  *displayName,
			Description:  *description,
			Version:      *version,
			TaskType:     *taskType,
			Status:       *status,
			BestEffort:   *bestEffort,
			InputSchema:  map[string]interface{}{},
			OutputSchema: map[string]interface{}{},
			ErrorCodes:   []string{},
			Timeout:      "10s",
			MaxRetries:   3,
			Tags:         []string{},
		}
		err := addTask(&task)
		if err != nil {
			fmt.Printf("Error adding task: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added task: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err := updateTask(*idUpdate, *field, *value)
		if err != nil {
			fmt.Printf("Error updating task: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated task %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err := validateRegistry()
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

func addTask(task *registry.Task) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.TaskRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Tasks:       []registry.Task{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	for _, existing := range reg.Tasks {
		if existing.ID == task.ID {
			return fmt.Errorf("task with ID %s already exists", task.ID)
		}
	}

	reg.Tasks = append(reg.Tasks, *task)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateTask(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Tasks {
		if reg.Tasks[i].ID == id {
			found = true
			switch field {
			case "status":
				reg.Tasks[i].Status = value
			case "version":
				reg.Tasks[i].Version = value
			case "displayName":
				reg.Tasks[i].DisplayName = value
			case "description":
				reg.Tasks[i].Description = value
			case "taskType":
				reg.Tasks[i].TaskType = value
			case "timeout":
				reg.Tasks[i].Timeout = value
			case "maxRetries":
				retries, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid maxRetries value: %w", err)
				}
				reg.Tasks[i].MaxRetries = retries
			case "bestEffort":
				bestEffort, err := strconv.ParseBool(value)
				if err != nil {
					return fmt.Errorf("invalid bestEffort value: %w", err)
				}
				reg.Tasks[i].BestEffort = bestEffort
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("task with ID %s not found", id)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Tasks) == 0 {
		return fmt.Errorf("registry contains no tasks")
	}

	ids := make(map[string]bool)
	for _, task := range reg.Tasks {
		if ids[task.ID] {
			return fmt.Errorf("duplicate task ID: %s", task.ID)
		}
		ids[task.ID] = true

		if task.ID == "" {
			return fmt.Errorf("task missing required field: ID")
		}
		if task.DisplayName == "" {
			return fmt.Errorf("task %s missing required field: DisplayName", task.ID)
		}
		if task.TaskType == "" {
			return fmt.Errorf("task %s missing required field: TaskType", task.ID)
		}
		if task.BestEffort && len(task.ErrorCodes) > 0 {
			return fmt.Errorf("task %s is best-effort but declares error codes", task.ID)
		}
	}

	fmt.Printf("Registry validation passed. Found %d tasks.\n", len(reg.Tasks))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.TaskRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add     Add a new pipeline task to the registry
  update  Update an existing task's field
  validate Validate the registry file
  help    Show this help message

Examples:
  registry-updater add -id score-lead -displayName "Score Lead" -description "Runs the questionnaire through the scoring engine" -taskType score-lead
  registry-updater update -id score-lead -field status -value completed
  registry-updater validate -path configs/task-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
