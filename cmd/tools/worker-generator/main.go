// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"raiox-platform/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string                 `json:"name"`
	PackageName  string                 `json:"packageName"`
	DirName      string                 `json:"dirName"`
	TaskType     string                 `json:"taskType"`
	BestEffort   bool                   `json:"bestEffort"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Description  string                 `json:"description"`
	Timeout      string                 `json:"timeout"`
	MaxRetries   int                    `json:"maxRetries"`
	Status       string                 `json:"status"`
}

// parseSchema extracts properties from a JSON schema object
func parseSchema(schemaObj interface{}) map[string]interface{} {
	if schemaMap, ok := schemaObj.(map[string]interface{}); ok {
		if props, exists := schemaMap["properties"]; exists {
			if properties, ok := props.(map[string]interface{}); ok {
				return properties
			}
		}
	}
	return map[string]interface{}{}
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	if jt, ok := jsonType.(string); ok {
		switch jt {
		case "string":
			return "string"
		case "integer":
			return "int"
		case "number":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		default:
			return "interface{}"
		}
	}
	return "interface{}"
}

// generateStructFields generates Go struct field definitions from schema properties
func generateStructFields(properties map[string]interface{}) string {
	var fields []string
	for prop, details := range properties {
		propDetails, ok := details.(map[string]interface{})
		if !ok {
			continue
		}
		goType := goTypeFromJSONType(propDetails["type"])
		fieldDef := fmt.Sprintf("\t%s %s `json:%q`", upperFirst(prop), goType, prop)
		fields = append(fields, fieldDef)
	}
	return strings.Join(fields, "\n")
}

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

const handlerTemplate = `// internal/workers/lead/{{ .DirName }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"fmt"

	"raiox-platform/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

{{ if .BestEffort -}}
// Handle never throws: every failure path completes the job with a
// negative flag and the pipeline moves on.
{{ end -}}
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
{{- if .BestEffort }}
		h.logger.Warn("unparseable input, skipping", map[string]interface{}{"error": err.Error()})
		h.completeJob(client, job, &Output{})
{{- else }}
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
{{- end }}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
{{- if .BestEffort }}
		h.logger.Warn("execution failed, completing anyway", map[string]interface{}{"error": err.Error()})
		output = &Output{}
{{- else }}
		h.failJob(client, job, "EXECUTION_FAILED", err.Error())
		return
{{- end }}
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// TODO: implement {{ .TaskType }}
	return &Output{}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}
{{ if not .BestEffort }}
func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}
{{ end }}
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const configTemplate = `// internal/workers/lead/{{ .DirName }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
`

const modelsTemplate = `// internal/workers/lead/{{ .DirName }}/models.go
package {{ .PackageName }}

type Input struct {
{{- $inputProps := parseSchema .InputSchema }}
{{- if $inputProps }}
{{ generateStructFields $inputProps }}
{{- else }}
	LeadID string ` + "`json:\"leadId\"`" + `
{{- end }}
}

type Output struct {
{{- $outputProps := parseSchema .OutputSchema }}
{{- if $outputProps }}
{{ generateStructFields $outputProps }}
{{- else }}
	LeadID string ` + "`json:\"leadId\"`" + `
{{- end }}
}
`

const testTemplate = `// internal/workers/lead/{{ .DirName }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raiox-platform/internal/common/logger"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second}, logger.NewTestLogger(t))
}

func TestExecute(t *testing.T) {
	h := newTestHandler(t)

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}
`

const readmeTemplate = `# {{ .Name }}

{{ .Description }}

- **Task type**: {{ .TaskType }}
- **Status**: {{ .Status }}
- **Timeout**: {{ .Timeout }}
- **Max retries**: {{ .MaxRetries }}
{{- if .BestEffort }}
- **Best effort**: failures complete the job instead of throwing BPMN errors
{{- end }}
{{- if .ErrorCodes }}
- **Error codes**: {{ range .ErrorCodes }}{{ . }} {{ end }}
{{- end }}

## Wiring

Register the worker in cmd/worker-manager/main.go and add a
` + "`workers.{{ .TaskType }}`" + ` block to configs/config.yaml.
`

func main() {
	task := flag.String("task", "", "Task ID from registry (e.g., score-lead)")
	outputDir := flag.String("output", "./internal/workers/lead/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/task-registry.json", "Path to the task registry JSON file")
	flag.Parse()

	if *task == "" {
		fmt.Println("Usage: worker-generator --task <id> --output <dir> [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --task score-lead")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	found, err := reg.FindTask(*task)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	data := WorkerData{
		Name:         found.DisplayName,
		PackageName:  strings.ReplaceAll(found.ID, "-", ""),
		DirName:      found.ID,
		TaskType:     found.TaskType,
		BestEffort:   found.BestEffort,
		InputSchema:  found.InputSchema,
		OutputSchema: found.OutputSchema,
		ErrorCodes:   found.ErrorCodes,
		Description:  found.Description,
		Timeout:      found.Timeout,
		MaxRetries:   found.MaxRetries,
		Status:       found.Status,
	}

	workerDir := filepath.Join(*outputDir, found.ID)
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	funcMap := template.FuncMap{
		"parseSchema":          parseSchema,
		"goTypeFromJSONType":   goTypeFromJSONType,
		"generateStructFields": generateStructFields,
		"upperFirst":           upperFirst,
	}

	templates := map[string]string{
		"handler.go":      handlerTemplate,
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler_test.go": testTemplate,
		"README.md":       readmeTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(workerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Worker scaffold generated successfully at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement the execute function in handler.go\n")
	fmt.Printf("  2. Flesh out Input/Output in models.go\n")
	fmt.Printf("  3. Extend the tests in handler_test.go\n")
	fmt.Printf("  4. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  5. Add configuration to configs/config.yaml\n")
}
