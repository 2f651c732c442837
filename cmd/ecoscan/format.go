package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatYAML  OutputFormat = "yaml"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML goes through JSON first so field names match the JSON output.
func formatYAML(resp interface{}) (string, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return "", fmt.Errorf("failed to convert to YAML: %w", err)
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *AnalyzeResponseCLI:
		return formatAnalyzeHuman(v), nil
	case *ScoreResponseCLI:
		return formatScoreHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *RunResponseCLI:
		return formatRunHuman(v), nil
	case *DatasetResponseCLI:
		return formatDatasetHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// parseFormat validates a --format flag value.
func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatHuman, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (want json, human or yaml)", s)
	}
}

// printResponse writes resp to stdout in format, exiting on failure.
func printResponse(resp interface{}, format OutputFormat) {
	output, err := FormatResponse(resp, format)
	if err != nil {
		exitWithError(err)
	}
	fmt.Println(output)
}
