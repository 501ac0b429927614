package sheets_tools

import (
	"fmt"
	"strings"

	"github.com/sheetstack/sheetsmcp/internal/apierr"
	"github.com/sheetstack/sheetsmcp/internal/registry"
	"github.com/sheetstack/sheetsmcp/internal/sheets"
)

// RegisterSheetsTools registers all spreadsheet tools with the registry.
// Both transports consume the same registry, so registration here defines
// the complete tool surface of the server.
func RegisterSheetsTools(reg *registry.Registry, client *sheets.Client) error {
	if err := registerDataTools(reg, client); err != nil {
		return fmt.Errorf("failed to register data tools: %w", err)
	}

	if err := registerSpreadsheetTools(reg, client); err != nil {
		return fmt.Errorf("failed to register spreadsheet tools: %w", err)
	}

	if err := registerSheetTools(reg, client); err != nil {
		return fmt.Errorf("failed to register sheet tools: %w", err)
	}

	return nil
}

// toMatrix decodes a JSON-decoded array of arrays into a cell matrix.
// Rows may be ragged; the Sheets API pads short rows on write.
func toMatrix(name string, v interface{}) (sheets.Matrix, error) {
	rows, ok := v.([]interface{})
	if !ok {
		return nil, apierr.Validation("argument %q must be an array of rows", name)
	}

	matrix := make(sheets.Matrix, 0, len(rows))
	for i, row := range rows {
		cells, ok := row.([]interface{})
		if !ok {
			return nil, apierr.Validation("argument %q row %d must be an array of cell values", name, i)
		}
		matrix = append(matrix, cells)
	}
	return matrix, nil
}

// toUpdates decodes a JSON-decoded array of {range, values} objects.
func toUpdates(name string, v interface{}) ([]sheets.RangeValues, error) {
	entries, ok := v.([]interface{})
	if !ok {
		return nil, apierr.Validation("argument %q must be an array of {range, values} objects", name)
	}

	updates := make([]sheets.RangeValues, 0, len(entries))
	for i, entry := range entries {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			return nil, apierr.Validation("argument %q entry %d must be an object with range and values", name, i)
		}

		rng, _ := obj["range"].(string)
		if rng == "" {
			return nil, apierr.Validation("argument %q entry %d is missing range", name, i)
		}

		values, err := toMatrix(fmt.Sprintf("%s[%d].values", name, i), obj["values"])
		if err != nil {
			return nil, err
		}

		updates = append(updates, sheets.RangeValues{Range: rng, Values: values})
	}
	return updates, nil
}

// toStringSlice decodes a JSON-decoded array of strings. A single string is
// accepted as a one-element list; comma-separated strings are split.
func toStringSlice(name string, v interface{}) ([]string, error) {
	switch value := v.(type) {
	case string:
		var result []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
		return result, nil
	case []interface{}:
		result := make([]string, 0, len(value))
		for i, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, apierr.Validation("argument %q element %d must be a string", name, i)
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, apierr.Validation("argument %q must be an array of strings", name)
	}
}
