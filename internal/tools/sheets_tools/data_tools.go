package sheets_tools

import (
	"context"
	"net/http"

	"github.com/sheetstack/sheetsmcp/internal/instrumentation"
	"github.com/sheetstack/sheetsmcp/internal/registry"
	"github.com/sheetstack/sheetsmcp/internal/sheets"
)

// registerDataTools registers cell read/write tools.
func registerDataTools(reg *registry.Registry, client *sheets.Client) error {
	tools := []registry.Tool{
		{
			Name:        "get_sheet_data",
			Description: "Read cell values from a range in a Google Sheet",
			ReadOnly:    true,
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationGet,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "sheet", Type: registry.TypeString, Required: true,
					Description: "The name of the sheet (tab)"},
				{Name: "range", Type: registry.TypeString,
					Description: "A1-style cell range (e.g. 'A1:C10'). Omit to read the whole sheet."},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.GetSheetData(ctx,
					args.String("spreadsheet_id"),
					args.String("sheet"),
					args.String("range"),
				)
			},
		},
		{
			Name:        "get_sheet_formulas",
			Description: "Read cell formulas from a range in a Google Sheet",
			ReadOnly:    true,
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationGet,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "sheet", Type: registry.TypeString, Required: true,
					Description: "The name of the sheet (tab)"},
				{Name: "range", Type: registry.TypeString,
					Description: "A1-style cell range (e.g. 'A1:C10'). Omit to read the whole sheet."},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.GetSheetFormulas(ctx,
					args.String("spreadsheet_id"),
					args.String("sheet"),
					args.String("range"),
				)
			},
		},
		{
			Name:        "update_cells",
			Description: "Overwrite a range of cells with the given values",
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationUpdate,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "sheet", Type: registry.TypeString, Required: true,
					Description: "The name of the sheet (tab)"},
				{Name: "range", Type: registry.TypeString, Required: true,
					Description: "A1-style cell range to write (e.g. 'A1:C10')"},
				{Name: "data", Type: registry.TypeArray, Required: true,
					Description: "2D array of cell values. Rows may be ragged."},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				data, err := toMatrix("data", args["data"])
				if err != nil {
					return nil, err
				}
				return client.UpdateCells(ctx,
					args.String("spreadsheet_id"),
					args.String("sheet"),
					args.String("range"),
					data,
				)
			},
		},
		{
			Name:        "batch_update_cells",
			Description: "Update multiple ranges of a spreadsheet in one call",
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationUpdate,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "updates", Type: registry.TypeArray, Required: true,
					Description: "Array of {range, values} objects. Ranges include the sheet name (e.g. 'Sheet1!A1:B2')."},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				updates, err := toUpdates("updates", args["updates"])
				if err != nil {
					return nil, err
				}
				return client.BatchUpdateCells(ctx, args.String("spreadsheet_id"), updates)
			},
		},
		{
			Name:        "add_rows",
			Description: "Add rows of data to a sheet",
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationAppend,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "sheet", Type: registry.TypeString, Required: true,
					Description: "The name of the sheet (tab)"},
				{Name: "data", Type: registry.TypeArray, Required: true,
					Description: "2D array of row values"},
				{Name: "append", Type: registry.TypeBoolean,
					Description: "Append after the last populated row (default: true). When false, rows are inserted at the top."},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				data, err := toMatrix("data", args["data"])
				if err != nil {
					return nil, err
				}
				return client.AddRows(ctx,
					args.String("spreadsheet_id"),
					args.String("sheet"),
					data,
					args.Bool("append", true),
				)
			},
		},
	}

	for _, tool := range tools {
		tool.HTTPMethod = http.MethodPost
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
