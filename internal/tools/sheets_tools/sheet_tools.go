package sheets_tools

import (
	"context"
	"net/http"

	"github.com/sheetstack/sheetsmcp/internal/instrumentation"
	"github.com/sheetstack/sheetsmcp/internal/registry"
	"github.com/sheetstack/sheetsmcp/internal/sheets"
)

// registerSheetTools registers sheet (tab) management tools.
func registerSheetTools(reg *registry.Registry, client *sheets.Client) error {
	tools := []registry.Tool{
		{
			Name:        "create_sheet",
			Description: "Create a new sheet (tab) in a spreadsheet",
			HTTPMethod:  http.MethodPost,
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationCreate,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "title", Type: registry.TypeString, Required: true,
					Description: "The title of the new sheet"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.CreateSheet(ctx, args.String("spreadsheet_id"), args.String("title"))
			},
		},
		{
			Name:          "list_sheets",
			Description:   "List all sheets (tabs) in a spreadsheet",
			HTTPMethod:    http.MethodGet,
			HTTPPathParam: "spreadsheet_id",
			ReadOnly:      true,
			Service:       instrumentation.ServiceSheets,
			Operation:     instrumentation.OperationList,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.ListSheets(ctx, args.String("spreadsheet_id"))
			},
		},
		{
			Name:        "rename_sheet",
			Description: "Rename a sheet (tab) in a spreadsheet",
			HTTPMethod:  http.MethodPost,
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationUpdate,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "sheet", Type: registry.TypeString, Required: true,
					Description: "The current name of the sheet"},
				{Name: "new_name", Type: registry.TypeString, Required: true,
					Description: "The new name for the sheet"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.RenameSheet(ctx,
					args.String("spreadsheet_id"),
					args.String("sheet"),
					args.String("new_name"),
				)
			},
		},
		{
			Name:        "copy_sheet",
			Description: "Copy a sheet from one spreadsheet to another",
			HTTPMethod:  http.MethodPost,
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationCopy,
			Args: []registry.Arg{
				{Name: "src_spreadsheet", Type: registry.TypeString, Required: true,
					Description: "The ID of the source spreadsheet"},
				{Name: "src_sheet", Type: registry.TypeString, Required: true,
					Description: "The name of the sheet to copy"},
				{Name: "dst_spreadsheet", Type: registry.TypeString, Required: true,
					Description: "The ID of the destination spreadsheet"},
				{Name: "dst_sheet", Type: registry.TypeString,
					Description: "Name for the copied sheet in the destination (optional)"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.CopySheet(ctx,
					args.String("src_spreadsheet"),
					args.String("src_sheet"),
					args.String("dst_spreadsheet"),
					args.String("dst_sheet"),
				)
			},
		},
	}

	for _, tool := range tools {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
