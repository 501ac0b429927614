package sheets_tools

import (
	"context"
	"net/http"

	"github.com/sheetstack/sheetsmcp/internal/instrumentation"
	"github.com/sheetstack/sheetsmcp/internal/registry"
	"github.com/sheetstack/sheetsmcp/internal/sheets"
)

// registerSpreadsheetTools registers spreadsheet-level tools.
func registerSpreadsheetTools(reg *registry.Registry, client *sheets.Client) error {
	tools := []registry.Tool{
		{
			Name:        "create_spreadsheet",
			Description: "Create a new spreadsheet. When a Drive folder is configured, the spreadsheet is created in that folder.",
			HTTPMethod:  http.MethodPost,
			Service:     instrumentation.ServiceSheets,
			Operation:   instrumentation.OperationCreate,
			Args: []registry.Arg{
				{Name: "title", Type: registry.TypeString, Required: true,
					Description: "The title of the new spreadsheet"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.CreateSpreadsheet(ctx, args.String("title"))
			},
		},
		{
			Name:        "list_spreadsheets",
			Description: "List spreadsheets visible to the service account, scoped to the configured Drive folder when set",
			HTTPMethod:  http.MethodGet,
			ReadOnly:    true,
			Service:     instrumentation.ServiceDrive,
			Operation:   instrumentation.OperationList,
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				return client.ListSpreadsheets(ctx)
			},
		},
		{
			Name:        "share_spreadsheet",
			Description: "Share a spreadsheet with one or more email addresses. Re-sharing an address updates its role (last write wins).",
			HTTPMethod:  http.MethodPost,
			Service:     instrumentation.ServiceDrive,
			Operation:   instrumentation.OperationShare,
			Args: []registry.Arg{
				{Name: "spreadsheet_id", Type: registry.TypeString, Required: true,
					Description: "The ID of the spreadsheet"},
				{Name: "email_addresses", Type: registry.TypeArray, Required: true,
					Description: "Email addresses to share with"},
				{Name: "role", Type: registry.TypeString,
					Description: "Role to grant: reader, commenter, writer, or owner (default: writer)"},
				{Name: "send_notification", Type: registry.TypeBoolean,
					Description: "Send a notification email to recipients (default: true)"},
			},
			Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
				emails, err := toStringSlice("email_addresses", args["email_addresses"])
				if err != nil {
					return nil, err
				}

				role := args.String("role")
				if role == "" {
					role = sheets.RoleWriter
				}

				return client.ShareSpreadsheet(ctx,
					args.String("spreadsheet_id"),
					emails,
					role,
					args.Bool("send_notification", true),
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
