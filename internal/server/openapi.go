package server

import (
	"net/http"

	"github.com/sheetstack/sheetsmcp/internal/registry"
)

// handleOpenAPI serves the generated OpenAPI 3.0 document.
func (s *HTTPAPI) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.openAPIDocument())
}

// openAPIDocument builds an OpenAPI 3.0 description of the API from the
// tool registry, so the published schema always matches the registered
// tool surface.
func (s *HTTPAPI) openAPIDocument() map[string]interface{} {
	paths := map[string]interface{}{
		"/health": map[string]interface{}{
			"get": map[string]interface{}{
				"summary":  "Liveness check",
				"security": []interface{}{},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{
						"description": "Service is healthy",
					},
				},
			},
		},
	}

	for _, tool := range s.sc.Registry().Tools() {
		path := "/tools/" + tool.Name
		if tool.HTTPPathParam != "" {
			path += "/{" + tool.HTTPPathParam + "}"
		}

		operation := map[string]interface{}{
			"operationId": tool.Name,
			"summary":     tool.Description,
			"responses": map[string]interface{}{
				"200": map[string]interface{}{
					"description": "Tool result",
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": map[string]interface{}{"type": "object"},
						},
					},
				},
				"400": map[string]interface{}{"description": "Validation error"},
				"401": map[string]interface{}{"description": "Missing or invalid API key"},
				"404": map[string]interface{}{"description": "Referenced resource not found"},
			},
		}

		if tool.HTTPMethod == http.MethodPost {
			if schema := argSchema(tool); schema != nil {
				operation["requestBody"] = map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": schema,
						},
					},
				}
			}
		}

		if tool.HTTPPathParam != "" {
			operation["parameters"] = []interface{}{
				map[string]interface{}{
					"name":     tool.HTTPPathParam,
					"in":       "path",
					"required": true,
					"schema":   map[string]interface{}{"type": "string"},
				},
			}
		}

		methodKey := "post"
		if tool.HTTPMethod == http.MethodGet {
			methodKey = "get"
		}
		paths[path] = map[string]interface{}{methodKey: operation}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   s.name,
			"version": s.version,
		},
		"paths": paths,
		"components": map[string]interface{}{
			"securitySchemes": map[string]interface{}{
				"ApiKeyAuth": map[string]interface{}{
					"type": "apiKey",
					"in":   "header",
					"name": APIKeyHeader,
				},
			},
		},
		"security": []interface{}{
			map[string]interface{}{"ApiKeyAuth": []interface{}{}},
		},
	}
}

// argSchema converts a tool's argument table into a JSON schema object.
// Path parameters are excluded; they are not part of the request body.
func argSchema(tool *registry.Tool) map[string]interface{} {
	properties := make(map[string]interface{})
	var required []interface{}

	for _, arg := range tool.Args {
		if arg.Name == tool.HTTPPathParam {
			continue
		}

		prop := map[string]interface{}{
			"type":        string(arg.Type),
			"description": arg.Description,
		}
		if arg.Type == registry.TypeArray {
			prop["items"] = map[string]interface{}{}
		}
		properties[arg.Name] = prop

		if arg.Required {
			required = append(required, arg.Name)
		}
	}

	if len(properties) == 0 {
		return nil
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// docsPage is a minimal Swagger UI page rendering /openapi.json.
const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>API documentation</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/openapi.json",
      dom_id: "#swagger-ui"
    });
  </script>
</body>
</html>
`

// handleDocs serves the interactive API documentation page.
func (s *HTTPAPI) handleDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(docsPage))
}
