package api

import (
	"net/http"
)

// SpecHandler serves the embedded OpenAPI YAML spec. The spec ships inside
// the binary so the service has no runtime file dependencies.
func SpecHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte(openAPISpec))
	}
}

// SwaggerHandler returns an HTTP handler that serves the Swagger UI. The page
// uses the official CDN-hosted assets so we don't need to check any static
// files into version control.
func SwaggerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	}
}

const openAPISpec = `openapi: 3.0.3
info:
  title: Solution Blueprint Service
  description: Generates cross-referenced automation blueprints for a solution scope.
  version: 1.0.0
paths:
  /health:
    get:
      summary: Service health
      responses:
        "200":
          description: Always healthy when reachable.
  /api/v1/solutions:
    get:
      summary: List the environment's installed solutions
      responses:
        "200":
          description: Solution list.
        "500":
          description: Metadata query failed.
  /api/v1/blueprints:
    post:
      summary: Generate a blueprint for a scope
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              properties:
                kind:
                  type: string
                  enum: [publisher, solutions]
                publisher_prefix:
                  type: string
                solution_ids:
                  type: array
                  items:
                    type: string
                include_system_entities:
                  type: boolean
                exclude_system_fields:
                  type: boolean
              required: [kind]
      responses:
        "200":
          description: The generated blueprint.
        "400":
          description: Invalid scope.
        "500":
          description: Generation failed.
`

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Swagger UI</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
  <script>
  window.onload = function() {
    window.ui = SwaggerUIBundle({
      url: "/openapi.yaml",
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: "BaseLayout"
    });
  }
  </script>
</body>
</html>`
