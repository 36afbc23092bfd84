// Package swagger holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/server/server.go -o docs/swagger --outputTypes go
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/prediction/{id}": {
            "get": {
                "description": "Re-reads the prediction from the inference provider and returns its normalized status.",
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Poll a prediction",
                "parameters": [
                    {"type": "string", "description": "Prediction id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.PredictionResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/api/{job_type}": {
            "post": {
                "description": "Validates the job-type specific body, uploads inline attachments and submits the job without waiting for it.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Submit a job",
                "parameters": [
                    {"type": "string", "description": "Job type, e.g. txt2img", "name": "job_type", "in": "path", "required": true},
                    {"description": "Job-type specific fields", "name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/responses.SubmitResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/responses.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "responses.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "responses.PredictionResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "output": {},
                "status": {"type": "string", "enum": ["starting", "processing", "succeeded", "failed", "canceled"]}
            }
        },
        "responses.SubmitResponse": {
            "type": "object",
            "properties": {"prediction_id": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "GenAI Proxy API",
	Description:      "Submit/poll proxy for generative inference jobs",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
