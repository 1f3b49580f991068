// Package docs registers the OpenAPI description served under /swagger.
package docs

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
        "/sessions": {
            "post": {
                "description": "Loads the active questions of a topic, chapter, subject or single question and serves the first one",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Start a practice session",
                "parameters": [
                    {"description": "Scope of the session", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.StartSessionRequest"}},
                    {"type": "string", "description": "Bearer identity token", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ValidationErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get a practice session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/select": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Select an option",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Chosen option", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SelectOptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/submit": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Submit the selected option",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SubmitAnswerResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/skip": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Skip the current question",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/next": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Move to the next question",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/pause": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Pause the session clock",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/resume": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Resume the session clock",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/end": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "End the session",
                "parameters": [{"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SessionResultResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/sessions/{id}/restart": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Restart the session",
                "parameters": [
                    {"type": "string", "description": "Session ID", "name": "id", "in": "path", "required": true},
                    {"description": "Reload the pool from the content store", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/dto.RestartSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.SessionView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/attempts/previous": {
            "get": {
                "produces": ["application/json"],
                "tags": ["attempts"],
                "summary": "List previous attempts",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [{"type": "string", "description": "Comma separated question IDs", "name": "question_ids", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.PreviousAttemptsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/middleware.ValidationErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.StartSessionRequest": {
            "type": "object",
            "properties": {
                "scope_kind": {"type": "string", "enum": ["topic", "chapter", "subject", "question"], "example": "topic"},
                "scope_id": {"type": "string", "example": "01HZX3V6Q8N2S0M4K7B9C1D5EF"},
                "time_limit_seconds": {"type": "integer", "example": 600}
            }
        },
        "dto.SelectOptionRequest": {
            "type": "object",
            "properties": {"option_id": {"type": "string"}}
        },
        "dto.RestartSessionRequest": {
            "type": "object",
            "properties": {"reload": {"type": "boolean"}}
        },
        "dto.OptionView": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "text": {"type": "string"}}
        },
        "dto.QuestionView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"},
                "difficulty": {"type": "string"},
                "marks_awarded": {"type": "number"},
                "marks_deducted": {"type": "number"},
                "topic_id": {"type": "string"},
                "options": {"type": "array", "items": {"$ref": "#/definitions/dto.OptionView"}},
                "previously_attempted": {"type": "boolean"}
            }
        },
        "dto.ProgressView": {
            "type": "object",
            "properties": {
                "attempted": {"type": "integer"},
                "correct": {"type": "integer"},
                "incorrect": {"type": "integer"},
                "skipped": {"type": "integer"},
                "accuracy": {"type": "integer"},
                "mastered": {"type": "boolean"}
            }
        },
        "dto.TimerView": {
            "type": "object",
            "properties": {
                "state": {"type": "string", "enum": ["running", "paused", "stopped"]},
                "elapsed_seconds": {"type": "integer"},
                "limit_seconds": {"type": "integer"},
                "remaining_seconds": {"type": "integer"}
            }
        },
        "dto.FeedbackView": {
            "type": "object",
            "properties": {
                "is_correct": {"type": "boolean"},
                "selected_option_id": {"type": "string"},
                "correct_option_id": {"type": "string"},
                "marks": {"type": "number"},
                "explanation": {"type": "string"},
                "solution": {"type": "string"}
            }
        },
        "dto.SessionView": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "scope_kind": {"type": "string"},
                "scope_id": {"type": "string"},
                "pool_size": {"type": "integer"},
                "round": {"type": "integer"},
                "remaining_in_round": {"type": "integer"},
                "question": {"$ref": "#/definitions/dto.QuestionView"},
                "selected_option_id": {"type": "string"},
                "is_answered": {"type": "boolean"},
                "feedback": {"$ref": "#/definitions/dto.FeedbackView"},
                "progress": {"$ref": "#/definitions/dto.ProgressView"},
                "timer": {"$ref": "#/definitions/dto.TimerView"},
                "started_at": {"type": "string", "format": "date-time"}
            }
        },
        "dto.SubmitAnswerResponse": {
            "type": "object",
            "properties": {
                "attempt_id": {"type": "string"},
                "session": {"$ref": "#/definitions/dto.SessionView"}
            }
        },
        "dto.TopicResult": {
            "type": "object",
            "properties": {
                "topic_id": {"type": "string"},
                "attempted": {"type": "integer"},
                "correct": {"type": "integer"},
                "incorrect": {"type": "integer"},
                "accuracy": {"type": "integer"}
            }
        },
        "dto.SessionResultResponse": {
            "type": "object",
            "properties": {
                "session_id": {"type": "string"},
                "scope_kind": {"type": "string"},
                "scope_id": {"type": "string"},
                "attempted": {"type": "integer"},
                "correct": {"type": "integer"},
                "incorrect": {"type": "integer"},
                "skipped": {"type": "integer"},
                "accuracy": {"type": "integer"},
                "mastered": {"type": "boolean"},
                "elapsed_seconds": {"type": "integer"},
                "time_expired": {"type": "boolean"},
                "score": {"type": "number"},
                "max_score": {"type": "number"},
                "breakdown": {"type": "array", "items": {"$ref": "#/definitions/dto.TopicResult"}}
            }
        },
        "dto.PreviousAttempt": {
            "type": "object",
            "properties": {
                "attempt_id": {"type": "string"},
                "question_id": {"type": "string"},
                "selected_option_id": {"type": "string"},
                "is_correct": {"type": "boolean"},
                "attempted_at": {"type": "string", "format": "date-time"}
            }
        },
        "dto.PreviousAttemptsResponse": {
            "type": "object",
            "properties": {
                "attempts": {"type": "array", "items": {"$ref": "#/definitions/dto.PreviousAttempt"}}
            }
        },
        "domain.ValidationError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object", "additionalProperties": true}
            }
        },
        "middleware.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/domain.ValidationError"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Type 'Bearer YOUR_JWT_TOKEN' to attribute attempts to a user.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8090",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Practice Engine API",
	Description:      "Practice sessions over exam-prep question pools.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
