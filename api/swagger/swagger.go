package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ResPlan API",
        "description": "Capacity planning, forecasting and reporting for project teams",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Plan", "description": "Month board, employees, projects and holidays"},
        {"name": "Assignments", "description": "Day bookings and absences"},
        {"name": "Stats", "description": "Utilization and conflict aggregates"},
        {"name": "Forecast", "description": "Quarter projections, revenue and financials"},
        {"name": "Versions", "description": "Plan versions and state snapshots"},
        {"name": "Reports", "description": "Asynchronous CSV/PDF exports"},
        {"name": "Analysis", "description": "Narrative plan analysis"},
        {"name": "Auth", "description": "Authentication"},
        {"name": "Users", "description": "User administration"}
    ],
    "paths": {
        "/plan/board": {
            "get": {
                "tags": ["Plan"],
                "summary": "Month board for the active version",
                "parameters": [
                    {"name": "month", "in": "query", "type": "string", "required": true, "description": "yyyy-MM"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/employees": {
            "get": {
                "tags": ["Plan"],
                "summary": "List employees",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/projects": {
            "get": {
                "tags": ["Plan"],
                "summary": "List projects",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays": {
            "get": {
                "tags": ["Plan"],
                "summary": "List public holidays",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Plan"],
                "summary": "Add a public holiday",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublicHoliday"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/holidays/{date}": {
            "delete": {
                "tags": ["Plan"],
                "summary": "Remove a public holiday",
                "parameters": [
                    {"name": "date", "in": "path", "type": "string", "required": true},
                    {"name": "location", "in": "query", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/assignments": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Book a day assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate or absence conflict"}
                }
            }
        },
        "/assignments/{id}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Remove an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/assignments/{id}/move": {
            "patch": {
                "tags": ["Assignments"],
                "summary": "Move an assignment to another employee or day",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MoveAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/replace-day": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Replace everything booked on one day",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/pattern": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Repeat a day template across weekdays of a month",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Block one day for an employee",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences/span": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Block a stretch of weekdays",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences/{id}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Remove an absence",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/stats/months/{month}": {
            "get": {
                "tags": ["Stats"],
                "summary": "Month aggregates",
                "parameters": [
                    {"name": "month", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/months/{month}/employees": {
            "get": {
                "tags": ["Stats"],
                "summary": "Per employee month statistics",
                "parameters": [
                    {"name": "month", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/months/{month}/conflicts": {
            "get": {
                "tags": ["Stats"],
                "summary": "Overload conflicts in a month",
                "parameters": [
                    {"name": "month", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/utilization": {
            "get": {
                "tags": ["Stats"],
                "summary": "Team utilization for a date range",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string", "required": true},
                    {"name": "end", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/forecast": {
            "get": {
                "tags": ["Forecast"],
                "summary": "Quarter projections",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/forecast/revenue": {
            "get": {
                "tags": ["Forecast"],
                "summary": "Amortized revenue per quarter",
                "parameters": [
                    {"name": "anchor", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/forecast/financials": {
            "get": {
                "tags": ["Forecast"],
                "summary": "Per project budget burn and margin",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/versions": {
            "get": {
                "tags": ["Versions"],
                "summary": "List plan versions",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Versions"],
                "summary": "Freeze the working copy as a new version",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/versions/{id}/activate": {
            "post": {
                "tags": ["Versions"],
                "summary": "Switch the active version",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/plan/snapshot": {
            "post": {
                "tags": ["Versions"],
                "summary": "Persist the full plan state",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/reports/generate": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a report for background generation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/status/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Poll report job status",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "parameters": [
                    {"name": "token", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "410": {"description": "Link expired"}
                }
            }
        },
        "/analysis/month": {
            "post": {
                "tags": ["Analysis"],
                "summary": "Generate a narrative summary of one month",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Login with email and password",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PublicHoliday": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "name": {"type": "string"},
                "location": {"type": "string"}
            },
            "required": ["date", "name"]
        },
        "AddAssignmentRequest": {
            "type": "object",
            "properties": {
                "employee_id": {"type": "string"},
                "project_id": {"type": "string"},
                "date": {"type": "string"},
                "allocation": {"type": "number"}
            },
            "required": ["employee_id", "project_id", "date", "allocation"]
        },
        "MoveAssignmentRequest": {
            "type": "object",
            "properties": {
                "employee_id": {"type": "string"},
                "date": {"type": "string"}
            },
            "required": ["employee_id", "date"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["utilization", "month_plan", "financials", "forecast"]},
                "month": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["type", "format"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
