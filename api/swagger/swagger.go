package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "DocNotify API",
        "description": "Document expiry tracking and notification service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Users", "description": "Account sync and profile"},
        {"name": "Documents", "description": "Tracked documents and files"},
        {"name": "Reports", "description": "Asynchronous expiry report exports"},
        {"name": "Contact", "description": "Support form"},
        {"name": "Cron", "description": "Scheduled expiration sweep"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/users/sync": {
            "post": {
                "tags": ["Users"],
                "summary": "Sync the caller's account from its token",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/SyncUserRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "tags": ["Users"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List the caller's documents",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Register a document",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateDocumentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Fetch one document",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "patch": {
                "tags": ["Documents"],
                "summary": "Update a document",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Documents"],
                "summary": "Delete a document",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/documents/{id}/files": {
            "get": {
                "tags": ["Documents"],
                "summary": "Request a presigned download URL",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "object", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Documents"],
                "summary": "Request a presigned upload URL",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UploadURLRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/{id}/files/confirm": {
            "post": {
                "tags": ["Documents"],
                "summary": "Confirm a completed file upload",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttachFileRequest"}}
                ],
                "responses": {
                    "204": {"description": "Linked"}
                }
            }
        },
        "/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Request an expiry report export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Poll an export job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report artifact",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "token", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Artifact stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/contact": {
            "post": {
                "tags": ["Contact"],
                "summary": "Submit a support message",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContactRequest"}}
                ],
                "responses": {
                    "200": {"description": "Sent"}
                }
            }
        },
        "/internal/cron/check-expirations": {
            "get": {
                "tags": ["Cron"],
                "summary": "Run the expiration notification sweep (scheduled)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sweep result", "schema": {"$ref": "#/definitions/SweepResponse"}},
                    "401": {"description": "Invalid cron token"},
                    "500": {"description": "Cron trigger not configured"}
                }
            },
            "post": {
                "tags": ["Cron"],
                "summary": "Run the expiration notification sweep (manual)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sweep result", "schema": {"$ref": "#/definitions/SweepResponse"}},
                    "401": {"description": "Invalid cron token"},
                    "500": {"description": "Cron trigger not configured"}
                }
            }
        }
    },
    "definitions": {
        "SyncUserRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "CreateDocumentRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "expiryDate": {"type": "string"},
                "reminders": {"type": "boolean"}
            }
        },
        "UpdateDocumentRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "expiryDate": {"type": "string"},
                "reminders": {"type": "boolean"}
            }
        },
        "UploadURLRequest": {
            "type": "object",
            "required": ["fileName"],
            "properties": {
                "fileName": {"type": "string"}
            }
        },
        "AttachFileRequest": {
            "type": "object",
            "required": ["objectName"],
            "properties": {
                "objectName": {"type": "string"}
            }
        },
        "CreateReportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
        "ContactRequest": {
            "type": "object",
            "required": ["name", "email", "subject", "message"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "SweepResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "details": {
                    "type": "object",
                    "properties": {
                        "emailsSent": {"type": "integer"},
                        "processedUsers": {"type": "integer"},
                        "errorCount": {"type": "integer"},
                        "errors": {"type": "array", "items": {"type": "string"}}
                    }
                }
            }
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
