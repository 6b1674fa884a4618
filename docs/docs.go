// Package docs holds the OpenAPI description served by gin-swagger.
// Regenerate with: swag init -g cmd/server/main.go
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
        "/bootcamps": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Bootcamps"],
                "summary": "List bootcamps",
                "operationId": "getBootcamps",
                "parameters": [
                    {"type": "string", "description": "Comma separated fields", "name": "select", "in": "query"},
                    {"type": "string", "description": "Comma separated fields, - for descending", "name": "sort", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 25, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}},
                    "400": {"description": "Bad query", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bootcamps"],
                "summary": "Create a bootcamp",
                "operationId": "createBootcamp",
                "parameters": [
                    {"type": "string", "description": "Replay-safe create key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Bootcamp", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Bootcamp"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Role not allowed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/bootcamps/radius/{zipcode}/{distance}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Bootcamps"],
                "summary": "Bootcamps within a radius",
                "operationId": "getBootcampsInRadius",
                "parameters": [
                    {"type": "string", "name": "zipcode", "in": "path", "required": true},
                    {"type": "number", "name": "distance", "in": "path", "required": true},
                    {"type": "string", "enum": ["mi", "km"], "default": "mi", "name": "unit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}},
                    "400": {"description": "Bad distance", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown zipcode", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Geocoding provider failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "Geocoding disabled", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/bootcamps/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Bootcamps"],
                "summary": "Get a bootcamp",
                "operationId": "getBootcamp",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Bootcamps"],
                "summary": "Update a bootcamp",
                "operationId": "updateBootcamp",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Bootcamp"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Bootcamps"],
                "summary": "Delete a bootcamp and its courses",
                "operationId": "deleteBootcamp",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/bootcamps/{id}/photo": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Bootcamps"],
                "summary": "Upload a bootcamp photo",
                "operationId": "bootcampPhotoUpload",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "Stored file name", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "400": {"description": "Missing, oversized or non-image file", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/bootcamps/{id}/courses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Courses"],
                "summary": "Courses of a bootcamp",
                "operationId": "getBootcampCourses",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Courses"],
                "summary": "Add a course",
                "operationId": "addCourse",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Course"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "404": {"description": "Bootcamp not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/courses": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Courses"],
                "summary": "List courses",
                "operationId": "getCourses",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListResponse"}}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Courses"],
                "summary": "Get a course",
                "operationId": "getCourse",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Courses"],
                "summary": "Update a course",
                "operationId": "updateCourse",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Course"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Courses"],
                "summary": "Delete a course",
                "operationId": "deleteCourse",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register an account",
                "operationId": "register",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.RegisterInput"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TokenResponse"}},
                    "400": {"description": "Validation error or duplicate email", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "operationId": "login",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TokenResponse"}},
                    "400": {"description": "Missing email or password", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Current user",
                "operationId": "me",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log out",
                "operationId": "logout",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "domain.GeoPoint": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "coordinates": {"type": "array", "items": {"type": "number"}},
                "formattedAddress": {"type": "string"},
                "street": {"type": "string"},
                "city": {"type": "string"},
                "state": {"type": "string"},
                "zipcode": {"type": "string"},
                "country": {"type": "string"}
            }
        },
        "domain.Bootcamp": {
            "type": "object",
            "required": ["name", "description", "address", "careers"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string", "maxLength": 50},
                "slug": {"type": "string"},
                "description": {"type": "string", "maxLength": 500},
                "website": {"type": "string"},
                "phone": {"type": "string", "maxLength": 20},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "location": {"$ref": "#/definitions/domain.GeoPoint"},
                "careers": {"type": "array", "items": {"type": "string"}},
                "averageRating": {"type": "number"},
                "averageCost": {"type": "number"},
                "photo": {"type": "string"},
                "housing": {"type": "boolean"},
                "jobAssistance": {"type": "boolean"},
                "jobGuarantee": {"type": "boolean"},
                "acceptGi": {"type": "boolean"},
                "user": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "domain.Course": {
            "type": "object",
            "required": ["title", "description", "weeks", "tuition", "minimumSkill"],
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "weeks": {"type": "integer"},
                "tuition": {"type": "number"},
                "minimumSkill": {"type": "string", "enum": ["beginner", "intermediate", "advanced"]},
                "scholarshipAvailable": {"type": "boolean"},
                "bootcamp": {"type": "string"},
                "user": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "services.RegisterInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "publisher"]}
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handlers.TokenResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "token": {"type": "string"}
            }
        },
        "handlers.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {}
            }
        },
        "handlers.ListResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "count": {"type": "integer"},
                "pagination": {"type": "object"},
                "data": {"type": "array", "items": {}}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "code": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Bootcamp Directory API",
	Description:      "Bootcamps, courses and accounts with geo radius search and photo uploads.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
