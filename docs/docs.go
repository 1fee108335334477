// Package docs registers the swagger document of the companion API.
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
        "/signup": {
            "post": {
                "description": "Registers a new account. The backend emails a one-time code.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Sign up",
                "parameters": [{"description": "account details", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.SignupForm"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "already signed in", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/verify-otp": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Account"],
                "summary": "Verify one-time code",
                "parameters": [{"description": "email and code", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.OTPForm"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.VerifyOTPResponse"}},
                    "401": {"description": "wrong or expired code", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/forgot-password": {
            "post": {
                "tags": ["Account"],
                "summary": "Forgot password",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ForgotPasswordForm"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}}}
            }
        },
        "/reset-password": {
            "post": {
                "tags": ["Account"],
                "summary": "Reset password",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ResetPasswordForm"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}}}
            }
        },
        "/api/profile": {
            "get": {
                "tags": ["Profile"],
                "summary": "Current profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Profile"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/profile/refresh": {
            "post": {
                "tags": ["Profile"],
                "summary": "Refresh profile",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Profile"}}}
            }
        },
        "/api/session": {
            "get": {
                "tags": ["Profile"],
                "summary": "Session state",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/session.Snapshot"}}}
            }
        },
        "/api/onboarding/progress": {
            "get": {
                "tags": ["Onboarding"],
                "summary": "Onboarding progress",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/onboarding.Progress"}}}
            }
        },
        "/api/onboarding/{step}": {
            "post": {
                "consumes": ["application/json", "multipart/form-data"],
                "tags": ["Onboarding"],
                "summary": "Submit an onboarding step",
                "parameters": [{"type": "string", "description": "step name", "name": "step", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/onboarding.Progress"}},
                    "404": {"description": "unknown step", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "previous steps incomplete", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/api/onboarding/{step}/reference/{kind}": {
            "get": {
                "tags": ["Onboarding"],
                "summary": "Onboarding reference data",
                "parameters": [
                    {"type": "string", "name": "step", "in": "path", "required": true},
                    {"type": "string", "name": "kind", "in": "path", "required": true}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ReferenceResponse"}}}
            }
        },
        "/api/perks": {
            "get": {
                "tags": ["Perks"],
                "summary": "List perks",
                "parameters": [{"type": "string", "name": "category", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PerksResponse"}}}
            }
        },
        "/api/perks/{id}/redeem": {
            "post": {
                "tags": ["Perks"],
                "summary": "Redeem a perk",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Redemption"}}}
            }
        },
        "/api/redemptions": {
            "get": {
                "tags": ["Perks"],
                "summary": "Redemption history",
                "parameters": [{"type": "integer", "name": "page", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.RedemptionsResponse"}}}
            }
        },
        "/api/analytics": {
            "get": {
                "tags": ["Perks"],
                "summary": "Token analytics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Analytics"}}}
            }
        },
        "/api/logout": {
            "post": {
                "tags": ["Account"],
                "summary": "Log out",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}}}
            }
        },
        "/api/dashboard/visited": {
            "post": {
                "tags": ["Account"],
                "summary": "Record dashboard visit",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DashboardVisitResponse"}}}
            }
        },
        "/ws/toasts": {
            "get": {
                "description": "Streams every toast as a JSON text frame. Connect with ws:// or wss://.",
                "tags": ["WebSocket"],
                "summary": "Toast stream (WebSocket)",
                "parameters": [{"type": "string", "name": "client_key", "in": "query"}],
                "responses": {"101": {"description": "Switching Protocols", "schema": {"type": "string"}}}
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}}},
        "handler.SuccessResponse": {"type": "object", "properties": {"message": {"type": "string"}}},
        "handler.VerifyOTPResponse": {"type": "object", "properties": {"user": {"type": "object"}}},
        "handler.DashboardVisitResponse": {"type": "object", "properties": {"first_visit": {"type": "boolean"}}},
        "handler.ReferenceResponse": {"type": "object", "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/models.ReferenceItem"}}}},
        "handler.PerksResponse": {"type": "object", "properties": {"perks": {"type": "array", "items": {"$ref": "#/definitions/models.Perk"}}}},
        "handler.RedemptionsResponse": {"type": "object", "properties": {"page": {"type": "integer"}, "redemptions": {"type": "array", "items": {"$ref": "#/definitions/models.Redemption"}}}},
        "models.SignupForm": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "phone": {"type": "string"}, "password": {"type": "string"}}},
        "models.OTPForm": {"type": "object", "properties": {"email": {"type": "string"}, "otp": {"type": "string"}}},
        "models.ForgotPasswordForm": {"type": "object", "properties": {"email": {"type": "string"}}},
        "models.ResetPasswordForm": {"type": "object", "properties": {"email": {"type": "string"}, "otp": {"type": "string"}, "new_password": {"type": "string"}}},
        "models.Profile": {"type": "object", "properties": {"id": {"type": "string"}, "name": {"type": "string"}, "email": {"type": "string"}, "tokens": {"type": "integer"}, "completion_percentage": {"type": "number"}}},
        "models.ReferenceItem": {"type": "object", "properties": {"id": {"type": "string"}, "label": {"type": "string"}}},
        "models.Perk": {"type": "object", "properties": {"id": {"type": "string"}, "title": {"type": "string"}, "category": {"type": "string"}, "token_cost": {"type": "integer"}, "available": {"type": "boolean"}}},
        "models.Redemption": {"type": "object", "properties": {"id": {"type": "string"}, "perk_id": {"type": "string"}, "tokens": {"type": "integer"}, "code": {"type": "string"}, "created_at": {"type": "string"}}},
        "models.Analytics": {"type": "object", "properties": {"tokens_earned": {"type": "integer"}, "tokens_redeemed": {"type": "integer"}, "redemptions": {"type": "integer"}}},
        "onboarding.Progress": {"type": "object", "properties": {"current": {"type": "string"}, "completed": {"type": "array", "items": {"type": "string"}}, "completion_percentage": {"type": "number"}, "done": {"type": "boolean"}}},
        "session.Snapshot": {"type": "object", "properties": {"profile": {"$ref": "#/definitions/models.Profile"}, "loading": {"type": "boolean"}, "last_fetch_time": {"type": "string"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "127.0.0.1:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cash4Edu companion API",
	Description:      "Local API over the Cash4Edu client core: account flows, the cached student profile, onboarding and perks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
