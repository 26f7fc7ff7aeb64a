// Package docs provides Swagger documentation for the Insurance4You Agency API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Insurance4You Agency API",
        "description": "Insurance agency management API.\n\nWorkflows:\n1. **Auth** - Register and log in as customer or agent\n2. **Policies** - Browse the catalog, purchase prepared packages\n3. **Custom Policies** - Request individually priced cover\n4. **Claims** - File claims against in-force policies\n5. **Payments** - Settle premiums on accepted policies\n6. **Agents** - Commission statements and sales reports\n7. **Admin** - Policy decisions, expiry sweeps, agent roster",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/insurance4you/agency"
        },
        "license": {
            "name": "MIT"
        },
        "version": "1.0.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type \"Bearer\" followed by a space and the JWT token."
        }
    },
    "paths": {
        "/auth/register/customer": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a customer account",
                "operationId": "registerCustomer",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterCustomerInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Customer"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ProblemDetails"}},
                    "409": {"description": "NRIC or email already registered", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/auth/register/agent": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register an agent account",
                "operationId": "registerAgent",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterAgentInput"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Agent"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ProblemDetails"}},
                    "409": {"description": "NRIC or email already registered", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in and receive a bearer token",
                "operationId": "login",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Get the caller's profile",
                "operationId": "getProfile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile"},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            },
            "patch": {
                "tags": ["Auth"],
                "summary": "Update one profile field",
                "operationId": "updateProfile",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FieldUpdate"}}],
                "responses": {
                    "204": {"description": "Updated"},
                    "400": {"description": "Unknown field or bad value", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/policies/catalog/{policy_type}": {
            "get": {
                "tags": ["Policies"],
                "summary": "List prepared packages of a type",
                "operationId": "catalog",
                "parameters": [{"name": "policy_type", "in": "path", "required": true, "type": "string", "enum": ["LIFE", "VEHICLE", "HEALTH", "PROPERTY"]}],
                "responses": {
                    "200": {"description": "Packages", "schema": {"type": "array", "items": {"$ref": "#/definitions/PolicyPackage"}}},
                    "400": {"description": "Unknown policy type", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/policies/purchase": {
            "post": {
                "tags": ["Policies"],
                "summary": "Purchase a prepared package",
                "description": "Snapshots the package terms, assigns a random active agent and files the policy as requested.",
                "operationId": "purchase",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"policy_id": {"type": "string", "example": "L001"}}}}],
                "responses": {
                    "201": {"description": "Policy requested", "schema": {"$ref": "#/definitions/PurchasedPolicy"}},
                    "404": {"description": "Package not found", "schema": {"$ref": "#/definitions/ProblemDetails"}},
                    "409": {"description": "Already purchased", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/policies": {
            "get": {
                "tags": ["Policies"],
                "summary": "List the caller's policies and statuses",
                "operationId": "listPolicies",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Policies", "schema": {"type": "array", "items": {"$ref": "#/definitions/PolicyStatusView"}}}
                }
            }
        },
        "/policies/{policy_id}/cancel": {
            "post": {
                "tags": ["Policies"],
                "summary": "Cancel a policy",
                "operationId": "cancelPolicy",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "policy_id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/PurchasedPolicy"}},
                    "409": {"description": "Policy already terminal", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/custom-policies": {
            "post": {
                "tags": ["Custom Policies"],
                "summary": "Request a custom policy",
                "description": "Prices the request with the type's premium formula and files it for administrator validation.",
                "operationId": "createCustomPolicy",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CustomPolicyRequest"}}],
                "responses": {
                    "201": {"description": "Requested", "schema": {"$ref": "#/definitions/PurchasedPolicy"}},
                    "400": {"description": "Missing details", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/custom-policies/pending": {
            "get": {
                "tags": ["Custom Policies"],
                "summary": "List pending custom requests (admin)",
                "operationId": "listPendingCustom",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Pending requests"}
                }
            }
        },
        "/custom-policies/{policy_id}/approve": {
            "post": {
                "tags": ["Custom Policies"],
                "summary": "Approve a custom request (admin)",
                "operationId": "approveCustom",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "policy_id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Approved; in-force policy derived", "schema": {"$ref": "#/definitions/PurchasedPolicy"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/custom-policies/{policy_id}/reject": {
            "post": {
                "tags": ["Custom Policies"],
                "summary": "Reject a custom request (admin)",
                "operationId": "rejectCustom",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "policy_id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Rejected"},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/claims": {
            "post": {
                "tags": ["Claims"],
                "summary": "File a claim",
                "operationId": "fileClaim",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FileClaimRequest"}}],
                "responses": {
                    "201": {"description": "Claim filed", "schema": {"$ref": "#/definitions/Claim"}},
                    "409": {"description": "Policy not claim-eligible", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            },
            "get": {
                "tags": ["Claims"],
                "summary": "List the caller's claims",
                "operationId": "listClaims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Claims", "schema": {"type": "array", "items": {"$ref": "#/definitions/Claim"}}}
                }
            }
        },
        "/claims/pending": {
            "get": {
                "tags": ["Claims"],
                "summary": "List pending claims (admin)",
                "operationId": "listPendingClaims",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Pending claims", "schema": {"type": "array", "items": {"$ref": "#/definitions/Claim"}}}
                }
            }
        },
        "/claims/{claim_id}/decision": {
            "post": {
                "tags": ["Claims"],
                "summary": "Decide a pending claim (admin)",
                "operationId": "decideClaim",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "claim_id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClaimDecision"}}
                ],
                "responses": {
                    "200": {"description": "Decided", "schema": {"$ref": "#/definitions/Claim"}},
                    "409": {"description": "Already decided", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/payments/payable": {
            "get": {
                "tags": ["Payments"],
                "summary": "List policies awaiting premium payment",
                "operationId": "listPayable",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Payable policies", "schema": {"type": "array", "items": {"$ref": "#/definitions/PurchasedPolicy"}}}
                }
            }
        },
        "/payments": {
            "post": {
                "tags": ["Payments"],
                "summary": "Pay a policy premium",
                "operationId": "pay",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PayRequest"}}],
                "responses": {
                    "201": {"description": "Payment recorded", "schema": {"$ref": "#/definitions/Payment"}},
                    "409": {"description": "Already paid or not accepted", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/payments/history": {
            "get": {
                "tags": ["Payments"],
                "summary": "List the caller's payments",
                "operationId": "paymentHistory",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Payments", "schema": {"type": "array", "items": {"$ref": "#/definitions/Payment"}}}
                }
            }
        },
        "/agents/me/commission": {
            "get": {
                "tags": ["Agents"],
                "summary": "Commission statement for the caller",
                "operationId": "commission",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Commission statement"}
                }
            }
        },
        "/agents/me/report": {
            "get": {
                "tags": ["Agents"],
                "summary": "Sales report with yearly summary",
                "operationId": "salesReport",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Sales report"}
                }
            }
        },
        "/admin/policies/pending": {
            "get": {
                "tags": ["Admin"],
                "summary": "List requested policies awaiting a decision",
                "operationId": "listPendingPolicies",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Pending policies", "schema": {"type": "array", "items": {"$ref": "#/definitions/PurchasedPolicy"}}}
                }
            }
        },
        "/admin/policies/{customer_id}/{policy_id}/decision": {
            "post": {
                "tags": ["Admin"],
                "summary": "Approve or reject a requested policy",
                "operationId": "decidePolicy",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "customer_id", "in": "path", "required": true, "type": "string"},
                    {"name": "policy_id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"approve": {"type": "boolean"}}}}
                ],
                "responses": {
                    "200": {"description": "Decided", "schema": {"$ref": "#/definitions/PurchasedPolicy"}},
                    "409": {"description": "Not in requested status", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/admin/reports/production": {
            "get": {
                "tags": ["Admin"],
                "summary": "Agency-wide production report",
                "description": "Per-agent policies sold, premium totals and derived commission.",
                "operationId": "productionReport",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Production report"}
                }
            }
        },
        "/admin/policies/expire": {
            "post": {
                "tags": ["Admin"],
                "summary": "Expire policies past their end date",
                "operationId": "expirePolicies",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Count of expired policies"}
                }
            }
        }
    },
    "definitions": {
        "RegisterCustomerInput": {
            "type": "object",
            "required": ["nric", "name", "email", "password"],
            "properties": {
                "nric": {"type": "string", "example": "950505105333"},
                "name": {"type": "string", "example": "Daniel Lim"},
                "email": {"type": "string", "example": "daniel.lim@example.com"},
                "password": {"type": "string", "example": "changeme123"},
                "contact_number": {"type": "string", "example": "+60123456789"},
                "age": {"type": "integer", "example": 30},
                "occupation": {"type": "string", "example": "Engineer"},
                "income": {"type": "number", "example": 85000}
            }
        },
        "RegisterAgentInput": {
            "type": "object",
            "required": ["nric", "name", "email", "password"],
            "properties": {
                "nric": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "contact_number": {"type": "string"},
                "age": {"type": "integer"},
                "qualification": {"type": "string", "example": "CFP"},
                "commission_rate": {"type": "number", "example": 7.5}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["nric", "password", "role"],
            "properties": {
                "nric": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["Customer", "Agent", "Administrator"]}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"type": "object"}
            }
        },
        "FieldUpdate": {
            "type": "object",
            "required": ["field", "value"],
            "properties": {
                "field": {"type": "string", "example": "email"},
                "value": {"type": "string", "example": "new@example.com"}
            }
        },
        "Customer": {
            "type": "object",
            "properties": {
                "customer_id": {"type": "string", "example": "C01"},
                "nric": {"type": "string"},
                "occupation": {"type": "string"},
                "income": {"type": "number"}
            }
        },
        "Agent": {
            "type": "object",
            "properties": {
                "agent_id": {"type": "string", "example": "AG01"},
                "nric": {"type": "string"},
                "qualification": {"type": "string"},
                "commission_rate": {"type": "number"},
                "status": {"type": "string", "enum": ["active", "inactive"]}
            }
        },
        "PolicyPackage": {
            "type": "object",
            "properties": {
                "policy_id": {"type": "string", "example": "L001"},
                "policy_type": {"type": "string", "enum": ["LIFE", "VEHICLE", "HEALTH", "PROPERTY"]},
                "policy_plan": {"type": "string", "enum": ["STANDARD", "PREMIUM", "CUSTOM"]},
                "coverage_amount": {"type": "number"},
                "premium": {"type": "number"},
                "custom_data": {"type": "string"}
            }
        },
        "PolicyStatusView": {
            "type": "object",
            "properties": {
                "policy": {"$ref": "#/definitions/PurchasedPolicy"},
                "agent_name": {"type": "string"}
            }
        },
        "PurchasedPolicy": {
            "type": "object",
            "properties": {
                "customer_id": {"type": "string"},
                "policy_id": {"type": "string"},
                "agent_id": {"type": "string"},
                "policy_type": {"type": "string"},
                "policy_plan": {"type": "string"},
                "coverage_amount": {"type": "number"},
                "premium": {"type": "number"},
                "status": {"type": "string", "enum": ["requested", "accepted", "rejected", "premium_paid", "cancelled", "expired"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"}
            }
        },
        "CustomPolicyRequest": {
            "type": "object",
            "required": ["policy_type", "coverage_amount"],
            "properties": {
                "policy_type": {"type": "string", "enum": ["LIFE", "VEHICLE", "HEALTH", "PROPERTY"]},
                "age": {"type": "integer"},
                "coverage_amount": {"type": "number"},
                "life": {"type": "object"},
                "vehicle": {"type": "object"},
                "health": {"type": "object"},
                "property": {"type": "object"}
            }
        },
        "FileClaimRequest": {
            "type": "object",
            "required": ["policy_id", "details", "amount"],
            "properties": {
                "policy_id": {"type": "string"},
                "details": {"type": "string"},
                "amount": {"type": "number"}
            }
        },
        "Claim": {
            "type": "object",
            "properties": {
                "claim_id": {"type": "string", "example": "C01"},
                "policy_id": {"type": "string"},
                "customer_id": {"type": "string"},
                "details": {"type": "string"},
                "amount": {"type": "number"},
                "status": {"type": "string", "enum": ["Pending", "Accepted", "Rejected"]},
                "date_filed": {"type": "string", "format": "date-time"}
            }
        },
        "ClaimDecision": {
            "type": "object",
            "required": ["decision"],
            "properties": {
                "decision": {"type": "string", "enum": ["accept", "reject"]},
                "reason": {"type": "string", "description": "Required when rejecting"}
            }
        },
        "PayRequest": {
            "type": "object",
            "required": ["policy_id", "method"],
            "properties": {
                "policy_id": {"type": "string"},
                "method": {"type": "string", "enum": ["Card", "OnlineBanking"]}
            }
        },
        "Payment": {
            "type": "object",
            "properties": {
                "payment_id": {"type": "string", "example": "PAYMENT001"},
                "reference": {"type": "string"},
                "customer_id": {"type": "string"},
                "policy_id": {"type": "string"},
                "amount": {"type": "number"},
                "payment_date": {"type": "string", "format": "date-time"},
                "method": {"type": "string"},
                "status": {"type": "string", "example": "Completed"}
            }
        },
        "ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "about:blank"},
                "title": {"type": "string", "example": "Not Found"},
                "status": {"type": "integer", "example": 404},
                "detail": {"type": "string", "example": "Resource not found"}
            }
        }
    },
    "tags": [
        {"name": "Auth", "description": "Registration, login and profiles"},
        {"name": "Policies", "description": "Catalog and prepared-policy lifecycle"},
        {"name": "Custom Policies", "description": "Individually priced cover"},
        {"name": "Claims", "description": "Claim filing and decisions"},
        {"name": "Payments", "description": "Premium settlement"},
        {"name": "Agents", "description": "Commission and sales reporting"},
        {"name": "Admin", "description": "Policy decisions and agent roster"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Insurance4You Agency API",
	Description:      "Insurance agency management API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
