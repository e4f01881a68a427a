// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Log in", "security": []}},
        "/bikes": {
            "get": {"tags": ["bikes"], "summary": "List bikes"},
            "post": {"tags": ["bikes"], "summary": "Register a bike"},
            "delete": {"tags": ["bikes"], "summary": "Delete bikes"}
        },
        "/bikes/tables": {"get": {"tags": ["bikes"], "summary": "Bikes grouped by table"}},
        "/bikes/frame/{frame}": {"get": {"tags": ["bikes"], "summary": "Find a bike by frame number"}},
        "/bikes/{id}": {"get": {"tags": ["bikes"], "summary": "Get a bike"}},
        "/bikes/{id}/table": {"put": {"tags": ["bikes"], "summary": "Assign table and mechanic"}},
        "/bikes/{id}/comments": {
            "get": {"tags": ["bikes"], "summary": "List comments"},
            "post": {"tags": ["bikes"], "summary": "Add a comment"}
        },
        "/bikes/{id}/calls": {
            "get": {"tags": ["bikes"], "summary": "Call history"},
            "post": {"tags": ["bikes"], "summary": "Record a customer call"}
        },
        "/bikes/{id}/checklist": {"get": {"tags": ["checklist"], "summary": "Checklist of a bike"}},
        "/bikes/{id}/checklist/{itemId}": {"put": {"tags": ["checklist"], "summary": "Check or uncheck an item"}},
        "/bikes/{id}/events": {"post": {"tags": ["workflow"], "summary": "Fire a workflow event"}},
        "/bikes/{id}/status": {"put": {"tags": ["workflow"], "summary": "Move a bike to a status"}},
        "/bikes/{id}/repairs": {"post": {"tags": ["workflow"], "summary": "Add repairs to a bike"}},
        "/bikes/{id}/repairs/pending": {"get": {"tags": ["workflow"], "summary": "Pending repairs of a bike"}},
        "/registrations/{id}/complete": {"post": {"tags": ["workflow"], "summary": "Complete a repair"}},
        "/registrations/{id}": {"delete": {"tags": ["workflow"], "summary": "Delete a pending repair"}},
        "/call-statuses": {"get": {"tags": ["bikes"], "summary": "List call statuses"}},
        "/checklist-items": {
            "get": {"tags": ["checklist"], "summary": "List checklist items"},
            "post": {"tags": ["checklist"], "summary": "Create a checklist item"}
        },
        "/checklist-items/{id}": {"put": {"tags": ["checklist"], "summary": "Update a checklist item"}},
        "/repair-types": {"get": {"tags": ["catalog"], "summary": "List repair types"}},
        "/repair-types/{id}": {"delete": {"tags": ["catalog"], "summary": "Delete a repair type"}},
        "/products": {"post": {"tags": ["catalog"], "summary": "Create a product"}},
        "/inventory": {"get": {"tags": ["inventory"], "summary": "Stock overview"}},
        "/inventory/groups": {
            "get": {"tags": ["inventory"], "summary": "List inventory groups"},
            "post": {"tags": ["inventory"], "summary": "Create an inventory group"}
        },
        "/inventory/{id}": {
            "get": {"tags": ["inventory"], "summary": "Stock status of one item"},
            "put": {"tags": ["inventory"], "summary": "Update an inventory item"}
        },
        "/inventory/{id}/adjust": {"post": {"tags": ["inventory"], "summary": "Adjust stock"}},
        "/inventory/{id}/fields": {"patch": {"tags": ["inventory"], "summary": "Schedule a field edit"}},
        "/tasks": {"post": {"tags": ["tasks"], "summary": "Create a task"}},
        "/tasks/active": {"get": {"tags": ["tasks"], "summary": "My active tasks"}},
        "/tasks/created": {"get": {"tags": ["tasks"], "summary": "Tasks I created"}},
        "/tasks/{id}": {
            "get": {"tags": ["tasks"], "summary": "Get a task"},
            "delete": {"tags": ["tasks"], "summary": "Delete a task"}
        },
        "/tasks/{id}/assign": {"put": {"tags": ["tasks"], "summary": "Assign a task"}},
        "/tasks/{id}/status": {"put": {"tags": ["tasks"], "summary": "Change task status"}},
        "/tasks/{id}/reject": {"post": {"tags": ["tasks"], "summary": "Reject a task"}},
        "/availability": {"post": {"tags": ["availability"], "summary": "Request availability"}},
        "/availability/mine": {"get": {"tags": ["availability"], "summary": "My availability requests"}},
        "/availability/hours": {"get": {"tags": ["availability"], "summary": "Approved hours"}},
        "/availability/pending": {"get": {"tags": ["availability"], "summary": "Pending availability requests"}},
        "/availability/{id}/review": {"post": {"tags": ["availability"], "summary": "Review an availability request"}},
        "/profiles": {
            "get": {"tags": ["profiles"], "summary": "List profiles"},
            "post": {"tags": ["profiles"], "summary": "Create a profile"}
        },
        "/profiles/me": {"get": {"tags": ["profiles"], "summary": "Current profile"}},
        "/profiles/{id}/active": {"put": {"tags": ["profiles"], "summary": "Activate or deactivate a profile"}},
        "/reports/warranty": {"get": {"tags": ["reports"], "summary": "Warranty report"}},
        "/reports/points": {"get": {"tags": ["reports"], "summary": "Points per mechanic"}},
        "/settings": {
            "get": {"tags": ["settings"], "summary": "My settings"},
            "put": {"tags": ["settings"], "summary": "Update my settings"}
        },
        "/events": {"get": {"tags": ["events"], "summary": "Subscribe to row changes", "produces": ["text/event-stream"]}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8081",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Webike Workshop API",
	Description:      "Bike intake, repair workflow, inventory and front-of-house tasks for the Webike workshop",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
