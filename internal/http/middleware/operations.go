package middleware

import "github.com/gin-gonic/gin"

const (
	operationKey     = "operation"
	operationUnknown = "unmatched"
)

var routeOperations = map[string]string{
	"GET /healthz": "health",

	"POST /api/auth/register": "auth.register",
	"POST /api/auth/login":    "auth.login",
	"GET /api/events":         "realtime.stream",

	"GET /api/profile":                  "profile.get",
	"PUT /api/profile":                  "profile.put",
	"GET /api/notification-preferences": "preferences.get",
	"PUT /api/notification-preferences": "preferences.put",

	"POST /api/conversations":              "conversation.create",
	"GET /api/conversations":               "conversation.list",
	"GET /api/conversations/:id/messages":  "conversation.messages",
	"POST /api/conversations/:id/messages": "conversation.post_message",

	"POST /api/plans/generate":              "plan.generate",
	"GET /api/plans/active":                 "plan.active",
	"GET /api/plans/:id":                    "plan.get",
	"GET /api/plans/:id/progress":           "plan.progress",
	"GET /api/plans/:id/resources/featured": "plan.featured_resources",
	"POST /api/plans/:id/archive":           "plan.archive",
	"PATCH /api/tasks/:id":                  "task.toggle",
	"POST /api/milestones/:id/complete":     "milestone.complete",
	"POST /api/milestones/:id/skip":         "milestone.skip",
}

// OperationFor names the API operation behind a matched route. Unmatched
// paths all report "unmatched".
func OperationFor(method, route string) string {
	if route == "" {
		return operationUnknown
	}
	if op, ok := routeOperations[method+" "+route]; ok {
		return op
	}
	return method + " " + route
}

// Operation returns the label set by AttachTraceContext.
func Operation(c *gin.Context) string {
	if op := c.GetString(operationKey); op != "" {
		return op
	}
	return OperationFor(c.Request.Method, c.FullPath())
}
