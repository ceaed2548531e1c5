package planning

import "github.com/yungbote/careerbridge-backend/internal/domain/plan"

const PlanSchemaName = "CareerPlan"

func stringSchema() map[string]any { return map[string]any{"type": "string"} }

func stringOrNullSchema() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

func intSchema() map[string]any { return map[string]any{"type": "integer"} }

func boolSchema() map[string]any { return map[string]any{"type": "boolean"} }

func enumSchema(nullable bool, values ...string) map[string]any {
	arr := make([]any, 0, len(values)+1)
	for _, v := range values {
		arr = append(arr, v)
	}
	if nullable {
		arr = append(arr, nil)
		return map[string]any{"type": []any{"string", "null"}, "enum": arr}
	}
	return map[string]any{"type": "string", "enum": arr}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func arraySchema(items map[string]any, minItems, maxItems int) map[string]any {
	out := map[string]any{"type": "array", "items": items}
	if minItems > 0 {
		out["minItems"] = minItems
	}
	if maxItems > 0 {
		out["maxItems"] = maxItems
	}
	return out
}

// PlanSchema is the strict JSON schema sent with generation requests. Its
// cardinality hints are advisory; Validate is the gate.
func PlanSchema(l Limits) map[string]any {
	resource := objectSchema(map[string]any{
		"title":        stringSchema(),
		"description":  stringSchema(),
		"url":          stringSchema(),
		"type":         enumSchema(false, plan.ResourceTypes...),
		"cost":         stringSchema(),
		"duration":     stringOrNullSchema(),
		"location":     enumSchema(true, plan.ResourceLocations...),
		"provider":     stringOrNullSchema(),
		"isAccredited": map[string]any{"type": []any{"boolean", "null"}},
	}, "title", "description", "url", "type", "cost", "duration", "location", "provider", "isAccredited")

	task := objectSchema(map[string]any{
		"title":       stringSchema(),
		"description": stringSchema(),
		"orderIndex":  intSchema(),
	}, "title", "description", "orderIndex")

	milestone := objectSchema(map[string]any{
		"title":                stringSchema(),
		"description":          stringSchema(),
		"orderIndex":           intSchema(),
		"completionCriteria":   stringSchema(),
		"verificationRequired": boolSchema(),
		"tasks":                arraySchema(task, l.MinTasks, l.MaxTasks),
		"resources":            arraySchema(resource, l.MinResources, 0),
	}, "title", "description", "orderIndex", "completionCriteria", "verificationRequired", "tasks", "resources")

	phase := objectSchema(map[string]any{
		"title":             stringSchema(),
		"description":       stringSchema(),
		"estimatedDuration": stringSchema(),
		"orderIndex":        intSchema(),
		"milestones":        arraySchema(milestone, l.MinMilestones, l.MaxMilestones),
	}, "title", "description", "estimatedDuration", "orderIndex", "milestones")

	return objectSchema(map[string]any{
		"targetCareer":      stringSchema(),
		"currentCareer":     stringSchema(),
		"estimatedDuration": stringSchema(),
		"salaryExpectations": objectSchema(map[string]any{
			"entry":       stringSchema(),
			"experienced": stringSchema(),
		}, "entry", "experienced"),
		"jobMarketOutlook": stringSchema(),
		"phases":           arraySchema(phase, l.MinPhases, l.MaxPhases),
	}, "targetCareer", "currentCareer", "estimatedDuration", "salaryExpectations", "jobMarketOutlook", "phases")
}
