package reminders

const (
	WorkflowName  = "reminder_sweep"
	ActivitySweep = "reminder_sweep_activity"
)
