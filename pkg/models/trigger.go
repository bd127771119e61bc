package models

// Built-in trigger types. Firing a trigger is the hosting process's concern;
// the engine only validates the descriptor and starts traversal at the
// trigger's successors.
const (
	TriggerTypeWebhook  = "trigger:webhook"
	TriggerTypeSchedule = "trigger:schedule"
	TriggerTypeQueue    = "trigger:queue"
)

// Trigger is the event descriptor that starts a workflow.
type Trigger struct {
	ID     string         `json:"id"     validate:"required"`
	Type   string         `json:"type"   validate:"required"`
	Config map[string]any `json:"config"`
}

// KnownTriggerType reports whether t names a built-in trigger type.
func KnownTriggerType(t string) bool {
	switch t {
	case TriggerTypeWebhook, TriggerTypeSchedule, TriggerTypeQueue:
		return true
	}

	return false
}
