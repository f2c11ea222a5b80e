package domain

type EntryAction string

const (
	ActionJoin     EntryAction = "join"
	ActionCallNext EntryAction = "call_next"
	ActionStart    EntryAction = "start_service"
	ActionComplete EntryAction = "complete_service"
	ActionSkip     EntryAction = "skip"
	ActionCancel   EntryAction = "cancel"
	ActionAdjust   EntryAction = "adjust_position"
)

// transitions maps each staff action to the statuses an entry must hold
// for the action to apply.
var transitions = map[EntryAction][]EntryStatus{
	ActionCallNext: {EntryStatusWaiting},
	ActionStart:    {EntryStatusCalled},
	ActionComplete: {EntryStatusCalled, EntryStatusInService},
	ActionSkip:     {EntryStatusWaiting},
	ActionCancel:   {EntryStatusWaiting, EntryStatusCalled, EntryStatusInService},
}

func ValidTransition(action EntryAction, status EntryStatus) bool {
	allowed, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
