package domain

import "fmt"

// WorkflowStatus is the stage of a bike in the repair pipeline.
type WorkflowStatus string

const (
	StatusDiagnoseNodig      WorkflowStatus = "diagnose_nodig"
	StatusDiagnoseBezig      WorkflowStatus = "diagnose_bezig"
	StatusWachtOpAkkoord     WorkflowStatus = "wacht_op_akkoord"
	StatusWachtOpOnderdelen  WorkflowStatus = "wacht_op_onderdelen"
	StatusKlaarVoorReparatie WorkflowStatus = "klaar_voor_reparatie"
	StatusInReparatie        WorkflowStatus = "in_reparatie"
	StatusAfgerond           WorkflowStatus = "afgerond"
)

var workflowStatuses = []WorkflowStatus{
	StatusDiagnoseNodig,
	StatusDiagnoseBezig,
	StatusWachtOpAkkoord,
	StatusWachtOpOnderdelen,
	StatusKlaarVoorReparatie,
	StatusInReparatie,
	StatusAfgerond,
}

func WorkflowStatuses() []WorkflowStatus {
	out := make([]WorkflowStatus, len(workflowStatuses))
	copy(out, workflowStatuses)
	return out
}

func (s WorkflowStatus) Valid() bool {
	for _, known := range workflowStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// AcceptsCompletions reports whether pending registrations may be completed in this status.
func (s WorkflowStatus) AcceptsCompletions() bool {
	return s == StatusKlaarVoorReparatie || s == StatusInReparatie
}

type WorkflowEvent string

const (
	EventStartDiagnosis  WorkflowEvent = "start_diagnosis"
	EventSubmitDiagnosis WorkflowEvent = "submit_diagnosis"
	EventApprove         WorkflowEvent = "approve"
	EventAwaitParts      WorkflowEvent = "await_parts"
	EventPartsArrived    WorkflowEvent = "parts_arrived"
	EventClaim           WorkflowEvent = "claim"
	EventRelease         WorkflowEvent = "release"
	EventFinish          WorkflowEvent = "finish"
	EventReopen          WorkflowEvent = "reopen"
)

// Transition is one row of the workflow table: the guard and side effects a service
// must apply when Event fires in one of From.
type Transition struct {
	Event             WorkflowEvent
	From              []WorkflowStatus
	To                WorkflowStatus
	ClaimsMechanic    bool
	ClearsMechanic    bool
	StampsDiagnosis   bool
	RequiresChecklist bool
	ForceCompletes    bool
}

func (t Transition) allows(from WorkflowStatus) bool {
	for _, s := range t.From {
		if s == from {
			return true
		}
	}
	return false
}

var workflowTable = []Transition{
	{Event: EventStartDiagnosis, From: []WorkflowStatus{StatusDiagnoseNodig}, To: StatusDiagnoseBezig},
	{Event: EventSubmitDiagnosis, From: []WorkflowStatus{StatusDiagnoseNodig, StatusDiagnoseBezig}, To: StatusWachtOpAkkoord, StampsDiagnosis: true},
	{Event: EventApprove, From: []WorkflowStatus{StatusWachtOpAkkoord}, To: StatusKlaarVoorReparatie},
	{Event: EventAwaitParts, From: []WorkflowStatus{StatusWachtOpAkkoord, StatusKlaarVoorReparatie}, To: StatusWachtOpOnderdelen},
	{Event: EventAwaitParts, From: []WorkflowStatus{StatusInReparatie}, To: StatusWachtOpOnderdelen, ClearsMechanic: true},
	{Event: EventPartsArrived, From: []WorkflowStatus{StatusWachtOpOnderdelen}, To: StatusKlaarVoorReparatie},
	{Event: EventClaim, From: []WorkflowStatus{StatusKlaarVoorReparatie}, To: StatusInReparatie, ClaimsMechanic: true},
	{Event: EventRelease, From: []WorkflowStatus{StatusInReparatie}, To: StatusKlaarVoorReparatie, ClearsMechanic: true},
	{Event: EventFinish, From: []WorkflowStatus{StatusInReparatie}, To: StatusAfgerond, RequiresChecklist: true, ForceCompletes: true},
	{Event: EventReopen, From: []WorkflowStatus{StatusAfgerond}, To: StatusDiagnoseNodig},
}

// NextTransition looks up the row for event fired from status.
func NextTransition(from WorkflowStatus, event WorkflowEvent) (Transition, error) {
	for _, t := range workflowTable {
		if t.Event == event && t.allows(from) {
			return t, nil
		}
	}
	return Transition{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, from)
}

// TransitionTo resolves the row that moves a bike from one status to another.
func TransitionTo(from, to WorkflowStatus) (Transition, error) {
	if !to.Valid() {
		return Transition{}, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	for _, t := range workflowTable {
		if t.To == to && t.allows(from) {
			return t, nil
		}
	}
	return Transition{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}

// AvailableEvents lists the events that may fire from status, in table order.
func AvailableEvents(from WorkflowStatus) []WorkflowEvent {
	var out []WorkflowEvent
	for _, t := range workflowTable {
		if t.allows(from) {
			out = append(out, t.Event)
		}
	}
	return out
}

// InitialStatus is the status a newly registered bike enters.
func InitialStatus(isSalesBike, diagnosisComplete bool) WorkflowStatus {
	switch {
	case isSalesBike:
		return StatusInReparatie
	case diagnosisComplete:
		return StatusWachtOpAkkoord
	default:
		return StatusDiagnoseNodig
	}
}
