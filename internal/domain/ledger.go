package domain

// Status represents where a sequence number is in its generation lifecycle.
type Status string

const (
	StatusMissing Status = "missing"
	StatusDrawing Status = "drawing"
	StatusStored  Status = "stored"
)

// Event represents an action that moves a sequence number between states.
type Event string

const (
	EventDraw  Event = "draw"
	EventStore Event = "store"
	EventFail  Event = "fail"
)

// Transition defines a valid state change: an event moves a sequence number
// from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes in the generation lifecycle.
// Stored is terminal: a ledger entry is never altered once visible.
var Transitions = []Transition{
	{Event: EventDraw, Src: StatusMissing, Dst: StatusDrawing},
	{Event: EventStore, Src: StatusDrawing, Dst: StatusStored},
	{Event: EventFail, Src: StatusDrawing, Dst: StatusMissing},
}

// Random is a ledger entry: the value minted for a sequence number.
type Random struct {
	Seq   SequenceNumber
	Value RandomValue
}

// AuditKind names a state change worth recording.
type AuditKind string

const (
	AuditOwnerInitialized AuditKind = "owner.initialized"
	AuditOperatorAdded    AuditKind = "operator.added"
	AuditRandomGenerated  AuditKind = "random.generated"
)

// AuditEvent describes a completed state change.
// Subject is the identity acted upon (new owner or added operator);
// Seq and Value are set only for AuditRandomGenerated.
type AuditEvent struct {
	Kind    AuditKind
	Caller  Identity
	Subject Identity
	Seq     SequenceNumber
	Value   RandomValue
}
