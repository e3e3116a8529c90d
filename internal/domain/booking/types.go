package booking

// Status is the closed set of booking states. pending, confirmed and
// in_progress are non-terminal; completed, cancelled and rejected are
// terminal and admit no further transitions.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRejected   Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	default:
		return false
	}
}

// NonTerminalStatuses is the status set that holds a boat or crew member
// on the calendar.
func NonTerminalStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusInProgress}
}

// BlockingStatuses is the subset that participates in overlap conflict
// checks. pending is deliberately excluded: several users may hold
// unconfirmed requests for the same slot and the merchant's confirmation
// is the tie-break (the confirm path re-checks availability).
func BlockingStatuses() []Status {
	return []Status{StatusConfirmed, StatusInProgress}
}

// PaymentStatus is stored on the booking for reporting; payment mechanics
// belong to an external collaborator.
type PaymentStatus string

const (
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunding PaymentStatus = "refunding"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Intent names a requested transition. There is no generic status update;
// every mutation of Status goes through one of these.
type Intent string

const (
	IntentConfirm  Intent = "confirm"
	IntentReject   Intent = "reject"
	IntentCancel   Intent = "cancel"
	IntentStart    Intent = "start_service"
	IntentComplete Intent = "complete_service"
)

func AllIntents() []Intent {
	return []Intent{IntentConfirm, IntentReject, IntentCancel, IntentStart, IntentComplete}
}

type transitionKey struct {
	from   Status
	intent Intent
}

// Effect is what a legal transition does beyond changing Status. Side
// effects are declared here and executed by the one caller that applies
// the transition, never as ad-hoc writes elsewhere.
type Effect struct {
	Next             Status
	StampsConfirmed  bool
	StampsCompleted  bool
	StampsCancelled  bool
	RequiresReason   bool
	ReleasesBoat     bool
	AllowsRatingNext bool
}

// transitions is the whole state machine. Adding a status or an edge means
// touching this table and nothing else.
var transitions = map[transitionKey]Effect{
	{StatusPending, IntentConfirm}: {Next: StatusConfirmed, StampsConfirmed: true},
	{StatusPending, IntentReject}:  {Next: StatusRejected, StampsCancelled: true, RequiresReason: true},
	{StatusPending, IntentCancel}:  {Next: StatusCancelled, StampsCancelled: true, RequiresReason: true},

	{StatusConfirmed, IntentStart}:  {Next: StatusInProgress},
	{StatusConfirmed, IntentCancel}: {Next: StatusCancelled, StampsCancelled: true, RequiresReason: true},

	{StatusInProgress, IntentComplete}: {
		Next:             StatusCompleted,
		StampsCompleted:  true,
		ReleasesBoat:     true,
		AllowsRatingNext: true,
	},
}

// EffectOf reports the effect of applying intent from the given status,
// or false when the edge does not exist.
func EffectOf(from Status, intent Intent) (Effect, bool) {
	eff, ok := transitions[transitionKey{from, intent}]
	return eff, ok
}
