package conflict

// TraceKind names a diagnostic decision taken during Scan.
type TraceKind string

const (
	// TraceConflict: a planned row was marked conflicted by an open active row.
	TraceConflict TraceKind = "conflict"
	// TraceRetract: a completed active row cleared conflicts for its seq.
	TraceRetract TraceKind = "retract"
	// TraceKeep: a completed active row left conflicts standing because a
	// planned row still carries a quantity for the seq.
	TraceKeep TraceKind = "keep"
)

// TraceEvent describes one decision. Row indexes refer to the input lanes;
// PlannedRow is -1 for retraction decisions.
type TraceEvent struct {
	Kind        TraceKind
	Seq         string
	ActiveLane  string
	ActiveRow   int
	PlannedLane string
	PlannedRow  int
}

// Option configures a Scan call.
type Option func(*options)

type options struct {
	trace func(TraceEvent)
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) emit(ev TraceEvent) {
	if o.trace != nil {
		o.trace(ev)
	}
}

// WithTrace installs a callback receiving every scan decision.
func WithTrace(fn func(TraceEvent)) Option {
	return func(o *options) {
		o.trace = fn
	}
}
