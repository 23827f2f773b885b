// Package gate decides whether an event is still worth relaying. Clients
// re-sync their view on reconnect, so delivering an event long after the
// fact only wastes fan-out; the gate drops anything older than the
// configured window, and anything nobody is authorized to see.
package gate

import (
	"time"

	"github.com/keywinf/relay-stack/relay/internal/event"
	"github.com/keywinf/relay-stack/relay/internal/recipient"
)

// Suppression reasons, recorded in logs and metrics.
const (
	ReasonStale        = "stale"
	ReasonNoRecipients = "no_recipients"
)

// Verdict is the gate decision for one event.
type Verdict struct {
	Admit  bool
	Reason string // set when Admit is false
	Age    time.Duration
}

// Gate admits events that are fresh and have at least one recipient.
type Gate struct {
	maxAge time.Duration
	now    func() time.Time
}

// New creates a gate with the given freshness window.
func New(maxAge time.Duration) *Gate {
	return &Gate{maxAge: maxAge, now: time.Now}
}

// WithClock replaces the clock. Tests use this to pin the current time.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Evaluate decides whether the envelope should be relayed to the given
// recipient set. Staleness is checked first: a stale event is dropped even
// when it has recipients.
func (g *Gate) Evaluate(env *event.Envelope, recipients recipient.Set) Verdict {
	age := env.Age(g.now())
	if age > g.maxAge {
		return Verdict{Admit: false, Reason: ReasonStale, Age: age}
	}
	if recipients.IsEmpty() {
		return Verdict{Admit: false, Reason: ReasonNoRecipients, Age: age}
	}
	return Verdict{Admit: true, Age: age}
}
