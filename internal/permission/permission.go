// Package permission models the location-access consent check. On mobile
// platforms this is an OS dialog; here it is a small capability interface
// with a policy-driven and an interactive implementation.
package permission

// Decision is the outcome of a permission check or request.
type Decision int

const (
	Denied Decision = iota
	Granted
)

func (d Decision) String() string {
	if d == Granted {
		return "granted"
	}
	return "denied"
}

// Provider answers whether the application may sample device location.
// Check reports the current state without side effects; Request may involve
// the user and is called only after Check returns Denied.
type Provider interface {
	Check() Decision
	Request() Decision
}

// Static is a fixed-policy provider, configured ahead of time.
type Static struct {
	decision Decision
}

// NewStatic returns a provider that always answers with the given decision.
func NewStatic(d Decision) *Static {
	return &Static{decision: d}
}

func (s *Static) Check() Decision   { return s.decision }
func (s *Static) Request() Decision { return s.decision }
