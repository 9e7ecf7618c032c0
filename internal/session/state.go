package session

import "github.com/desertthunder/mmx/internal/models"

// Status names the variant a [State] holds.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusExhausted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusExhausted:
		return "exhausted"
	case StatusFailed:
		return "failed"
	default:
		return ""
	}
}

// State is the controller's session state. Exactly one variant holds at a time:
// [Loading], [Ready], [Exhausted] or [Failed].
type State interface {
	Status() Status
	state()
}

// Loading means a fetch is in flight.
type Loading struct{}

// Ready holds the candidate awaiting a decision.
type Ready struct {
	Candidate models.Candidate
}

// Exhausted means the user has judged every movie. It is a terminal condition, not a failure.
type Exhausted struct{}

// Failed holds the user-facing reason the last fetch failed.
type Failed struct {
	Message string
	Err     error
}

func (Loading) Status() Status   { return StatusLoading }
func (Ready) Status() Status     { return StatusReady }
func (Exhausted) Status() Status { return StatusExhausted }
func (Failed) Status() Status    { return StatusFailed }

func (Loading) state()   {}
func (Ready) state()     {}
func (Exhausted) state() {}
func (Failed) state()    {}

// ViewModel is the read-only snapshot handed to renderers.
//
// Candidate is set only when Status is [StatusReady], ErrorMessage only when it is [StatusFailed].
// Remaining is nil until a progress refresh has succeeded.
type ViewModel struct {
	Status       Status
	Candidate    *models.Candidate
	Remaining    *int
	ErrorMessage string
}

func newViewModel(s State, remaining *int) ViewModel {
	vm := ViewModel{Status: s.Status()}
	if remaining != nil {
		r := *remaining
		vm.Remaining = &r
	}

	switch st := s.(type) {
	case Ready:
		c := st.Candidate
		vm.Candidate = &c
	case Failed:
		vm.ErrorMessage = st.Message
	}
	return vm
}
