package usecase

import "github.com/riskibarqy/ga-meta/internal/platform/fetch"

// ProbeAction is what the crawl loop does with the outcome of one event probe.
type ProbeAction int

const (
	// ProbeReset clears the consecutive-miss counter.
	ProbeReset ProbeAction = iota
	// ProbeMiss counts toward the halting threshold.
	ProbeMiss
	// ProbeMissRequeue counts as a miss and schedules one more attempt after the loop halts.
	ProbeMissRequeue
)

func (a ProbeAction) String() string {
	switch a {
	case ProbeReset:
		return "reset"
	case ProbeMiss:
		return "miss"
	case ProbeMissRequeue:
		return "miss_requeue"
	default:
		return "unknown"
	}
}

// MissPolicy maps fetch outcomes to crawl loop actions. Every non-found
// outcome is a miss; RequeueTransient additionally gives retryable errors a
// second chance once the loop halts.
type MissPolicy struct {
	RequeueTransient bool
}

func (p MissPolicy) Action(status fetch.Status, kind fetch.ErrorKind) ProbeAction {
	switch status {
	case fetch.StatusFound:
		return ProbeReset
	case fetch.StatusError:
		if kind == fetch.ErrorRetryable && p.RequeueTransient {
			return ProbeMissRequeue
		}
		return ProbeMiss
	default:
		return ProbeMiss
	}
}
