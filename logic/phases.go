package logic

import "time"

// Phase is the global round phase.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseQuiz
	PhaseHunt
	PhaseRoundEnd
	PhaseGameEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "LOBBY"
	case PhaseQuiz:
		return "QUIZ"
	case PhaseHunt:
		return "HUNT"
	case PhaseRoundEnd:
		return "ROUND_END"
	case PhaseGameEnd:
		return "GAME_END"
	}
	return "UNKNOWN"
}

// SubState is the per-client state orthogonal to the global phase. The local
// phase may diverge from the round phase only while frozen or spectating.
type SubState int

const (
	SubActive SubState = iota
	SubFrozen
	SubSpectating
)

// TimerFired identifies a one-shot deadline that expired this tick.
type TimerFired int

const (
	TimerQuizRequestDue TimerFired = iota
	TimerAnnounceExpired
	TimerInvulnExpired
)

// PhaseMachine owns the current phase, round bookkeeping, and the one-shot
// timers that hang off phase changes. All mutation happens on the session
// loop; timers are deadline fields polled each tick, and every expiry check
// re-verifies the state it is about to mutate, so a stale deadline can never
// clobber a newer state.
type PhaseMachine struct {
	LocalID string

	phase Phase
	sub   SubState
	round RoundContext

	// last applied transition sequence; SeqFor is monotonic across rounds
	// and phase order, so one watermark rejects duplicates and any
	// out-of-order event for an earlier phase of the round
	lastSeq uint64

	quizDelivered bool
	quizRequestAt time.Time

	invulnActive bool
	invulnUntil  time.Time

	announceActive bool
	announceUntil  time.Time
}

func NewPhaseMachine(localID string) *PhaseMachine {
	return &PhaseMachine{
		LocalID: localID,
		phase:   PhaseLobby,
	}
}

// Phase returns the global round phase.
func (pm *PhaseMachine) Phase() Phase { return pm.phase }

// Sub returns the per-client sub-state.
func (pm *PhaseMachine) Sub() SubState { return pm.sub }

// Round returns the current round context.
func (pm *PhaseMachine) Round() RoundContext { return pm.round }

// Frozen reports whether the local client is serving a penalty quiz.
func (pm *PhaseMachine) Frozen() bool { return pm.sub == SubFrozen }

// Spectating reports whether the local client has been eliminated.
func (pm *PhaseMachine) Spectating() bool { return pm.sub == SubSpectating }

// Invulnerable reports whether the post-recovery protection window is live.
func (pm *PhaseMachine) Invulnerable() bool { return pm.invulnActive }

// AnnouncementVisible reports whether the role banner is up.
func (pm *PhaseMachine) AnnouncementVisible() bool { return pm.announceActive }

// LocalIsChaser reports whether this client holds the chaser role.
func (pm *PhaseMachine) LocalIsChaser() bool { return pm.round.IsChaser(pm.LocalID) }

// CanMove reports whether the predictor may advance the local entity.
func (pm *PhaseMachine) CanMove() bool {
	if pm.sub == SubFrozen {
		return false
	}
	return pm.phase == PhaseHunt || pm.phase == PhaseLobby
}

// CanCollect reports whether optimistic pickup is allowed this phase.
func (pm *PhaseMachine) CanCollect() bool {
	return pm.phase == PhaseHunt && pm.sub == SubActive
}

// SeqFor synthesizes a sequence number for events whose wire shape omits
// one. It orders transitions globally: later rounds beat earlier rounds, and
// within a round the phases order by their enum position, so an incremental
// event and a snapshot describing the same phase instance compare equal and
// first-writer-wins.
func SeqFor(round int, p Phase) uint64 {
	return uint64(round)*8 + uint64(p) + 1
}

// ApplyPhase transitions to p if seq is newer than the last applied
// transition. A delayed event for an earlier phase of the current round
// carries a lower sequence and must never regress the phase. Returns false
// for stale or duplicate events.
func (pm *PhaseMachine) ApplyPhase(p Phase, seq uint64) bool {
	if seq <= pm.lastSeq {
		return false
	}
	pm.lastSeq = seq
	pm.phase = p
	return true
}

// StartRound replaces the round context wholesale.
func (pm *PhaseMachine) StartRound(rc RoundContext) {
	pm.round = rc
}

// SetRoles replaces the role-holder set. The banner is raised only when the
// local role actually changed (or force, for the initial assignment), so a
// snapshot replaying an already-applied reassignment stays silent. Returns
// true when the banner went up; the caller re-derives speed either way.
func (pm *PhaseMachine) SetRoles(chaserIDs []string, now time.Time, announceFor time.Duration, force bool) bool {
	was := pm.LocalIsChaser()
	had := pm.round.ChaserIDs != nil
	set := make(map[string]bool, len(chaserIDs))
	for _, id := range chaserIDs {
		set[id] = true
	}
	pm.round.ChaserIDs = set

	if !force && had && pm.LocalIsChaser() == was {
		return false
	}
	pm.announceActive = true
	pm.announceUntil = now.Add(announceFor)
	return true
}

// ShortenAnnouncement cuts the role banner short (hunt start).
func (pm *PhaseMachine) ShortenAnnouncement(now time.Time, keep time.Duration) {
	if !pm.announceActive {
		return
	}
	cutoff := now.Add(keep)
	if cutoff.Before(pm.announceUntil) {
		pm.announceUntil = cutoff
	}
}

// EnterFrozen marks the local client tagged. Arms the bounded penalty-quiz
// re-request timer unless content already arrived. Idempotent.
func (pm *PhaseMachine) EnterFrozen(now time.Time, retryAfter time.Duration) bool {
	if pm.sub == SubFrozen {
		return false
	}
	pm.sub = SubFrozen
	pm.quizDelivered = false
	pm.quizRequestAt = now.Add(retryAfter)
	return true
}

// QuizDelivered cancels the pending re-request.
func (pm *PhaseMachine) QuizDelivered() {
	pm.quizDelivered = true
}

// Recover clears frozen after a penalty-quiz success and, when the rules
// include it, opens the invulnerability window.
func (pm *PhaseMachine) Recover(now time.Time, rules MatchRules, invulnFor time.Duration) {
	if pm.sub != SubFrozen {
		return
	}
	pm.sub = SubActive
	if rules.InvulnOnRecover {
		pm.GrantInvulnerability(now, invulnFor)
	}
}

// GrantInvulnerability opens (or extends) the protection window.
func (pm *PhaseMachine) GrantInvulnerability(now time.Time, d time.Duration) {
	pm.invulnActive = true
	pm.invulnUntil = now.Add(d)
}

// EndInvulnerability clears the window early on an explicit server signal.
func (pm *PhaseMachine) EndInvulnerability() {
	pm.invulnActive = false
}

// ForceActive applies an explicit server ACTIVE state without opening the
// recovery invulnerability window (snapshot replay path).
func (pm *PhaseMachine) ForceActive() {
	pm.sub = SubActive
}

// Eliminate moves the local client to spectating.
func (pm *PhaseMachine) Eliminate() {
	pm.sub = SubSpectating
}

// CheckTimers expires due deadlines. The quiz re-request timer re-arms
// itself until content arrives; the others are one-shot.
func (pm *PhaseMachine) CheckTimers(now time.Time, quizRetry time.Duration) []TimerFired {
	var fired []TimerFired

	if pm.sub == SubFrozen && !pm.quizDelivered && !pm.quizRequestAt.IsZero() && now.After(pm.quizRequestAt) {
		fired = append(fired, TimerQuizRequestDue)
		pm.quizRequestAt = now.Add(quizRetry)
	}
	if pm.announceActive && now.After(pm.announceUntil) {
		pm.announceActive = false
		fired = append(fired, TimerAnnounceExpired)
	}
	if pm.invulnActive && now.After(pm.invulnUntil) {
		pm.invulnActive = false
		fired = append(fired, TimerInvulnExpired)
	}
	return fired
}
