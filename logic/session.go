package logic

import (
	"context"
	"log"
	"time"

	"gridhunt_client/network"
)

// Sender pushes events to the server. Fire-and-forget: returns false while
// the channel is down, which is how broadcast suppression works.
type Sender interface {
	Send(t string, payload any) bool
}

// InputProvider supplies the current movement intent each tick (up to two
// simultaneous axes; the predictor normalizes).
type InputProvider interface {
	Intent() Vector2
}

// Persister is the client-local persistence the session touches.
type Persister interface {
	SaveRoomCode(code string)
	ClearRoomCode()
	RecordRun(name string, score int, durationSec float64)
}

// FrameSink receives the per-tick frame for the external renderer.
type FrameSink func(Frame)

// Session is the per-match context object: it owns the world grid, the
// predictor, the remote table, the collectible store, and the phase machine,
// and interleaves network events with the fixed-rate tick on one goroutine.
// Nothing here is shared; handlers and the tick never run concurrently.
type Session struct {
	ClientID string
	Name     string

	sender  Sender
	persist Persister
	input   InputProvider
	onFrame FrameSink

	cfg      MatchConfig
	roomCode string
	grid     *WorldGrid
	mapper   Mapper

	pred    *Predictor
	remotes *Interpolator
	store   *CollectibleStore
	phases  *PhaseMachine

	matchActive bool
	matchStart  time.Time
	connected   bool
	tick        uint64
	cues        []Cue
	autoJoin    string

	// clock hook for tests
	now func() time.Time
}

func NewSession(clientID, name string, sender Sender, persist Persister, input InputProvider, onFrame FrameSink) *Session {
	s := &Session{
		ClientID: clientID,
		Name:     name,
		sender:   sender,
		persist:  persist,
		input:    input,
		onFrame:  onFrame,
		cfg:      DefaultMatchConfig(),
		remotes:  NewInterpolator(),
		store:    NewCollectibleStore(),
		phases:   NewPhaseMachine(clientID),
		now:      time.Now,
	}
	s.mapper = Mapper{TileSize: s.cfg.Map.TileSize}
	return s
}

func (s *Session) tickInterval() time.Duration {
	return time.Duration(s.cfg.Net.TickRateMs) * time.Millisecond
}

// Run drives the session until ctx is cancelled. One loop interleaves the
// tick with network events and connection status changes; leaving the match
// is just cancellation, which tears down every pending deadline with it.
func (s *Session) Run(ctx context.Context, events <-chan network.Envelope, status <-chan bool) {
	interval := s.tickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case up := <-status:
			s.connected = up
			if !up {
				log.Printf("session: connection lost")
				break
			}
			log.Printf("session: connection restored")
			if s.roomCode == "" && s.autoJoin != "" {
				s.Join(s.autoJoin)
			}
		case env := <-events:
			s.HandleEvent(env)
			if ni := s.tickInterval(); ni != interval {
				interval = ni
				ticker.Reset(interval)
			}
		case <-ticker.C:
			s.Tick(s.now())
		}
	}
}

// --- commands (called from the UI layer via the session's event channel) ---

// SetAutoJoin makes the session join a room as soon as the channel is up.
// A persisted identity takes precedence: the reconnection controller rejoins
// it before the session ever sees the connection.
func (s *Session) SetAutoJoin(roomCode string) {
	s.autoJoin = roomCode
}

// Join asks the server for a room and remembers the identity for rejoin.
func (s *Session) Join(roomCode string) {
	s.sender.Send(network.MsgJoinRoom, network.JoinRoomPayload{
		RoomCode: roomCode, Name: s.Name, ClientID: s.ClientID,
	})
}

// StartMatch requests the match start (room owner only; server enforces).
func (s *Session) StartMatch() {
	s.sender.Send(network.MsgStartMatch, nil)
}

// Leave departs the room and drops the persisted identity.
func (s *Session) Leave() {
	s.sender.Send(network.MsgLeaveRoom, nil)
	s.persist.ClearRoomCode()
	s.resetToLobby()
}

// DeployTrap places a trap at the local entity's cell, optimistically.
func (s *Session) DeployTrap() bool {
	if s.grid == nil || !s.phases.CanCollect() {
		return false
	}
	cell := s.mapper.ToGrid(s.pred.Entity.Pos)
	if _, ok := s.store.DeployTrap(cell, s.ClientID); !ok {
		return false
	}
	s.sender.Send(network.MsgDeployTrap, network.DeployTrapPayload{Row: cell.Row, Col: cell.Col})
	return true
}

// AnswerQuiz submits a main-quiz answer.
func (s *Session) AnswerQuiz(index int) {
	s.sender.Send(network.MsgQuizAnswer, network.QuizAnswerPayload{Index: index})
}

// AnswerPenaltyQuiz submits a penalty-quiz answer.
func (s *Session) AnswerPenaltyQuiz(questionIndex, answerIndex int) {
	s.sender.Send(network.MsgPenaltyAnswer, network.PenaltyAnswerPayload{
		QuestionIndex: questionIndex, AnswerIndex: answerIndex,
	})
}

// --- event dispatch ---

// HandleEvent applies one server event. Decode failures skip the event;
// stale and duplicate events are absorbed by the idempotency checks in the
// stores, never surfaced.
func (s *Session) HandleEvent(env network.Envelope) {
	switch env.T {
	case network.MsgRoomJoined:
		handleAs(env, s.onRoomJoined)
	case network.MsgPlayerJoined:
		handleAs(env, s.onPlayerJoined)
	case network.MsgPlayerLeft:
		handleAs(env, s.onPlayerLeft)
	case network.MsgPlayerUpdated:
		handleAs(env, s.onPlayerUpdated)
	case network.MsgPlayerMoved:
		handleAs(env, s.onPlayerMoved)
	case network.MsgMatchStarted:
		handleAs(env, s.onMatchStarted)
	case network.MsgQuizStarted:
		handleAs(env, s.onQuizStarted)
	case network.MsgQuizResult:
		handleAs(env, s.onQuizResult)
	case network.MsgRoleTransferred:
		handleAs(env, s.onRoleTransferred)
	case network.MsgHuntStarted:
		handleAs(env, s.onHuntStarted)
	case network.MsgHuntEnded:
		handleAs(env, s.onHuntEnded)
	case network.MsgPlayerTagged:
		handleAs(env, s.onPlayerTagged)
	case network.MsgPlayerStateChanged:
		handleAs(env, s.onPlayerStateChanged)
	case network.MsgPlayerRespawned:
		handleAs(env, s.onPlayerRespawned)
	case network.MsgPenaltyQuiz:
		s.phases.QuizDelivered()
	case network.MsgCurrencySpawned:
		handleAs(env, s.onCurrencySpawned)
	case network.MsgCurrencyCollected:
		handleAs(env, s.onCurrencyCollected)
	case network.MsgTrapSpawned:
		handleAs(env, s.onTrapSpawned)
	case network.MsgTrapCollected:
		handleAs(env, s.onTrapCollected)
	case network.MsgTrapDeployed:
		handleAs(env, s.onTrapDeployed)
	case network.MsgTrapTriggered:
		handleAs(env, s.onTrapTriggered)
	case network.MsgPortalSpawned:
		handleAs(env, s.onPortalSpawned)
	case network.MsgPlayerTeleported:
		handleAs(env, s.onPlayerTeleported)
	case network.MsgMatchEnded:
		handleAs(env, s.onMatchEnded)
	case network.MsgSnapshot:
		handleAs(env, s.onSnapshot)
	case network.MsgRejoinOK:
		log.Printf("session: rejoined room %q", s.roomCode)
	case network.MsgRejoinFailed:
		handleAs(env, s.onRejoinFailed)
	case network.MsgPlayerDisconnected, network.MsgPlayerReconnected:
		// Presence-only; remotes are removed solely on player_left.
	default:
		log.Printf("session: unhandled event %q", env.T)
	}
}

// handleAs decodes the payload and calls fn, skipping malformed events.
func handleAs[T any](env network.Envelope, fn func(T)) {
	p, err := network.DecodePayload[T](env)
	if err != nil {
		log.Printf("session: bad %s payload: %v", env.T, err)
		return
	}
	fn(p)
}
