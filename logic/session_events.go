package logic

import (
	"encoding/json"
	"log"
	"time"

	"gridhunt_client/network"
)

// announceKeep is how much of the role banner survives a hunt-start event.
const announceKeep = time.Second

func parsePhase(s string) (Phase, bool) {
	switch s {
	case "LOBBY":
		return PhaseLobby, true
	case "QUIZ":
		return PhaseQuiz, true
	case "HUNT":
		return PhaseHunt, true
	case "ROUND_END":
		return PhaseRoundEnd, true
	case "GAME_END":
		return PhaseGameEnd, true
	}
	return PhaseLobby, false
}

func (s *Session) pushCue(kind string, pos Vector2, text string) {
	s.cues = append(s.cues, Cue{Kind: kind, Pos: pos, Text: text})
}

// resolvePosition picks the pixel position when present, falls back to
// row/col, and sanitizes: anything off the road network snaps to the nearest
// lattice intersection inside the border. Invalid positions are corrected,
// never rejected.
func (s *Session) resolvePosition(x, y *float64, row, col *int) (Vector2, bool) {
	var pos Vector2
	switch {
	case x != nil && y != nil:
		pos = Vector2{X: *x, Y: *y}
	case row != nil && col != nil:
		pos = s.mapper.ToPixel(GridPos{Row: *row, Col: *col})
	default:
		return Vector2{}, false
	}
	if s.grid == nil {
		return pos, true
	}
	cell := s.mapper.ToGrid(pos)
	if s.grid.At(cell.Row, cell.Col) != TileRoad {
		pos = s.mapper.ToPixel(s.grid.SnapToRoad(cell))
	}
	return pos, true
}

func (s *Session) cellPixel(row, col int) Vector2 {
	return s.mapper.ToPixel(GridPos{Row: row, Col: col})
}

func wireCell(row, col *int) (GridPos, bool) {
	if row == nil || col == nil {
		return GridPos{}, false
	}
	return GridPos{Row: *row, Col: *col}, true
}

func wireItems(kind string, items []network.WireItem) []Collectible {
	out := make([]Collectible, 0, len(items))
	for _, it := range items {
		out = append(out, Collectible{
			ID:      it.ID,
			Kind:    kind,
			Cell:    GridPos{Row: it.Row, Col: it.Col},
			Value:   it.Value,
			OwnerID: it.Owner,
		})
	}
	return out
}

// --- room / roster ---

func (s *Session) onRoomJoined(p network.RoomJoinedPayload) {
	s.roomCode = p.RoomCode
	s.persist.SaveRoomCode(p.RoomCode)
	for _, w := range p.Roster {
		s.upsertRemote(w, false)
	}
	log.Printf("session: joined room %q (%d players)", p.RoomCode, len(p.Roster))
}

func (s *Session) onPlayerJoined(w network.WirePlayer) {
	s.upsertRemote(w, false)
}

func (s *Session) onPlayerLeft(p network.PlayerRefPayload) {
	s.remotes.Remove(p.ID)
}

func (s *Session) onPlayerUpdated(w network.WirePlayer) {
	s.upsertRemote(w, false)
}

// upsertRemote merges a roster entry. force makes the position an
// instantaneous correction instead of an interpolation target.
func (s *Session) upsertRemote(w network.WirePlayer, force bool) {
	if w.ID == s.ClientID || w.ID == "" {
		return
	}
	pos, ok := s.resolvePosition(w.X, w.Y, w.Row, w.Col)
	var e *RemoteEntity
	if ok && force {
		e = s.remotes.ForceSet(w.ID, pos)
		e.Name = w.Name
	} else if ok {
		e = s.remotes.ApplyPosition(w.ID, w.Name, pos, Vector2{})
	} else if e = s.remotes.Get(w.ID); e == nil {
		// No position at all: park them until the first report arrives.
		e = s.remotes.ApplyPosition(w.ID, w.Name, Vector2{}, Vector2{})
	}
	e.IsChaser = w.IsChaser
	e.Frozen = w.Frozen
	e.Invulnerable = w.Invulnerable
}

func (s *Session) onPlayerMoved(p network.PositionEventPayload) {
	if p.ID == s.ClientID {
		return
	}
	pos := Vector2{X: p.X, Y: p.Y}
	if pos.X == 0 && pos.Y == 0 {
		pos = s.cellPixel(p.Row, p.Col)
	}
	s.remotes.ApplyPosition(p.ID, p.Name, pos, Vector2{X: p.DirX, Y: p.DirY})
}

// --- match lifecycle ---

func (s *Session) onMatchStarted(p network.MatchStartedPayload) {
	s.setupMatch(p.RoomCode, p.Config)

	now := s.now()
	s.phases = NewPhaseMachine(s.ClientID)
	s.phases.StartRound(RoundContext{Round: p.Round, TotalRounds: p.Rounds})
	if s.phases.SetRoles(p.ChaserIDs, now, s.announceDur(), true) {
		s.pushCue(CueRoleAnnounce, Vector2{}, s.localRoleName())
	}

	s.remotes = NewInterpolator()
	spawned := false
	for _, w := range p.Roster {
		if w.ID == s.ClientID {
			if pos, ok := s.resolvePosition(w.X, w.Y, w.Row, w.Col); ok {
				s.pred.SnapTo(pos)
				spawned = true
			}
			continue
		}
		s.upsertRemote(w, true)
	}
	if !spawned && len(s.cfg.Map.SpawnSlots) > 0 {
		cell := s.grid.SnapToRoad(s.cfg.Map.SpawnSlots[0])
		s.pred.SnapTo(s.mapper.ToPixel(cell))
	}

	s.matchActive = true
	s.matchStart = now
	log.Printf("session: match started in %q, round %d/%d", s.roomCode, p.Round, p.Rounds)
}

// setupMatch regenerates the world from the room seed and resets the
// per-match stores. Tile data never crosses the wire; the seed and config
// are enough.
func (s *Session) setupMatch(roomCode string, rawCfg json.RawMessage) {
	if roomCode != "" {
		s.roomCode = roomCode
		s.persist.SaveRoomCode(roomCode)
	}

	cfg := DefaultMatchConfig()
	if len(rawCfg) > 0 {
		if err := json.Unmarshal(rawCfg, &cfg); err != nil {
			log.Printf("session: bad match config, using defaults: %v", err)
			cfg = DefaultMatchConfig()
		}
	}
	ClampMatchConfig(&cfg)
	s.cfg = cfg

	s.grid = Generate(s.roomCode, cfg.Map.Width, cfg.Map.Height)
	s.mapper = Mapper{TileSize: cfg.Map.TileSize}

	center := s.mapper.ToPixel(s.grid.SnapToRoad(GridPos{Row: cfg.Map.Height / 2, Col: cfg.Map.Width / 2}))
	s.pred = NewPredictor(s.grid, s.mapper, &s.cfg, center)

	s.store.Reset()
	for _, anchor := range s.grid.Portals {
		s.store.Spawn(Collectible{Kind: KindPortal, Cell: anchor})
	}
}

func (s *Session) announceDur() time.Duration {
	return time.Duration(s.cfg.Gameplay.AnnounceSec * float64(time.Second))
}

func (s *Session) localRoleName() string {
	if s.phases.LocalIsChaser() {
		return RoleChaser
	}
	return RoleRunner
}

func (s *Session) onQuizStarted(p network.PhasePayload) {
	round := p.Round
	if round == 0 {
		// Legacy events omit the round. A quiz arriving once the current
		// round's hunt has run opens the next round; during lobby or the
		// quiz itself it is the current round's.
		round = s.phases.Round().Round
		if ph := s.phases.Phase(); ph == PhaseHunt || ph == PhaseRoundEnd {
			round++
		}
	}
	seq := p.Seq
	if seq == 0 {
		seq = SeqFor(round, PhaseQuiz)
	}
	if s.phases.ApplyPhase(PhaseQuiz, seq) && round != s.phases.Round().Round {
		rc := s.phases.Round()
		rc.Round = round
		s.phases.StartRound(rc)
	}
}

func (s *Session) onQuizResult(p network.QuizResultPayload) {
	if s.phases.SetRoles(p.ChaserIDs, s.now(), s.announceDur(), false) {
		s.pushCue(CueRoleAnnounce, Vector2{}, s.localRoleName())
	}
	s.store.MergeScores(p.Scoreboard)
	s.markRemoteRoles(p.ChaserIDs)
}

func (s *Session) onRoleTransferred(p network.RoleTransferredPayload) {
	if s.phases.SetRoles(p.ChaserIDs, s.now(), s.announceDur(), false) {
		s.pushCue(CueRoleAnnounce, Vector2{}, s.localRoleName())
	}
	s.markRemoteRoles(p.ChaserIDs)
}

func (s *Session) markRemoteRoles(chaserIDs []string) {
	set := make(map[string]bool, len(chaserIDs))
	for _, id := range chaserIDs {
		set[id] = true
	}
	s.remotes.Each(func(e *RemoteEntity) {
		e.IsChaser = set[e.ID]
	})
}

func (s *Session) onHuntStarted(p network.HuntStartedPayload) {
	now := s.now()
	round := p.Round
	if round == 0 {
		round = s.phases.Round().Round
	}
	seq := p.Seq
	if seq == 0 {
		seq = SeqFor(round, PhaseHunt)
	}
	if !s.phases.ApplyPhase(PhaseHunt, seq) {
		return
	}
	rounds := p.Rounds
	if rounds == 0 {
		rounds = s.phases.Round().TotalRounds
	}
	s.phases.StartRound(RoundContext{
		Round:       round,
		TotalRounds: rounds,
		ChaserIDs:   s.phases.Round().ChaserIDs,
		EndsAt:      now.Add(time.Duration(p.DurationSec * float64(time.Second))),
	})
	s.pred.StartHunt(now)
	s.phases.ShortenAnnouncement(now, announceKeep)
}

func (s *Session) onHuntEnded(p network.PhasePayload) {
	round := p.Round
	if round == 0 {
		round = s.phases.Round().Round
	}
	seq := p.Seq
	if seq == 0 {
		seq = SeqFor(round, PhaseRoundEnd)
	}
	s.phases.ApplyPhase(PhaseRoundEnd, seq)
}

func (s *Session) onMatchEnded(p network.MatchEndedPayload) {
	seq := SeqFor(s.phases.Round().Round, PhaseGameEnd)
	if !s.phases.ApplyPhase(PhaseGameEnd, seq) {
		return
	}
	s.store.MergeScores(p.Scoreboard)
	elapsed := s.now().Sub(s.matchStart).Seconds()
	s.persist.RecordRun(s.Name, s.store.Scores()[s.ClientID], elapsed)
	s.matchActive = false
	log.Printf("session: match ended after %.0fs", elapsed)
}

// --- player state ---

func (s *Session) onPlayerTagged(p network.PlayerTaggedPayload) {
	if p.Reward != 0 {
		scores := s.store.Scores()
		scores[p.ChaserID] = scores[p.ChaserID] + p.Reward
	}
	if p.CaughtID == s.ClientID {
		if s.phases.EnterFrozen(s.now(), s.quizRetryDur()) {
			if s.pred != nil {
				s.pushCue(CueScreenFlash, s.pred.Entity.Pos, "")
			}
			// Loading affordance goes up immediately; the timer re-requests
			// content if the server stays quiet.
			s.sender.Send(network.MsgRequestPenalty, nil)
		}
		return
	}
	if e := s.remotes.Get(p.CaughtID); e != nil {
		e.Frozen = true
	}
}

func (s *Session) quizRetryDur() time.Duration {
	return time.Duration(s.cfg.Gameplay.QuizRetrySec * float64(time.Second))
}

func (s *Session) onPlayerStateChanged(p network.PlayerStatePayload) {
	now := s.now()
	if p.ID == s.ClientID {
		switch p.State {
		case "FROZEN":
			s.phases.EnterFrozen(now, s.quizRetryDur())
		case "ACTIVE":
			if s.phases.Frozen() {
				s.phases.Recover(now, s.cfg.Rules, s.invulnDur())
			}
		case "SPECTATING":
			s.phases.Eliminate()
		}
		if !p.Invulnerable && s.phases.Invulnerable() {
			// Explicit invulnerability-ended signal beats the local timer.
			s.phases.EndInvulnerability()
		}
		return
	}
	if e := s.remotes.Get(p.ID); e != nil {
		e.Frozen = p.State == "FROZEN"
		e.Invulnerable = p.Invulnerable
	}
}

func (s *Session) invulnDur() time.Duration {
	return time.Duration(s.cfg.Gameplay.InvulnSec * float64(time.Second))
}

func (s *Session) onPlayerRespawned(p network.PlayerRespawnedPayload) {
	pos, ok := s.resolvePosition(p.X, p.Y, p.Row, p.Col)
	if !ok {
		return
	}
	if p.ID == s.ClientID {
		if s.pred == nil {
			return
		}
		s.pred.SnapTo(pos)
		s.pred.ClearHazardReport()
		if p.Invulnerable && s.cfg.Rules.InvulnOnRecover {
			s.phases.GrantInvulnerability(s.now(), s.invulnDur())
		}
		s.pushCue(CueRespawn, pos, "")
		return
	}
	e := s.remotes.ForceSet(p.ID, pos)
	e.Invulnerable = p.Invulnerable
	e.Frozen = false
	s.pushCue(CueRespawn, pos, "")
}

// --- collectibles ---

func (s *Session) onCurrencySpawned(p network.SpawnPayload) {
	s.store.Spawn(wireItems(KindCurrency, p.Items)...)
}

func (s *Session) onCurrencyCollected(p network.CollectedPayload) {
	cell, hasCell := wireCell(p.Row, p.Col)
	s.store.ConfirmCollected(KindCurrency, p.ID, cell, hasCell)
	// Unmatched confirms (someone else's pickup) still move the score table.
	s.store.MergeScores(p.Scoreboard)
}

func (s *Session) onTrapSpawned(p network.SpawnPayload) {
	s.store.Spawn(wireItems(KindTrapPickup, p.Items)...)
}

func (s *Session) onTrapCollected(p network.CollectedPayload) {
	cell, hasCell := wireCell(p.Row, p.Col)
	match, wasLocal := s.store.ConfirmCollected(KindTrapPickup, p.ID, cell, hasCell)
	if match != nil && !wasLocal && p.By == s.ClientID {
		// Server granted a pickup the client had not predicted.
		s.store.CollectTrapPickup()
	}
}

func (s *Session) onTrapDeployed(p network.TrapDeployedPayload) {
	s.store.ApplyServerDeploy(p.ID, GridPos{Row: p.Row, Col: p.Col}, p.Owner, s.ClientID)
}

func (s *Session) onTrapTriggered(p network.TrapTriggeredPayload) {
	cell, hasCell := wireCell(p.Row, p.Col)
	if at, ok := s.store.TriggerTrap(p.ID, cell, hasCell); ok {
		s.pushCue(CueTrapTrigger, s.cellPixel(at.Row, at.Col), "")
	}
	dest := s.cellPixel(p.DestRow, p.DestCol)
	if p.VictimID == s.ClientID && s.pred != nil {
		s.pushCue(CueTeleport, s.pred.Entity.Pos, "")
		s.pred.SnapTo(dest)
	} else if e := s.remotes.Get(p.VictimID); e != nil {
		s.pushCue(CueTeleport, e.Pos, "")
		s.remotes.ForceSet(p.VictimID, dest)
	}
	s.pushCue(CueTeleport, dest, "")
}

func (s *Session) onPortalSpawned(p network.SpawnPayload) {
	s.store.Spawn(wireItems(KindPortal, p.Items)...)
}

func (s *Session) onPlayerTeleported(p network.TeleportPayload) {
	from := s.cellPixel(p.FromRow, p.FromCol)
	to := s.cellPixel(p.ToRow, p.ToCol)
	// Teleport-pair cue fires at both endpoints.
	s.pushCue(CueTeleport, from, "")
	s.pushCue(CueTeleport, to, "")
	if p.ID == s.ClientID {
		if s.pred != nil {
			s.pred.SnapTo(to)
		}
		return
	}
	s.remotes.ForceSet(p.ID, to)
}

// --- reconnection ---

func (s *Session) onRejoinFailed(p network.RejoinFailedPayload) {
	log.Printf("session: rejoin failed (%s), returning to match selection", p.Reason)
	s.persist.ClearRoomCode()
	s.resetToLobby()
}

func (s *Session) resetToLobby() {
	s.matchActive = false
	s.roomCode = ""
	s.grid = nil
	s.pred = nil
	s.remotes = NewInterpolator()
	s.store.Reset()
	s.phases = NewPhaseMachine(s.ClientID)
}

// onSnapshot merges a full authoritative state dump. Every sub-merge is
// idempotent, so applying it after the equivalent incremental events (or
// twice) is a no-op: phase transitions are sequence-gated, the role banner
// only rises on an actual change, and collectible tombstones survive.
func (s *Session) onSnapshot(p network.SnapshotPayload) {
	now := s.now()

	// Cold reconnect: no world yet (or a different room) means the engine
	// rebuilds from the seed before merging.
	if p.RoomCode != "" && (s.grid == nil || p.RoomCode != s.roomCode) {
		s.setupMatch(p.RoomCode, p.Config)
		s.phases = NewPhaseMachine(s.ClientID)
		s.remotes = NewInterpolator()
	}
	if s.grid == nil {
		log.Printf("session: snapshot without map config, ignoring")
		return
	}

	phase, ok := parsePhase(p.Phase)
	if !ok {
		log.Printf("session: snapshot with unknown phase %q", p.Phase)
		return
	}
	seq := p.Seq
	if seq == 0 {
		seq = SeqFor(p.Round, phase)
	}
	if s.phases.ApplyPhase(phase, seq) && phase == PhaseHunt {
		s.pred.StartHunt(now)
	}

	s.phases.StartRound(RoundContext{
		Round:       p.Round,
		TotalRounds: p.Rounds,
		ChaserIDs:   s.phases.Round().ChaserIDs,
		EndsAt:      now.Add(time.Duration(p.RemainingSec * float64(time.Second))),
	})
	if s.phases.SetRoles(p.ChaserIDs, now, s.announceDur(), false) {
		s.pushCue(CueRoleAnnounce, Vector2{}, s.localRoleName())
	}
	s.markRemoteRoles(p.ChaserIDs)

	for _, w := range p.Roster {
		if w.ID == s.ClientID {
			if pos, ok := s.resolvePosition(w.X, w.Y, w.Row, w.Col); ok {
				s.pred.SnapTo(pos)
			}
			continue
		}
		s.upsertRemote(w, true)
	}

	s.store.Spawn(wireItems(KindCurrency, p.Coins)...)
	s.store.Spawn(wireItems(KindTrapPickup, p.TrapPickups)...)
	s.store.Spawn(wireItems(KindDeployedTrap, p.Traps)...)
	s.store.Spawn(wireItems(KindPortal, p.Portals)...)
	s.store.SetTrapInventory(p.TrapInventory)
	s.store.MergeScores(p.Scoreboard)

	switch p.LocalState {
	case "FROZEN":
		s.phases.EnterFrozen(now, s.quizRetryDur())
	case "SPECTATING":
		s.phases.Eliminate()
	case "ACTIVE":
		if s.phases.Frozen() {
			s.phases.ForceActive()
		}
	}

	s.matchActive = phase != PhaseGameEnd && phase != PhaseLobby
	if s.matchStart.IsZero() {
		s.matchStart = now
	}
	log.Printf("session: snapshot merged (phase %s, round %d/%d)", phase, p.Round, p.Rounds)
}

// --- tick ---

// Tick is the fixed-rate simulation step: expire timers, advance prediction
// and interpolation, run optimistic pickups, throttle the position
// broadcast, and emit a frame.
func (s *Session) Tick(now time.Time) {
	s.tick++

	for _, fired := range s.phases.CheckTimers(now, s.quizRetryDur()) {
		switch fired {
		case TimerQuizRequestDue:
			s.sender.Send(network.MsgRequestPenalty, nil)
		case TimerAnnounceExpired:
			s.pushCue(CueRoleHide, Vector2{}, "")
		case TimerInvulnExpired:
			// Window closed locally; the server signal, if any, came first.
		}
	}

	if s.matchActive && s.grid != nil {
		dt := s.tickInterval().Seconds()
		suppressed := !s.phases.CanMove()

		if s.pred.Tick(s.input.Intent(), dt, now, s.phases.LocalIsChaser(), suppressed) {
			s.sender.Send(network.MsgHazardDeath, nil)
			s.pushCue(CueScreenFlash, s.pred.Entity.Pos, "")
		}
		s.collectNearby()
		s.remotes.Tick()

		if !suppressed && s.connected {
			if report, ok := s.pred.MaybeBroadcast(now); ok {
				s.sender.Send(network.MsgPosition, report)
			}
		}
	}

	s.emitFrame()
}

// collectNearby runs the optimistic-collect pass. Eligibility is gated
// locally — the chaser never collects, so no request is wasted.
func (s *Session) collectNearby() {
	if !s.phases.CanCollect() || s.phases.LocalIsChaser() {
		return
	}
	pos := s.pred.Entity.Pos
	radius := s.cfg.Gameplay.PickupRadius

	for _, hit := range s.store.OptimisticCollect(KindCurrency, pos, s.mapper, radius) {
		s.sender.Send(network.MsgCollectCurrency, network.CollectPayload{
			ID: hit.ID, Row: hit.Cell.Row, Col: hit.Cell.Col,
		})
	}
	for _, hit := range s.store.OptimisticCollect(KindTrapPickup, pos, s.mapper, radius) {
		s.store.CollectTrapPickup()
		s.sender.Send(network.MsgCollectTrap, network.CollectPayload{
			ID: hit.ID, Row: hit.Cell.Row, Col: hit.Cell.Col,
		})
	}
}

func (s *Session) emitFrame() {
	if s.onFrame == nil {
		s.cues = nil
		return
	}
	scores := make(map[string]int, len(s.store.Scores()))
	for id, v := range s.store.Scores() {
		scores[id] = v
	}
	frame := Frame{
		Tick:         s.tick,
		Phase:        s.phases.Phase(),
		Frozen:       s.phases.Frozen(),
		Spectating:   s.phases.Spectating(),
		Invulnerable: s.phases.Invulnerable(),
		Announcement: s.phases.AnnouncementVisible(),
		Round:        s.phases.Round(),
		Remotes:      s.remotes.Snapshot(),
		Collectibles: s.store.Active(""),
		TrapCount:    s.store.TrapInventory(),
		Scores:       scores,
		Cues:         s.cues,
		Connected:    s.connected,
	}
	if s.pred != nil {
		frame.Local = s.pred.Entity
	}
	s.cues = nil
	s.onFrame(frame)
}
