package network

import "encoding/json"

// Client-to-server events
const (
	MsgCreateRoom       = "create_room"
	MsgJoinRoom         = "join_room"
	MsgLeaveRoom        = "leave_room"
	MsgStartMatch       = "start_match"
	MsgPosition         = "position"
	MsgCollectCurrency  = "collect_currency"
	MsgCollectTrap      = "collect_trap"
	MsgDeployTrap       = "deploy_trap"
	MsgQuizAnswer       = "quiz_answer"
	MsgPenaltyAnswer    = "penalty_quiz_answer"
	MsgHazardDeath      = "hazard_death"
	MsgRequestPenalty   = "request_penalty_quiz"
	MsgRequestFullState = "request_full_state"
	MsgRejoinRoom       = "rejoin_room"
)

// Server-to-client events
const (
	MsgRoomJoined         = "room_joined"
	MsgPlayerJoined       = "player_joined"
	MsgPlayerLeft         = "player_left"
	MsgPlayerUpdated      = "player_updated"
	MsgPlayerMoved        = "player_moved"
	MsgMatchStarted       = "match_started"
	MsgRoleTransferred    = "role_transferred"
	MsgQuizStarted        = "quiz_started"
	MsgQuizResult         = "quiz_result"
	MsgHuntStarted        = "hunt_started"
	MsgHuntEnded          = "hunt_ended"
	MsgPlayerTagged       = "player_tagged"
	MsgPlayerStateChanged = "player_state_changed"
	MsgPlayerRespawned    = "player_respawned"
	MsgPenaltyQuiz        = "penalty_quiz"
	MsgCurrencySpawned    = "currency_spawned"
	MsgCurrencyCollected  = "currency_collected"
	MsgTrapSpawned        = "trap_spawned"
	MsgTrapCollected      = "trap_collected"
	MsgTrapDeployed       = "trap_deployed"
	MsgTrapTriggered      = "trap_triggered"
	MsgPortalSpawned      = "portal_spawned"
	MsgPlayerTeleported   = "player_teleported"
	MsgMatchEnded         = "match_ended"
	MsgSnapshot           = "full_state_snapshot"
	MsgPlayerDisconnected = "player_disconnected"
	MsgPlayerReconnected  = "player_reconnected"
	MsgRejoinOK           = "rejoin_succeeded"
	MsgRejoinFailed       = "rejoin_failed"
)

// WirePlayer is a roster entry. Pixel position is preferred; row/col is the
// fallback for legacy servers, so both are optional.
type WirePlayer struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	Row          *int     `json:"row,omitempty"`
	Col          *int     `json:"col,omitempty"`
	IsChaser     bool     `json:"is_chaser"`
	Frozen       bool     `json:"frozen"`
	Invulnerable bool     `json:"invulnerable"`
}

// WireItem is a collectible spawn entry. Legacy currency events omit the id;
// the store synthesizes one from the cell.
type WireItem struct {
	ID    string `json:"id,omitempty"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value int    `json:"value,omitempty"`
	Owner string `json:"owner,omitempty"`
}

type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
	Name     string `json:"name"`
	ClientID string `json:"client_id"`
}

type RejoinRoomPayload struct {
	RoomCode string `json:"room_code"`
	ClientID string `json:"client_id"`
}

type CollectPayload struct {
	ID  string `json:"id"`
	Row int    `json:"row"`
	Col int    `json:"col"`
}

type DeployTrapPayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type QuizAnswerPayload struct {
	Index int `json:"index"`
}

type PenaltyAnswerPayload struct {
	QuestionIndex int `json:"question_index"`
	AnswerIndex   int `json:"answer_index"`
}

type RoomJoinedPayload struct {
	RoomCode string       `json:"room_code"`
	Roster   []WirePlayer `json:"roster"`
}

// MatchStartedPayload carries the map configuration as raw bytes; the engine
// decodes and clamps it into its own config type.
type MatchStartedPayload struct {
	RoomCode  string          `json:"room_code"`
	Roster    []WirePlayer    `json:"roster"`
	ChaserIDs []string        `json:"chaser_ids"`
	Config    json.RawMessage `json:"config"`
	Round     int             `json:"round"`
	Rounds    int             `json:"rounds"`
}

type RoleTransferredPayload struct {
	ChaserIDs []string `json:"chaser_ids"`
}

type HuntStartedPayload struct {
	DurationSec float64 `json:"duration_sec"`
	Round       int     `json:"round"`
	Rounds      int     `json:"rounds"`
	Seq         uint64  `json:"seq,omitempty"`
}

type PhasePayload struct {
	Round int    `json:"round"`
	Seq   uint64 `json:"seq,omitempty"`
}

type PlayerTaggedPayload struct {
	ChaserID string `json:"chaser_id"`
	CaughtID string `json:"caught_id"`
	Reward   int    `json:"reward"`
}

type PlayerStatePayload struct {
	ID           string `json:"id"`
	State        string `json:"state"` // ACTIVE | FROZEN | SPECTATING
	Invulnerable bool   `json:"invulnerable"`
}

type PlayerRespawnedPayload struct {
	ID           string   `json:"id"`
	X            *float64 `json:"x,omitempty"`
	Y            *float64 `json:"y,omitempty"`
	Row          *int     `json:"row,omitempty"`
	Col          *int     `json:"col,omitempty"`
	Invulnerable bool     `json:"invulnerable"`
}

type PositionEventPayload struct {
	ID   string  `json:"id"`
	Name string  `json:"name,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Row  int     `json:"row"`
	Col  int     `json:"col"`
	DirX float64 `json:"dir_x"`
	DirY float64 `json:"dir_y"`
}

type SpawnPayload struct {
	Items []WireItem `json:"items"`
}

type CollectedPayload struct {
	ID         string         `json:"id,omitempty"`
	Row        *int           `json:"row,omitempty"`
	Col        *int           `json:"col,omitempty"`
	Value      int            `json:"value,omitempty"`
	By         string         `json:"by,omitempty"`
	Scoreboard map[string]int `json:"scoreboard,omitempty"`
}

type TrapDeployedPayload struct {
	ID    string `json:"id,omitempty"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Owner string `json:"owner"`
}

type TrapTriggeredPayload struct {
	ID       string `json:"id,omitempty"`
	Row      *int   `json:"row,omitempty"`
	Col      *int   `json:"col,omitempty"`
	VictimID string `json:"victim_id"`
	DestRow  int    `json:"dest_row"`
	DestCol  int    `json:"dest_col"`
}

type TeleportPayload struct {
	ID      string `json:"id"`
	FromRow int    `json:"from_row"`
	FromCol int    `json:"from_col"`
	ToRow   int    `json:"to_row"`
	ToCol   int    `json:"to_col"`
}

type QuizResultPayload struct {
	ChaserIDs  []string       `json:"chaser_ids"`
	Scoreboard map[string]int `json:"scoreboard,omitempty"`
}

type MatchEndedPayload struct {
	Scoreboard map[string]int `json:"scoreboard"`
}

type PenaltyQuizPayload struct {
	QuestionIndex int      `json:"question_index"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
}

type PlayerRefPayload struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type RejoinFailedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// SnapshotPayload is the full authoritative state dump used for
// reconnection recovery. It must merge idempotently into any client state.
type SnapshotPayload struct {
	Phase         string          `json:"phase"` // LOBBY | QUIZ | HUNT | ROUND_END | GAME_END
	Seq           uint64          `json:"seq,omitempty"`
	RoomCode      string          `json:"room_code,omitempty"`
	Config        json.RawMessage `json:"config,omitempty"`
	Round         int             `json:"round"`
	Rounds        int             `json:"rounds"`
	RemainingSec  float64         `json:"remaining_sec"`
	ChaserIDs     []string        `json:"chaser_ids"`
	Roster        []WirePlayer    `json:"roster"`
	Coins         []WireItem      `json:"coins"`
	TrapPickups   []WireItem      `json:"trap_pickups"`
	Traps         []WireItem      `json:"traps"`
	Portals       []WireItem      `json:"portals"`
	TrapInventory int             `json:"trap_inventory"`
	Scoreboard    map[string]int  `json:"scoreboard,omitempty"`
	LocalState    string          `json:"local_state,omitempty"` // ACTIVE | FROZEN | SPECTATING
}
