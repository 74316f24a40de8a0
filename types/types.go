// Package types defines the shared data structures for the gloomcore engine.
// This package contains only type definitions. The only methods are the
// unexported markers that seal the Memory variant.
package types

// Pos is a cell coordinate on the grid.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Dir is a facing or movement direction.
type Dir int

const (
	DirNone Dir = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Terrain is the terrain id of a single cell.
type Terrain int

const (
	TerrainFloor Terrain = iota
	TerrainWall
	TerrainChasm  // impassable, does not block sight
	TerrainStairs // passable, reaching it wins the run
)

// Tag marks something present in a cell: a prop, a pickup, a light source,
// an ambush marker or the avatar itself.
type Tag string

const (
	TagAvatar Tag = "avatar"
	TagTorch  Tag = "torch"
	TagPot    Tag = "pot"
	TagChest  Tag = "chest"
	TagShrine Tag = "shrine"
	TagMarker Tag = "marker"
	TagPotion Tag = "potion"
	TagStone  Tag = "stone"
	TagOil    Tag = "oil"
)

// Grid is the world arena: terrain and tag lists addressed by row-major
// index. Terrain and Tags always hold Width*Height cells. Version increases
// every time a new grid is produced from an older one.
type Grid struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Terrain []Terrain `json:"terrain"`
	Tags    [][]Tag   `json:"tags"`
	Version int       `json:"version"`
}

// Kind discriminates hostile entities and selects their behavior.
type Kind string

const (
	KindRat     Kind = "rat"
	KindHunter  Kind = "hunter"
	KindCrawler Kind = "crawler"
	KindLurker  Kind = "lurker"
	KindBrute   Kind = "brute"
)

// Memory is the per-kind scratch state a hostile carries between turns.
// Exactly one concrete shape exists per Kind.
type Memory interface {
	memoryKind() Kind
}

// RatMemory is the scratch state of a rat.
type RatMemory struct {
	Hunting  bool `json:"hunting"`
	LastSeen *Pos `json:"last_seen,omitempty"`
}

// HunterMemory is the scratch state of a hunter.
type HunterMemory struct {
	LastSeen *Pos `json:"last_seen,omitempty"`
}

// CrawlerMemory is the scratch state of a crawler.
type CrawlerMemory struct {
	LastMoved bool `json:"last_moved"`
}

// LurkerMemory is the scratch state of a lurker. Marker is the ambush
// proxy cell, MarkerAge the number of turns it has existed.
type LurkerMemory struct {
	Aware     bool `json:"aware"`
	Marker    *Pos `json:"marker,omitempty"`
	MarkerAge int  `json:"marker_age"`
}

// BruteMemory is the scratch state of a brute.
type BruteMemory struct {
	Awake bool `json:"awake"`
}

func (*RatMemory) memoryKind() Kind     { return KindRat }
func (*HunterMemory) memoryKind() Kind  { return KindHunter }
func (*CrawlerMemory) memoryKind() Kind { return KindCrawler }
func (*LurkerMemory) memoryKind() Kind  { return KindLurker }
func (*BruteMemory) memoryKind() Kind   { return KindBrute }

// Entity is a hostile actor.
type Entity struct {
	ID           int
	Kind         Kind
	Pos          Pos
	HP           int
	MaxHP        int
	Attack       int
	Facing       Dir
	CarriesLight bool
	Moved        bool // moved during the last turn, for sprite selection
	Memory       Memory
}

// Inventory holds the avatar's consumable counters.
type Inventory struct {
	Potions int `json:"potions"`
	Stones  int `json:"stones"`
	Oil     int `json:"oil"`
}

// Equipped holds the avatar's equipment flags.
type Equipped struct {
	Blade   bool `json:"blade"`
	Lantern bool `json:"lantern"`
}

// Avatar holds the controlled character's attributes. Its position lives
// only in the grid as the avatar tag.
type Avatar struct {
	HP         int       `json:"hp"`
	MaxHP      int       `json:"max_hp"`
	Attack     int       `json:"attack"`
	Defense    int       `json:"defense"`
	Facing     Dir       `json:"facing"`
	Inventory  Inventory `json:"inventory"`
	Equipped   Equipped  `json:"equipped"`
	LanternLit bool      `json:"lantern_lit"`
	Fuel       int       `json:"fuel"`
}

// Condition is a time-based status effect on the avatar.
type Condition struct {
	Active               bool `json:"active"`
	StepsSinceLastDamage int  `json:"steps_since_last_damage"`
	DamagePerInterval    int  `json:"damage_per_interval"`
	StepInterval         int  `json:"step_interval"`
}

// Conditions is the avatar's status-effect bag.
type Conditions struct {
	Poison Condition `json:"poison"`
}

// Phase identifies a segment of the day/night cycle.
type Phase string

const (
	PhaseDawn  Phase = "dawn"
	PhaseDay   Phase = "day"
	PhaseDusk  Phase = "dusk"
	PhaseNight Phase = "night"
)

// TimeOfDay is the position within the day/night cycle.
type TimeOfDay struct {
	Phase       Phase `json:"phase"`
	StepInPhase int   `json:"step_in_phase"`
	CycleStep   int   `json:"cycle_step"`
	CycleCount  int   `json:"cycle_count"`
}

// Note is an entry in the avatar's log, unlocked by a story flag.
type Note struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Flag     string `json:"flag"`
	Complete bool   `json:"complete"`
}

// Stats holds run counters.
type Stats struct {
	Steps           int `json:"steps"`
	EnemiesDefeated int `json:"enemies_defeated"`
	DamageDealt     int `json:"damage_dealt"`
	DamageTaken     int `json:"damage_taken"`
	PropsOpened     int `json:"props_opened"`
	ItemsCollected  int `json:"items_collected"`
	StonesThrown    int `json:"stones_thrown"`
	Revivals        int `json:"revivals"`
}

// RunStatus is the terminal state of a run.
type RunStatus string

const (
	StatusPlaying RunStatus = "playing"
	StatusWon     RunStatus = "won"
	StatusDead    RunStatus = "dead"
)

// Snapshot is the complete world state handed into and returned from one
// turn. Snapshots are replaced, never mutated, once handed to the engine.
type Snapshot struct {
	Grid         Grid
	Entities     []Entity
	Avatar       Avatar
	Conditions   Conditions
	TimeOfDay    TimeOfDay
	StoryFlags   map[string]bool
	Notes        []Note
	Stats        Stats
	Status       RunStatus
	NextEntityID int
	Checkpoint   *Snapshot
}

// Action is a single player action.
type Action string

const (
	ActionMoveUp        Action = "move_up"
	ActionMoveDown      Action = "move_down"
	ActionMoveLeft      Action = "move_left"
	ActionMoveRight     Action = "move_right"
	ActionThrow         Action = "throw"
	ActionUseConsumable Action = "use"
	ActionInteract      Action = "interact"
	ActionWait          Action = "wait"

	// ActionRevive is not a turn. It is recorded in the action log when a
	// dead run returns to its checkpoint, so the log replays it.
	ActionRevive Action = "revive"
)

// Event is raised by the turn orchestrator for narrative and rendering
// collaborators. ID has the form "killed:<kind>", "opened:<tag>",
// "acquired:<tag>" or a bare word such as "won".
type Event struct {
	ID   string
	Pos  Pos
	Kind Kind // set for entity events
}

// Result describes what one Advance call did.
type Result struct {
	Accepted    bool
	Events      []Event
	Deaths      []Pos
	DamageDealt int
	DamageTaken int
	Output      []string
}

// HandlerCondition is a predicate that must hold for an event handler to fire.
type HandlerCondition struct {
	Type   string         // "flag_set", "flag_not", "flag_is", "stat_gt", "stat_lt", "has_item", "not"
	Params map[string]any // condition-specific parameters
	Inner  *HandlerCondition
}

// FlagEffect sets one story flag.
type FlagEffect struct {
	Flag  string
	Value bool
}

// EventHandler maps a raised event to flag effects.
type EventHandler struct {
	EventID    string // exact id, or prefix ending in "*"
	Conditions []HandlerCondition
	Effects    []FlagEffect
}

// NoteDef configures the note unlocked when Flag takes the Unlock value.
// Completes names a previously unlocked note to mark complete.
type NoteDef struct {
	Flag      string
	Unlock    bool
	Title     string
	Body      string
	Completes string
}
