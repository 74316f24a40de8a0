// Package save implements JSON serialization and deserialization of runs.
package save

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nathoo/gloomcore/engine"
	"github.com/nathoo/gloomcore/engine/ai"
	"github.com/nathoo/gloomcore/types"
)

// Version is the current save format.
const Version = "1"

// Slot groups saves by purpose.
type Slot string

const (
	SlotDefault Slot = "default"
	SlotDaily   Slot = "daily"
	SlotStory   Slot = "story"
)

// ParseSlot maps a slot name to a Slot. Empty means SlotDefault.
func ParseSlot(name string) (Slot, error) {
	switch Slot(name) {
	case "", SlotDefault:
		return SlotDefault, nil
	case SlotDaily, SlotStory:
		return Slot(name), nil
	}
	return "", fmt.Errorf("unknown save slot %q", name)
}

// Meta is everything saved alongside the snapshot.
type Meta struct {
	Title       string
	Slot        Slot
	SavedAt     time.Time
	Seed        int64
	RNGPosition int64
	ActionLog   []types.Action
}

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version     string         `json:"version"`
	Title       string         `json:"title"`
	Slot        Slot           `json:"slot"`
	SavedAt     time.Time      `json:"saved_at"`
	Seed        int64          `json:"seed"`
	RNGPosition int64          `json:"rng_position"`
	ActionLog   []types.Action `json:"action_log"`
	Snapshot    *snapshotJSON  `json:"snapshot"`
}

// Meta returns the save's metadata.
func (sd *SaveData) Meta() Meta {
	return Meta{
		Title:       sd.Title,
		Slot:        sd.Slot,
		SavedAt:     sd.SavedAt,
		Seed:        sd.Seed,
		RNGPosition: sd.RNGPosition,
		ActionLog:   sd.ActionLog,
	}
}

type snapshotJSON struct {
	Grid         types.Grid       `json:"grid"`
	Entities     []entityJSON     `json:"entities"`
	Avatar       types.Avatar     `json:"avatar"`
	Conditions   types.Conditions `json:"conditions"`
	TimeOfDay    types.TimeOfDay  `json:"time_of_day"`
	StoryFlags   map[string]bool  `json:"story_flags"`
	Notes        []types.Note     `json:"notes"`
	Stats        types.Stats      `json:"stats"`
	Status       types.RunStatus  `json:"status"`
	NextEntityID int              `json:"next_entity_id"`
	Checkpoint   *snapshotJSON    `json:"checkpoint,omitempty"`
}

// entityJSON carries the memory variant as one optional object per kind.
// Exactly one of them is set, matching Kind.
type entityJSON struct {
	ID           int        `json:"id"`
	Kind         types.Kind `json:"kind"`
	Pos          types.Pos  `json:"pos"`
	HP           int        `json:"hp"`
	MaxHP        int        `json:"max_hp"`
	Attack       int        `json:"attack"`
	Facing       types.Dir  `json:"facing"`
	CarriesLight bool       `json:"carries_light,omitempty"`
	Moved        bool       `json:"moved,omitempty"`

	Rat     *types.RatMemory     `json:"rat,omitempty"`
	Hunter  *types.HunterMemory  `json:"hunter,omitempty"`
	Crawler *types.CrawlerMemory `json:"crawler,omitempty"`
	Lurker  *types.LurkerMemory  `json:"lurker,omitempty"`
	Brute   *types.BruteMemory   `json:"brute,omitempty"`
}

// Save serializes a snapshot and its run metadata to JSON bytes.
// A zero SavedAt is stamped with the current time.
func Save(s types.Snapshot, meta Meta) ([]byte, error) {
	slot, err := ParseSlot(string(meta.Slot))
	if err != nil {
		return nil, err
	}
	if meta.SavedAt.IsZero() {
		meta.SavedAt = time.Now().UTC()
	}
	log := meta.ActionLog
	if log == nil {
		log = []types.Action{}
	}
	data := SaveData{
		Version:     Version,
		Title:       meta.Title,
		Slot:        slot,
		SavedAt:     meta.SavedAt,
		Seed:        meta.Seed,
		RNGPosition: meta.RNGPosition,
		ActionLog:   log,
		Snapshot:    encodeSnapshot(s),
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData and checks its header.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	if sd.Version != Version {
		return nil, fmt.Errorf("unsupported save version %q", sd.Version)
	}
	if sd.Snapshot == nil {
		return nil, fmt.Errorf("save has no snapshot")
	}
	slot, err := ParseSlot(string(sd.Slot))
	if err != nil {
		return nil, err
	}
	sd.Slot = slot
	if sd.ActionLog == nil {
		sd.ActionLog = []types.Action{}
	}
	return &sd, nil
}

// Restore rebuilds the snapshot held by a loaded save and checks it is
// well formed, so a tampered file cannot make Advance panic later.
func Restore(sd *SaveData) (types.Snapshot, error) {
	s, err := decodeSnapshot(sd.Snapshot)
	if err != nil {
		return types.Snapshot{}, err
	}
	if err := engine.Validate(s); err != nil {
		return types.Snapshot{}, fmt.Errorf("restoring save: %w", err)
	}
	if s.Checkpoint != nil {
		if err := engine.Validate(*s.Checkpoint); err != nil {
			return types.Snapshot{}, fmt.Errorf("restoring checkpoint: %w", err)
		}
	}
	return s, nil
}

func encodeSnapshot(s types.Snapshot) *snapshotJSON {
	out := &snapshotJSON{
		Grid:         s.Grid,
		Avatar:       s.Avatar,
		Conditions:   s.Conditions,
		TimeOfDay:    s.TimeOfDay,
		StoryFlags:   s.StoryFlags,
		Notes:        s.Notes,
		Stats:        s.Stats,
		Status:       s.Status,
		NextEntityID: s.NextEntityID,
	}
	for _, e := range s.Entities {
		out.Entities = append(out.Entities, encodeEntity(e))
	}
	if s.Checkpoint != nil {
		out.Checkpoint = encodeSnapshot(*s.Checkpoint)
	}
	return out
}

func encodeEntity(e types.Entity) entityJSON {
	out := entityJSON{
		ID:           e.ID,
		Kind:         e.Kind,
		Pos:          e.Pos,
		HP:           e.HP,
		MaxHP:        e.MaxHP,
		Attack:       e.Attack,
		Facing:       e.Facing,
		CarriesLight: e.CarriesLight,
		Moved:        e.Moved,
	}
	switch m := e.Memory.(type) {
	case *types.RatMemory:
		out.Rat = m
	case *types.HunterMemory:
		out.Hunter = m
	case *types.CrawlerMemory:
		out.Crawler = m
	case *types.LurkerMemory:
		out.Lurker = m
	case *types.BruteMemory:
		out.Brute = m
	}
	return out
}

func decodeSnapshot(in *snapshotJSON) (types.Snapshot, error) {
	s := types.Snapshot{
		Grid:         in.Grid,
		Avatar:       in.Avatar,
		Conditions:   in.Conditions,
		TimeOfDay:    in.TimeOfDay,
		StoryFlags:   in.StoryFlags,
		Notes:        in.Notes,
		Stats:        in.Stats,
		Status:       in.Status,
		NextEntityID: in.NextEntityID,
	}
	if s.StoryFlags == nil {
		s.StoryFlags = map[string]bool{}
	}
	switch s.Status {
	case types.StatusPlaying, types.StatusWon, types.StatusDead:
	default:
		return types.Snapshot{}, fmt.Errorf("unknown run status %q", s.Status)
	}
	for _, ej := range in.Entities {
		e, err := decodeEntity(ej)
		if err != nil {
			return types.Snapshot{}, err
		}
		s.Entities = append(s.Entities, e)
	}
	if in.Checkpoint != nil {
		cp, err := decodeSnapshot(in.Checkpoint)
		if err != nil {
			return types.Snapshot{}, fmt.Errorf("checkpoint: %w", err)
		}
		s.Checkpoint = &cp
	}
	return s, nil
}

func decodeEntity(in entityJSON) (types.Entity, error) {
	if !ai.KnownKind(in.Kind) {
		return types.Entity{}, fmt.Errorf("entity %d has unknown kind %q", in.ID, in.Kind)
	}
	var mem types.Memory
	set := 0
	if in.Rat != nil {
		mem, set = in.Rat, set+1
	}
	if in.Hunter != nil {
		mem, set = in.Hunter, set+1
	}
	if in.Crawler != nil {
		mem, set = in.Crawler, set+1
	}
	if in.Lurker != nil {
		mem, set = in.Lurker, set+1
	}
	if in.Brute != nil {
		mem, set = in.Brute, set+1
	}
	switch {
	case set == 0:
		mem = ai.NewMemory(in.Kind)
	case set > 1:
		return types.Entity{}, fmt.Errorf("entity %d carries %d memories", in.ID, set)
	case !memoryMatches(in.Kind, mem):
		return types.Entity{}, fmt.Errorf("entity %d (%s) carries memory %T", in.ID, in.Kind, mem)
	}
	return types.Entity{
		ID:           in.ID,
		Kind:         in.Kind,
		Pos:          in.Pos,
		HP:           in.HP,
		MaxHP:        in.MaxHP,
		Attack:       in.Attack,
		Facing:       in.Facing,
		CarriesLight: in.CarriesLight,
		Moved:        in.Moved,
		Memory:       mem,
	}, nil
}

func memoryMatches(kind types.Kind, m types.Memory) bool {
	switch m.(type) {
	case *types.RatMemory:
		return kind == types.KindRat
	case *types.HunterMemory:
		return kind == types.KindHunter
	case *types.CrawlerMemory:
		return kind == types.KindCrawler
	case *types.LurkerMemory:
		return kind == types.KindLurker
	case *types.BruteMemory:
		return kind == types.KindBrute
	}
	return false
}
