package models

import (
	"fmt"
	"time"
)

// GameType — поддерживаемые игры.
type GameType string

const (
	GameBGMI     GameType = "bgmi"
	GameFreeFire GameType = "freefire"
)

// TournamentType — формат турнира (размер команды).
type TournamentType string

const (
	TournamentSolo  TournamentType = "solo"
	TournamentDuo   TournamentType = "duo"
	TournamentSquad TournamentType = "squad"
)

var (
	GameTypes       = []GameType{GameBGMI, GameFreeFire}
	TournamentTypes = []TournamentType{TournamentSolo, TournamentDuo, TournamentSquad}
)

func (g GameType) Valid() bool {
	return g == GameBGMI || g == GameFreeFire
}

func (t TournamentType) Valid() bool {
	return t == TournamentSolo || t == TournamentDuo || t == TournamentSquad
}

// SlotStatus представляет статусы слота турнира.
type SlotStatus string

const (
	SlotScheduled SlotStatus = "scheduled"
	SlotLive      SlotStatus = "live"
	SlotCompleted SlotStatus = "completed"
	SlotCancelled SlotStatus = "cancelled"
)

// TournamentKey identifies one slot: a (game, format) pair.
type TournamentKey struct {
	GameType       GameType       `json:"gameType"`
	TournamentType TournamentType `json:"tournamentType"`
}

func (k TournamentKey) Valid() bool {
	return k.GameType.Valid() && k.TournamentType.Valid()
}

// String is also used as the websocket room name.
func (k TournamentKey) String() string {
	return fmt.Sprintf("%s:%s", k.GameType, k.TournamentType)
}

// AllTournamentKeys returns every known key in catalog order.
func AllTournamentKeys() []TournamentKey {
	keys := make([]TournamentKey, 0, len(GameTypes)*len(TournamentTypes))
	for _, g := range GameTypes {
		for _, t := range TournamentTypes {
			keys = append(keys, TournamentKey{GameType: g, TournamentType: t})
		}
	}
	return keys
}

// StatusCounts is the authoritative per-status tally of registrations for a key.
type StatusCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func (c StatusCounts) Total() int {
	return c.Pending + c.Approved + c.Rejected
}

// TournamentSlot представляет турнир для пары (игра, формат) с кэшированными счётчиками.
type TournamentSlot struct {
	GameType       GameType       `json:"gameType" db:"game_type" bson:"gameType"`
	TournamentType TournamentType `json:"tournamentType" db:"tournament_type" bson:"tournamentType"`

	MaxSlots      int `json:"maxSlots" db:"max_slots" bson:"maxSlots"`
	EntryFee      int `json:"entryFee" db:"entry_fee" bson:"entryFee"`
	WinnerPrize   int `json:"winnerPrize" db:"winner_prize" bson:"winnerPrize"`
	RunnerUpPrize int `json:"runnerUpPrize" db:"runner_up_prize" bson:"runnerUpPrize"`
	PerKillReward int `json:"perKillReward" db:"per_kill_reward" bson:"perKillReward"`

	QRCodeURL    *string    `json:"qrCodeUrl,omitempty" db:"qr_code_url" bson:"qrCodeUrl,omitempty"`
	RoomID       *string    `json:"roomId,omitempty" db:"room_id" bson:"roomId,omitempty"`
	RoomPassword *string    `json:"roomPassword,omitempty" db:"room_password" bson:"roomPassword,omitempty"`
	StartTime    *time.Time `json:"startTime,omitempty" db:"start_time" bson:"startTime,omitempty"`
	EndTime      *time.Time `json:"endTime,omitempty" db:"end_time" bson:"endTime,omitempty"`

	RegisteredCount int        `json:"registeredCount" db:"registered_count" bson:"registeredCount"`
	ApprovedCount   int        `json:"approvedCount" db:"approved_count" bson:"approvedCount"`
	PendingCount    int        `json:"pendingCount" db:"pending_count" bson:"pendingCount"`
	RejectedCount   int        `json:"rejectedCount" db:"rejected_count" bson:"rejectedCount"`
	AvailableSlots  int        `json:"availableSlots" db:"available_slots" bson:"availableSlots"`
	IsFull          bool       `json:"isFull" db:"is_full" bson:"isFull"`
	Status          SlotStatus `json:"status" db:"status" bson:"status"`

	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

func (s *TournamentSlot) Key() TournamentKey {
	return TournamentKey{GameType: s.GameType, TournamentType: s.TournamentType}
}

// ApplyCounts overwrites the cached counters from an authoritative tally.
// availableSlots is clamped at zero so an over-admitted slot still reads as full.
func (s *TournamentSlot) ApplyCounts(c StatusCounts) {
	s.RegisteredCount = c.Total()
	s.ApprovedCount = c.Approved
	s.PendingCount = c.Pending
	s.RejectedCount = c.Rejected
	s.AvailableSlots = max(0, s.MaxSlots-c.Approved)
	s.IsFull = c.Approved >= s.MaxSlots
}

// ResetState zeroes counters and clears room credentials.
func (s *TournamentSlot) ResetState() {
	s.ApplyCounts(StatusCounts{})
	s.RoomID = nil
	s.RoomPassword = nil
	s.Status = SlotScheduled
}

// TournamentConfigPatch — поля, которые администратор может менять у слота.
// Счётчики и maxSlots через этот путь не меняются.
type TournamentConfigPatch struct {
	QRCodeURL    *string
	RoomID       *string
	RoomPassword *string
	StartTime    *time.Time
	EndTime      *time.Time
}

func (p TournamentConfigPatch) Empty() bool {
	return p.QRCodeURL == nil && p.RoomID == nil && p.RoomPassword == nil && p.StartTime == nil && p.EndTime == nil
}

// Apply copies the set fields of the patch onto the slot.
func (p TournamentConfigPatch) Apply(s *TournamentSlot) {
	if p.QRCodeURL != nil {
		s.QRCodeURL = p.QRCodeURL
	}
	if p.RoomID != nil {
		s.RoomID = p.RoomID
	}
	if p.RoomPassword != nil {
		s.RoomPassword = p.RoomPassword
	}
	if p.StartTime != nil {
		s.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = p.EndTime
	}
}

// NextScheduleStatus returns the status a slot should move to at time now,
// or the current status when no transition applies.
func (s *TournamentSlot) NextScheduleStatus(now time.Time) SlotStatus {
	switch s.Status {
	case SlotScheduled:
		if s.EndTime != nil && !s.EndTime.After(now) {
			return SlotCompleted
		}
		if s.StartTime != nil && !s.StartTime.After(now) {
			return SlotLive
		}
	case SlotLive:
		if s.EndTime != nil && !s.EndTime.After(now) {
			return SlotCompleted
		}
	}
	return s.Status
}
