package models

import "time"

// SlotConfig is the static capacity and prize configuration of one slot.
type SlotConfig struct {
	MaxSlots      int `json:"maxSlots"`
	EntryFee      int `json:"entryFee"`
	WinnerPrize   int `json:"winnerPrize"`
	RunnerUpPrize int `json:"runnerUpPrize"`
	PerKillReward int `json:"perKillReward"`
	// ExtraPlayers is the roster size besides the team leader.
	ExtraPlayers int `json:"extraPlayers"`
}

var catalog = map[TournamentKey]SlotConfig{
	{GameBGMI, TournamentSolo}:      {MaxSlots: 100, EntryFee: 20, WinnerPrize: 350, RunnerUpPrize: 250, PerKillReward: 9, ExtraPlayers: 0},
	{GameBGMI, TournamentDuo}:       {MaxSlots: 50, EntryFee: 40, WinnerPrize: 350, RunnerUpPrize: 250, PerKillReward: 9, ExtraPlayers: 1},
	{GameBGMI, TournamentSquad}:     {MaxSlots: 25, EntryFee: 80, WinnerPrize: 350, RunnerUpPrize: 250, PerKillReward: 9, ExtraPlayers: 3},
	{GameFreeFire, TournamentSolo}:  {MaxSlots: 48, EntryFee: 20, WinnerPrize: 350, RunnerUpPrize: 150, PerKillReward: 5, ExtraPlayers: 0},
	{GameFreeFire, TournamentDuo}:   {MaxSlots: 24, EntryFee: 40, WinnerPrize: 350, RunnerUpPrize: 150, PerKillReward: 5, ExtraPlayers: 1},
	{GameFreeFire, TournamentSquad}: {MaxSlots: 12, EntryFee: 80, WinnerPrize: 350, RunnerUpPrize: 150, PerKillReward: 5, ExtraPlayers: 3},
}

// LookupSlotConfig returns the static configuration for a key.
func LookupSlotConfig(key TournamentKey) (SlotConfig, bool) {
	cfg, ok := catalog[key]
	return cfg, ok
}

// ExtraPlayersFor returns the required number of additional players for a format.
func ExtraPlayersFor(t TournamentType) int {
	switch t {
	case TournamentDuo:
		return 1
	case TournamentSquad:
		return 3
	default:
		return 0
	}
}

// NewTournamentSlot seeds a slot record from its configuration.
func NewTournamentSlot(key TournamentKey, cfg SlotConfig, now time.Time) *TournamentSlot {
	s := &TournamentSlot{
		GameType:       key.GameType,
		TournamentType: key.TournamentType,
		MaxSlots:       cfg.MaxSlots,
		EntryFee:       cfg.EntryFee,
		WinnerPrize:    cfg.WinnerPrize,
		RunnerUpPrize:  cfg.RunnerUpPrize,
		PerKillReward:  cfg.PerKillReward,
		Status:         SlotScheduled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.ApplyCounts(StatusCounts{})
	return s
}
