package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Dosada05/slot-arena/models"
)

var (
	whatsappPattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	gameIDPatterns  = map[models.GameType]*regexp.Regexp{
		models.GameBGMI:     regexp.MustCompile(`^\d{10}$`),
		models.GameFreeFire: regexp.MustCompile(`^\d{12}$`),
	}
	gameIDMessages = map[models.GameType]string{
		models.GameBGMI:     "BGMI ID must be exactly 10 digits",
		models.GameFreeFire: "Free Fire UID must be exactly 12 digits",
	}
)

const (
	minNameLen     = 2
	maxNameLen     = 50
	minTeamNameLen = 3
	maxTeamNameLen = 50
	minTxnLen      = 5
	maxTxnLen      = 100
)

// RegistrationInput is the player-facing submission payload.
type RegistrationInput struct {
	GameType       string             `json:"gameType"`
	TournamentType string             `json:"tournamentType"`
	TeamName       string             `json:"teamName,omitempty"`
	TeamLeader     *models.TeamLeader `json:"teamLeader"`
	Players        []models.Player    `json:"players,omitempty"`
	Payment        *models.Payment    `json:"payment"`
}

// normalize trims surrounding whitespace from every free-text field.
func (in *RegistrationInput) normalize() {
	in.GameType = strings.TrimSpace(in.GameType)
	in.TournamentType = strings.TrimSpace(in.TournamentType)
	in.TeamName = strings.TrimSpace(in.TeamName)
	if in.TeamLeader != nil {
		in.TeamLeader.Name = strings.TrimSpace(in.TeamLeader.Name)
		in.TeamLeader.GameID = strings.TrimSpace(in.TeamLeader.GameID)
		in.TeamLeader.Whatsapp = strings.TrimSpace(in.TeamLeader.Whatsapp)
	}
	for i := range in.Players {
		in.Players[i].Name = strings.TrimSpace(in.Players[i].Name)
		in.Players[i].GameID = strings.TrimSpace(in.Players[i].GameID)
	}
	if in.Payment != nil {
		in.Payment.Screenshot = strings.TrimSpace(in.Payment.Screenshot)
		in.Payment.TransactionID = strings.TrimSpace(in.Payment.TransactionID)
	}
}

// ValidateRegistration collects every problem with the input; it never stops at the first one.
func ValidateRegistration(in RegistrationInput) error {
	var msgs []string
	add := func(format string, args ...interface{}) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}

	game := models.GameType(in.GameType)
	format := models.TournamentType(in.TournamentType)

	switch {
	case in.GameType == "":
		add("Game type is required")
	case !game.Valid():
		add("Invalid game type. Must be either bgmi or freefire")
	}
	switch {
	case in.TournamentType == "":
		add("Tournament type is required")
	case !format.Valid():
		add("Invalid tournament type. Must be solo, duo, or squad")
	}

	if in.TeamName != "" {
		if n := utf8.RuneCountInString(in.TeamName); n < minTeamNameLen {
			add("Team name must be at least %d characters", minTeamNameLen)
		} else if n > maxTeamNameLen {
			add("Team name must not exceed %d characters", maxTeamNameLen)
		}
	}

	if in.TeamLeader == nil {
		add("Team leader information is required")
	} else {
		leader := in.TeamLeader
		if n := utf8.RuneCountInString(leader.Name); n < minNameLen {
			add("Team leader name must be at least %d characters", minNameLen)
		} else if n > maxNameLen {
			add("Team leader name must not exceed %d characters", maxNameLen)
		}
		if leader.GameID == "" {
			add("Team leader game ID is required")
		} else if pattern, ok := gameIDPatterns[game]; ok && !pattern.MatchString(leader.GameID) {
			add("%s", gameIDMessages[game])
		}
		if !whatsappPattern.MatchString(leader.Whatsapp) {
			add("Valid WhatsApp number is required (10 digits starting with 6-9)")
		}
	}

	if in.Payment == nil {
		add("Payment information is required")
	} else {
		if in.Payment.Screenshot == "" {
			add("Payment screenshot is required")
		}
		if n := utf8.RuneCountInString(in.Payment.TransactionID); n < minTxnLen {
			add("Transaction ID must be at least %d characters", minTxnLen)
		} else if n > maxTxnLen {
			add("Transaction ID too long")
		}
	}

	switch format {
	case models.TournamentSolo:
		if len(in.Players) != 0 {
			add("Solo tournament does not accept additional players")
		}
	case models.TournamentDuo:
		if len(in.Players) != 1 {
			add("Duo tournament requires exactly 1 additional player")
		}
	case models.TournamentSquad:
		if len(in.Players) != 3 {
			add("Squad tournament requires exactly 3 additional players")
		}
	}

	// Players are numbered from 2: the leader is player 1.
	for i, p := range in.Players {
		num := i + 2
		if n := utf8.RuneCountInString(p.Name); n < minNameLen {
			add("Player %d name must be at least %d characters", num, minNameLen)
		} else if n > maxNameLen {
			add("Player %d name must not exceed %d characters", num, maxNameLen)
		}
		if p.GameID == "" {
			add("Player %d game ID is required", num)
		} else if pattern, ok := gameIDPatterns[game]; ok && !pattern.MatchString(p.GameID) {
			add("Player %d %s", num, gameIDMessages[game])
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}
