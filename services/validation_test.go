package services

import (
	"errors"
	"testing"

	"github.com/Dosada05/slot-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput(game models.GameType, format models.TournamentType, leaderID string) RegistrationInput {
	in := RegistrationInput{
		GameType:       string(game),
		TournamentType: string(format),
		TeamLeader:     &models.TeamLeader{Name: "Arjun", GameID: leaderID, Whatsapp: "9876543210"},
		Payment:        &models.Payment{Screenshot: "https://cdn.example.com/pay.png", TransactionID: "TXN12345"},
	}
	playerID := "5123456789"
	if game == models.GameFreeFire {
		playerID = "512345678901"
	}
	for i := 0; i < models.ExtraPlayersFor(format); i++ {
		in.Players = append(in.Players, models.Player{Name: "Mate", GameID: playerID})
	}
	return in
}

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	return verr.Messages
}

func TestValidateRegistration_Valid(t *testing.T) {
	for _, key := range models.AllTournamentKeys() {
		leader := "1234567890"
		if key.GameType == models.GameFreeFire {
			leader = "123456789012"
		}
		t.Run(key.String(), func(t *testing.T) {
			assert.NoError(t, ValidateRegistration(validInput(key.GameType, key.TournamentType, leader)))
		})
	}
}

func TestValidateRegistration_CollectsAllErrors(t *testing.T) {
	in := RegistrationInput{
		GameType:       "bgmi",
		TournamentType: "solo",
		TeamLeader:     &models.TeamLeader{Name: "Arjun", GameID: "12345", Whatsapp: "9876543210"},
		Payment:        &models.Payment{Screenshot: "x", TransactionID: "abc"},
	}

	msgs := validationMessages(t, ValidateRegistration(in))
	assert.Contains(t, msgs, "BGMI ID must be exactly 10 digits")
	assert.Contains(t, msgs, "Transaction ID must be at least 5 characters")
	assert.Len(t, msgs, 2)
}

func TestValidateRegistration_MissingEverything(t *testing.T) {
	msgs := validationMessages(t, ValidateRegistration(RegistrationInput{}))
	assert.Contains(t, msgs, "Game type is required")
	assert.Contains(t, msgs, "Tournament type is required")
	assert.Contains(t, msgs, "Team leader information is required")
	assert.Contains(t, msgs, "Payment information is required")
}

func TestValidateRegistration_UnknownValues(t *testing.T) {
	in := validInput(models.GameBGMI, models.TournamentSolo, "1234567890")
	in.GameType = "pubg"
	in.TournamentType = "trio"

	msgs := validationMessages(t, ValidateRegistration(in))
	assert.Contains(t, msgs, "Invalid game type. Must be either bgmi or freefire")
	assert.Contains(t, msgs, "Invalid tournament type. Must be solo, duo, or squad")
}

func TestValidateRegistration_Roster(t *testing.T) {
	t.Run("squad needs three", func(t *testing.T) {
		in := validInput(models.GameBGMI, models.TournamentSquad, "1234567890")
		in.Players = in.Players[:2]
		msgs := validationMessages(t, ValidateRegistration(in))
		assert.Equal(t, []string{"Squad tournament requires exactly 3 additional players"}, msgs)
	})

	t.Run("solo takes none", func(t *testing.T) {
		in := validInput(models.GameBGMI, models.TournamentSolo, "1234567890")
		in.Players = []models.Player{{Name: "Extra", GameID: "1234567890"}}
		msgs := validationMessages(t, ValidateRegistration(in))
		assert.Equal(t, []string{"Solo tournament does not accept additional players"}, msgs)
	})

	t.Run("players numbered from two", func(t *testing.T) {
		in := validInput(models.GameFreeFire, models.TournamentDuo, "123456789012")
		in.Players[0] = models.Player{Name: "M", GameID: "123"}
		msgs := validationMessages(t, ValidateRegistration(in))
		assert.Equal(t, []string{
			"Player 2 name must be at least 2 characters",
			"Player 2 Free Fire UID must be exactly 12 digits",
		}, msgs)
	})
}

func TestValidateRegistration_Whatsapp(t *testing.T) {
	for _, number := range []string{"1234567890", "98765", "98765432101", "98765abcde"} {
		in := validInput(models.GameBGMI, models.TournamentSolo, "1234567890")
		in.TeamLeader.Whatsapp = number
		msgs := validationMessages(t, ValidateRegistration(in))
		assert.Equal(t, []string{"Valid WhatsApp number is required (10 digits starting with 6-9)"}, msgs, number)
	}
}

func TestNormalizeTrimsFields(t *testing.T) {
	in := validInput(models.GameBGMI, models.TournamentDuo, " 1234567890 ")
	in.GameType = " bgmi "
	in.TeamLeader.Name = "  Arjun  "
	in.normalize()

	assert.Equal(t, "bgmi", in.GameType)
	assert.Equal(t, "Arjun", in.TeamLeader.Name)
	assert.Equal(t, "1234567890", in.TeamLeader.GameID)
	assert.NoError(t, ValidateRegistration(in))
}
