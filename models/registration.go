package models

import "time"

// RegistrationStatus представляет статусы заявки.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) Valid() bool {
	return s == RegistrationPending || s == RegistrationApproved || s == RegistrationRejected
}

// Active statuses occupy the leader's game ID within a tournament.
func (s RegistrationStatus) Active() bool {
	return s == RegistrationPending || s == RegistrationApproved
}

type TeamLeader struct {
	Name     string `json:"name" bson:"name"`
	GameID   string `json:"gameId" bson:"gameId"`
	Whatsapp string `json:"whatsapp" bson:"whatsapp"`
}

type Player struct {
	Name   string `json:"name" bson:"name"`
	GameID string `json:"gameId" bson:"gameId"`
}

// Payment is the manual payment proof: an uploaded screenshot URL and a transaction ID.
type Payment struct {
	Screenshot    string `json:"screenshot" bson:"screenshot"`
	TransactionID string `json:"transactionId" bson:"transactionId"`
}

// Registration представляет заявку команды или игрока на турнир.
type Registration struct {
	ID             string             `json:"id" db:"id" bson:"_id"`
	GameType       GameType           `json:"gameType" db:"game_type" bson:"gameType"`
	TournamentType TournamentType     `json:"tournamentType" db:"tournament_type" bson:"tournamentType"`
	TeamName       string             `json:"teamName" db:"team_name" bson:"teamName"`
	TeamLeader     TeamLeader         `json:"teamLeader" db:"-" bson:"teamLeader"`
	Players        []Player           `json:"players" db:"players" bson:"players"`
	Payment        Payment            `json:"payment" db:"-" bson:"payment"`
	Status         RegistrationStatus `json:"status" db:"status" bson:"status"`

	RejectionReason *string    `json:"rejectionReason,omitempty" db:"rejection_reason" bson:"rejectionReason,omitempty"`
	SubmittedAt     time.Time  `json:"submittedAt" db:"submitted_at" bson:"submittedAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty" db:"approved_at" bson:"approvedAt,omitempty"`
	ApprovedBy      *string    `json:"approvedBy,omitempty" db:"approved_by" bson:"approvedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty" db:"rejected_at" bson:"rejectedAt,omitempty"`
	RejectedBy      *string    `json:"rejectedBy,omitempty" db:"rejected_by" bson:"rejectedBy,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

func (r *Registration) Key() TournamentKey {
	return TournamentKey{GameType: r.GameType, TournamentType: r.TournamentType}
}

// RegistrationFilter — фильтры для списка заявок в админке.
type RegistrationFilter struct {
	GameType       *GameType
	TournamentType *TournamentType
	Status         *RegistrationStatus
}
