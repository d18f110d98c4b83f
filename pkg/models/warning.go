package models

import "time"

// Warning representa una advertencia individual en el ledger.
// Los registros nunca se editan; solo se eliminan en bloque por usuario.
type Warning struct {
	ID          int64     `bson:"_id" json:"id"`
	GuildID     string    `bson:"guild_id" json:"guildId"`
	SubjectID   string    `bson:"subject_id" json:"subjectId"`
	ModeratorID string    `bson:"moderator_id" json:"moderatorId"`
	Reason      string    `bson:"reason" json:"reason"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// LedgerCounter es el documento que guarda el último ID asignado
// (colección "counters", solo backend Mongo).
type LedgerCounter struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}
