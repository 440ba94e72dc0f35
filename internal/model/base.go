package model

import (
	"github.com/google/uuid"
)

// assignID fills a zero primary key. IDs are generated in Go so the schema
// does not depend on database-side UUID functions.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Plan{},
		&Subscription{},
		&Payment{},
		&LiveSession{},
		&SessionParticipant{},
	}
}

