package idgen

import "github.com/google/uuid"

// Generator mints conversation identifiers.
type Generator interface {
	New() uuid.UUID
}

type random struct{}

// UUID returns a Generator backed by random (v4) UUIDs.
func UUID() Generator { return random{} }

func (random) New() uuid.UUID { return uuid.New() }

// Func adapts a function to Generator.
type Func func() uuid.UUID

func (f Func) New() uuid.UUID { return f() }
