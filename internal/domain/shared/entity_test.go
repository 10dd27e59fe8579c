package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.False(t, e.GetCreatedAt().IsZero())
	assert.Equal(t, e.GetCreatedAt(), e.GetUpdatedAt())
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	created := e.GetCreatedAt()

	e.Touch()

	assert.Equal(t, created, e.GetCreatedAt())
	assert.False(t, e.GetUpdatedAt().Before(created))
}
