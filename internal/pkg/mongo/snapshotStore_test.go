package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshotStore(t *testing.T) {
	_, err := NewSnapshotStore(nil)
	assert.NotNil(t, err)
	sp, err := NewSessionProvider("mongodb://mongo:27017")
	assert.Nil(t, err)
	ss, err := NewSnapshotStore(sp)
	assert.Nil(t, err)
	assert.NotNil(t, ss)
}
