package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockUsesLocation(t *testing.T) {
	loc := time.FixedZone("kiosk", 10*60*60)
	c := NewInLocation(loc)

	assert.Equal(t, loc, c.Now().Location())
}

func TestNewInLocationDefaultsToLocal(t *testing.T) {
	c := NewInLocation(nil)

	assert.Equal(t, time.Local, c.Now().Location())
}
