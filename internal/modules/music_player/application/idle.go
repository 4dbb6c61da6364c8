package application

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// IdleDestroyer schedules the destruction of players whose voice channel
// went empty, with a grace period during which the timer can be cancelled.
type IdleDestroyer struct {
	mu     sync.Mutex
	timers map[snowflake.ID]*time.Timer

	exists  func(guildID snowflake.ID) bool
	destroy func(guildID snowflake.ID)
}

// NewIdleDestroyer creates a scheduler. exists is consulted before arming so
// a timer is never armed for a guild without a player; destroy runs when a
// timer fires.
func NewIdleDestroyer(exists func(snowflake.ID) bool, destroy func(snowflake.ID)) *IdleDestroyer {
	return &IdleDestroyer{
		timers:  make(map[snowflake.ID]*time.Timer),
		exists:  exists,
		destroy: destroy,
	}
}

// Arm schedules a destroy after d. It reports true when a new timer was
// armed, and false when one was already pending or the guild has no player.
func (i *IdleDestroyer) Arm(guildID snowflake.ID, d time.Duration) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	if _, armed := i.timers[guildID]; armed {
		return false
	}
	if !i.exists(guildID) {
		return false
	}

	i.timers[guildID] = time.AfterFunc(d, func() {
		i.mu.Lock()
		delete(i.timers, guildID)
		i.mu.Unlock()
		i.destroy(guildID)
	})
	return true
}

// Cancel aborts a pending timer, if any.
func (i *IdleDestroyer) Cancel(guildID snowflake.ID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if timer, armed := i.timers[guildID]; armed {
		timer.Stop()
		delete(i.timers, guildID)
	}
}

// Armed reports whether a timer is pending for the guild.
func (i *IdleDestroyer) Armed(guildID snowflake.ID) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, armed := i.timers[guildID]
	return armed
}
