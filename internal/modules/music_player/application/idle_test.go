package application

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

func TestIdleDestroyer_ArmAndFire(t *testing.T) {
	fired := make(chan snowflake.ID, 1)
	idle := NewIdleDestroyer(
		func(snowflake.ID) bool { return true },
		func(guildID snowflake.ID) { fired <- guildID },
	)

	if !idle.Arm(1, 10*time.Millisecond) {
		t.Fatal("expected fresh arm to report true")
	}

	select {
	case guildID := <-fired:
		if guildID != 1 {
			t.Errorf("expected guild 1 destroyed, got %d", guildID)
		}
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
	if idle.Armed(1) {
		t.Error("expected timer cleared after firing")
	}
}

func TestIdleDestroyer_Cancel(t *testing.T) {
	fired := make(chan snowflake.ID, 1)
	idle := NewIdleDestroyer(
		func(snowflake.ID) bool { return true },
		func(guildID snowflake.ID) { fired <- guildID },
	)

	idle.Arm(1, 20*time.Millisecond)
	idle.Cancel(1)

	if idle.Armed(1) {
		t.Error("expected timer disarmed")
	}
	select {
	case guildID := <-fired:
		t.Errorf("cancelled timer fired for guild %d", guildID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIdleDestroyer_ArmWhileArmed(t *testing.T) {
	idle := NewIdleDestroyer(
		func(snowflake.ID) bool { return true },
		func(snowflake.ID) {},
	)

	if !idle.Arm(1, time.Hour) {
		t.Fatal("expected fresh arm to report true")
	}
	if idle.Arm(1, time.Hour) {
		t.Error("expected re-arm to report false")
	}
}

func TestIdleDestroyer_ArmUnknownGuild(t *testing.T) {
	idle := NewIdleDestroyer(
		func(snowflake.ID) bool { return false },
		func(snowflake.ID) {},
	)

	if idle.Arm(1, time.Hour) {
		t.Error("expected arm to refuse a guild with no player")
	}
	if idle.Armed(1) {
		t.Error("expected no timer")
	}
}
