package follows

import (
	"testing"

	"github.com/mlotysz/hivebridge/internal/condenser"
)

func TestApplyStates(t *testing.T) {
	byID := map[int64]*condenser.LegacyAccount{
		1: {ID: 1, Name: "followed"},
		2: {ID: 2, Name: "muted"},
		3: {ID: 3, Name: "stranger"},
	}
	states := map[int64]int{
		1: stateFollowed,
		2: stateMuted,
	}

	applyStates(byID, states, true)

	if ctx := byID[1].Context; ctx == nil || !ctx.Followed || ctx.Muted {
		t.Errorf("followed account context = %+v", byID[1].Context)
	}
	if ctx := byID[2].Context; ctx == nil || ctx.Followed || !ctx.Muted {
		t.Errorf("muted account context = %+v", byID[2].Context)
	}
	if ctx := byID[3].Context; ctx == nil || ctx.Followed || ctx.Muted {
		t.Errorf("stranger must get the default context, got %+v", byID[3].Context)
	}
}

func TestApplyStates_MuteExcluded(t *testing.T) {
	byID := map[int64]*condenser.LegacyAccount{
		2: {ID: 2, Name: "muted"},
	}
	states := map[int64]int{2: stateMuted}

	applyStates(byID, states, false)

	if ctx := byID[2].Context; ctx == nil || ctx.Followed || ctx.Muted {
		t.Errorf("mute state must be ignored when excluded, got %+v", byID[2].Context)
	}
}
