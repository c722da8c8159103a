package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowtec/msr/value"
)

func TestPidTick(t *testing.T) {
	rt := &Runtime{Loops: []Loop{{
		ID:         "foo",
		Inputs:     []string{"sensor"},
		Outputs:    []string{"actuator"},
		Controller: ControllerConfig{Kind: ControllerPid, Pid: PidConfig{KP: 2, DefaultTarget: 10}},
	}}}

	state := NewSystemState()
	state.Inputs["sensor"] = value.Float64(0)

	next, err := rt.Next(state, time.Second)
	require.NoError(t, err)

	actuator, ok := next.Outputs["actuator"].Float64()
	require.True(t, ok)
	assert.Equal(t, 20.0, actuator)

	pid := next.Controllers["foo"].Pid
	require.NotNil(t, pid.PrevValue)
	assert.Equal(t, 0.0, *pid.PrevValue)
}

func TestBangBangTick(t *testing.T) {
	rt := &Runtime{Loops: []Loop{{
		ID:         "foo",
		Inputs:     []string{"sensor"},
		Outputs:    []string{"actuator"},
		Controller: ControllerConfig{Kind: ControllerBangBang, BangBang: BangBangConfig{DefaultThreshold: 2}},
	}}}

	state := NewSystemState()
	state.Inputs["sensor"] = value.Float64(3)
	next, err := rt.Next(state, time.Second)
	require.NoError(t, err)
	v, _ := next.Outputs["actuator"].Bool()
	assert.True(t, v)

	state2 := NewSystemState()
	state2.Inputs["sensor"] = value.Float64(-3)
	next2, err := rt.Next(state2, time.Second)
	require.NoError(t, err)
	v2, _ := next2.Outputs["actuator"].Bool()
	assert.False(t, v2)
}

func TestRuleActionSetsSetpointOnlyWhenConditionHolds(t *testing.T) {
	rt := &Runtime{
		Rules: []Rule{{
			ID:        "foo",
			Condition: Cmp(In("x"), Equal, Const(value.Float64(10))),
			Actions:   []string{"a"},
		}},
		Actions: []Action{{
			ID:        "a",
			Setpoints: map[string]Source{"pid": Const(value.Float64(99.7))},
		}},
	}

	state := NewSystemState()
	state.Inputs["x"] = value.Float64(0)
	next, err := rt.Next(state, time.Millisecond)
	require.NoError(t, err)
	_, ok := next.Setpoints["pid"]
	assert.False(t, ok)

	state.Inputs["x"] = value.Float64(10)
	next, err = rt.Next(state, time.Millisecond)
	require.NoError(t, err)
	sp, ok := next.Setpoints["pid"]
	require.True(t, ok)
	f, _ := sp.Float64()
	assert.Equal(t, 99.7, f)
}

func TestTimeoutDecrementSaturatesAtZero(t *testing.T) {
	rt := &Runtime{}

	state := NewSystemState()
	state.Timeouts["t"] = 100 * time.Millisecond
	next, err := rt.Next(state, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 99*time.Millisecond, next.Timeouts["t"])

	state.Timeouts["t"] = 100 * time.Millisecond
	next, err = rt.Next(state, 200*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), next.Timeouts["t"])
}

func TestFsmStepFiresOnlyFromMatchingStateAndCondition(t *testing.T) {
	rt := &Runtime{
		StateMachines: map[string]StateMachine{
			"fsm": {
				Initial: "start",
				Transitions: []Transition{{
					From:      "start",
					To:        "step-one",
					Condition: Cmp(In("x"), Greater, Const(value.Float64(1.0))),
				}},
			},
		},
	}

	state := NewSystemState()
	state.Inputs["x"] = value.Float64(0)
	next, err := rt.Next(state, time.Second)
	require.NoError(t, err)
	_, ok := next.StateMachines["fsm"]
	assert.False(t, ok, "no transition fires, so no state is recorded yet")

	state.StateMachines["fsm"] = "start"
	state.Inputs["x"] = value.Float64(1.5)
	next, err = rt.Next(state, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "step-one", next.StateMachines["fsm"])
}

func TestErrorAccumulationDoesNotBlockOtherLoops(t *testing.T) {
	rt := &Runtime{Loops: []Loop{
		{ID: "pid_0", Inputs: []string{"sensor_0"}, Outputs: []string{"actuator_0"}, Controller: ControllerConfig{Kind: ControllerPid, Pid: PidConfig{KP: 2}}},
		{ID: "pid_1", Inputs: []string{"sensor_1"}, Outputs: []string{"actuator_1"}, Controller: ControllerConfig{Kind: ControllerPid, Pid: PidConfig{KP: 2}}},
	}}

	state := NewSystemState()
	state.Inputs["sensor_1"] = value.Float64(5)

	next, err := rt.Next(state, time.Second)
	require.Error(t, err)

	var agg interface{ Unwrap() []error }
	require.ErrorAs(t, err, &agg)
	assert.Len(t, agg.Unwrap(), 1)

	_, ok := next.Outputs["actuator_0"]
	assert.False(t, ok)
	_, ok = next.Outputs["actuator_1"]
	assert.True(t, ok)
}

func TestLoopRequiresExactlyOneInputAndOutput(t *testing.T) {
	rt := &Runtime{}
	state := NewSystemState()
	state.Inputs["input"] = value.Float64(0)
	_, err := rt.Next(state, 5*time.Millisecond)
	require.NoError(t, err)

	rt.Loops = []Loop{{ID: "foo", Controller: ControllerConfig{Kind: ControllerBangBang}}}
	_, err = rt.Next(state, 5*time.Millisecond)
	require.Error(t, err)

	rt.Loops[0].Inputs = []string{"input"}
	_, err = rt.Next(state, 5*time.Millisecond)
	require.Error(t, err)

	rt.Loops[0].Outputs = []string{"output"}
	_, err = rt.Next(state, 5*time.Millisecond)
	require.NoError(t, err)
}

func TestApplyControllerResetAction(t *testing.T) {
	rt := &Runtime{
		Loops: []Loop{{
			ID:         "pid",
			Inputs:     []string{"sensor"},
			Outputs:    []string{"actuator"},
			Controller: ControllerConfig{Kind: ControllerPid, Pid: PidConfig{KP: 2, KI: 100, KD: 1, DefaultTarget: 10}},
		}},
		Rules: []Rule{{
			ID:        "foo",
			Condition: Cmp(In("x"), Equal, Const(value.Float64(10))),
			Actions:   []string{"a"},
		}},
		Actions: []Action{{
			ID:          "a",
			Controllers: map[string]ControllerAction{"pid": {Reset: true}},
		}},
	}

	state := NewSystemState()
	state.Inputs["x"] = value.Float64(0)
	state.Inputs["sensor"] = value.Float64(0)
	state.Setpoints["pid"] = value.Float64(20)

	state, err := rt.Next(state, time.Second)
	require.NoError(t, err)
	state, err = rt.Next(state, time.Second)
	require.NoError(t, err)

	state.Inputs["x"] = value.Float64(10)
	state.Inputs["sensor"] = value.Float64(1)
	state, err = rt.Next(state, time.Second)
	require.NoError(t, err)

	pid := state.Controllers["pid"].Pid
	assert.Equal(t, 10.0, pid.Target)
	assert.Nil(t, pid.PrevValue)
	assert.Equal(t, 0.0, pid.P)
	assert.Equal(t, 0.0, pid.I)
	assert.Equal(t, 0.0, pid.D)
}

func TestApplyControllerStartStopActions(t *testing.T) {
	rt := &Runtime{
		Loops: []Loop{{
			ID:         "pid_1",
			Inputs:     []string{"sensor"},
			Outputs:    []string{"actuator_1"},
			Controller: ControllerConfig{Kind: ControllerPid, Pid: PidConfig{KI: 1, DefaultTarget: 10}},
		}},
		Rules: []Rule{{
			ID:        "stop",
			Condition: Cmp(In("x"), Equal, Const(value.Float64(10))),
			Actions:   []string{"a"},
		}},
		Actions: []Action{{
			ID:          "a",
			Controllers: map[string]ControllerAction{"pid_1": {Active: boolPtr(false)}},
		}},
	}

	state := NewSystemState()
	state.Inputs["x"] = value.Float64(0)
	state.Inputs["sensor"] = value.Float64(0)

	state, err := rt.Next(state, time.Second)
	require.NoError(t, err)
	_, inactive := state.InactiveLoops["pid_1"]
	assert.False(t, inactive)

	state.Inputs["x"] = value.Float64(10)
	state, err = rt.Next(state, time.Second)
	require.NoError(t, err)
	_, inactive = state.InactiveLoops["pid_1"]
	assert.True(t, inactive, "the stop action fires this tick, taking effect starting next tick")
}

func boolPtr(b bool) *bool { return &b }
