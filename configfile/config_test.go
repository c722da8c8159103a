package configfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowtec/msr/engine"
	"github.com/slowtec/msr/value"
)

const sampleTOML = `
[storage]
base_path = "/var/lib/msr"
prefix = "seg-"
suffix = ".csv"
retention_hours = 4320
max_bytes_written = 1048576

[[loops]]
id = "heater"
inputs = ["sensor.temp"]
outputs = ["actuator.heater"]

[loops.controller]
kind = "pid"

[loops.controller.pid]
kp = 2.0
ki = 0.1
kd = 0.0
default_target = 20.0

[[rules]]
id = "overheat"
actions = ["shutdown"]

[rules.condition]
op = "gt"

[rules.condition.left]
input = "sensor.temp"

[rules.condition.right]
const_float = 100.0
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "msr.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDecodesStorageAndLoopsAndRules(t *testing.T) {
	path := writeTemp(t, sampleTOML)

	f, err := Load(path)
	require.NoError(t, err)

	cfg, err := f.StorageConfig()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/msr", cfg.BasePath)
	assert.Equal(t, "seg-", cfg.NameTemplate.Prefix)
	assert.Equal(t, ".csv", cfg.NameTemplate.Suffix)
	assert.Equal(t, 4320*time.Hour, cfg.RetentionTime)
	require.NotNil(t, cfg.Limits.MaxBytesWritten)
	assert.Equal(t, uint64(1<<20), *cfg.Limits.MaxBytesWritten)

	rt, err := f.Runtime()
	require.NoError(t, err)
	require.Len(t, rt.Loops, 1)
	assert.Equal(t, "heater", rt.Loops[0].ID)
	assert.Equal(t, engine.ControllerPid, rt.Loops[0].Controller.Kind)
	assert.Equal(t, 2.0, rt.Loops[0].Controller.Pid.KP)

	require.Len(t, rt.Rules, 1)
	assert.Equal(t, "overheat", rt.Rules[0].ID)

	state := engine.NewSystemState()
	state.Inputs["sensor.temp"] = value.Float64(150)
	active, err := rt.Rules[0].Condition.Eval(&state)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestSourceRejectsAmbiguousOrEmpty(t *testing.T) {
	_, err := FileSource{}.toSource()
	assert.Error(t, err)

	input := "x"
	f := 1.0
	_, err = FileSource{Input: input, ConstFloat: &f}.toSource()
	assert.Error(t, err)
}

func TestUnknownControllerKindErrors(t *testing.T) {
	_, err := FileControllerConfig{Kind: "fuzzy"}.toControllerConfig()
	assert.Error(t, err)
}
