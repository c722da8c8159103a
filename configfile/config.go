package configfile

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/slowtec/msr/engine"
	"github.com/slowtec/msr/msrerr"
	"github.com/slowtec/msr/storage"
	"github.com/slowtec/msr/value"
)

// File is the root of a TOML config document.
type File struct {
	Storage *FileStorage `toml:"storage"`
	Loops   []FileLoop   `toml:"loops"`
	Rules   []FileRule   `toml:"rules"`
}

// FileStorage maps to storage.Config.
type FileStorage struct {
	BasePath             string   `toml:"base_path"`
	Prefix               string   `toml:"prefix"`
	Suffix               string   `toml:"suffix"`
	RetentionHours       float64  `toml:"retention_hours"`
	MaxBytesWritten      *uint64  `toml:"max_bytes_written"`
	MaxRecordsWritten    *uint64  `toml:"max_records_written"`
	MaxNanosecondsOffset *uint64  `toml:"max_nanoseconds_offset"`
	IntervalHours        *float64 `toml:"interval_hours"`
}

// FileLoop maps to engine.Loop.
type FileLoop struct {
	ID         string               `toml:"id"`
	Inputs     []string             `toml:"inputs"`
	Outputs    []string             `toml:"outputs"`
	Controller FileControllerConfig `toml:"controller"`
}

// FileControllerConfig maps to engine.ControllerConfig. Kind selects which
// of Pid/BangBang is populated: "pid" or "bang_bang".
type FileControllerConfig struct {
	Kind     string              `toml:"kind"`
	Pid      *FilePidConfig      `toml:"pid"`
	BangBang *FileBangBangConfig `toml:"bang_bang"`
}

// FilePidConfig maps to engine.PidConfig.
type FilePidConfig struct {
	KP            float64  `toml:"kp"`
	KI            float64  `toml:"ki"`
	KD            float64  `toml:"kd"`
	DefaultTarget float64  `toml:"default_target"`
	Min           *float64 `toml:"min"`
	Max           *float64 `toml:"max"`
	PMin          *float64 `toml:"p_min"`
	PMax          *float64 `toml:"p_max"`
	IMin          *float64 `toml:"i_min"`
	IMax          *float64 `toml:"i_max"`
}

// FileBangBangConfig maps to engine.BangBangConfig.
type FileBangBangConfig struct {
	DefaultThreshold float64 `toml:"default_threshold"`
	Hysteresis       float64 `toml:"hysteresis"`
}

// FileRule maps to engine.Rule. Condition is a single leaf comparison —
// compound conditions require code-level construction (see package doc).
type FileRule struct {
	ID        string         `toml:"id"`
	Condition FileComparison `toml:"condition"`
	Actions   []string       `toml:"actions"`
}

// FileSource maps to engine.Source. Exactly one field must be set.
type FileSource struct {
	Input       string   `toml:"input"`
	Output      string   `toml:"output"`
	Memory      string   `toml:"memory"`
	Setpoint    string   `toml:"setpoint"`
	Timeout     string   `toml:"timeout"`
	ConstFloat  *float64 `toml:"const_float"`
	ConstBool   *bool    `toml:"const_bool"`
	ConstString *string  `toml:"const_string"`
}

// FileComparison maps to engine.Comparison. Op is one of "lt", "lte", "gt",
// "gte", "eq", "neq".
type FileComparison struct {
	Left  FileSource `toml:"left"`
	Op    string     `toml:"op"`
	Right FileSource `toml:"right"`
}

// Load decodes a TOML config file at path.
func Load(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, &msrerr.FormatInvalidError{Message: fmt.Sprintf("configfile: decode %s", path), Cause: err}
	}
	return f, nil
}

// StorageConfig converts f.Storage to a storage.Config. Returns the zero
// Config if f.Storage is nil.
func (f File) StorageConfig() (storage.Config, error) {
	if f.Storage == nil {
		return storage.Config{}, nil
	}
	fs := f.Storage

	limits := storage.RollingFileLimits{
		MaxBytesWritten:      fs.MaxBytesWritten,
		MaxRecordsWritten:    fs.MaxRecordsWritten,
		MaxNanosecondsOffset: fs.MaxNanosecondsOffset,
	}
	if fs.IntervalHours != nil {
		iv := storage.SegmentInterval(time.Duration(*fs.IntervalHours * float64(time.Hour)))
		limits.Interval = &iv
	}

	return storage.Config{
		BasePath:      fs.BasePath,
		NameTemplate:  storage.NameTemplate{Prefix: fs.Prefix, Suffix: fs.Suffix},
		Limits:        limits,
		RetentionTime: time.Duration(fs.RetentionHours * float64(time.Hour)),
	}, nil
}

// Runtime converts f.Loops and f.Rules to an engine.Runtime. Actions and
// state machines are left empty — the file format covers loops/rules only;
// attach Actions/StateMachines on the returned Runtime in code.
func (f File) Runtime() (*engine.Runtime, error) {
	rt := &engine.Runtime{}

	for _, fl := range f.Loops {
		loop, err := fl.toLoop()
		if err != nil {
			return nil, err
		}
		rt.Loops = append(rt.Loops, loop)
	}

	for _, fr := range f.Rules {
		rule, err := fr.toRule()
		if err != nil {
			return nil, err
		}
		rt.Rules = append(rt.Rules, rule)
	}

	return rt, nil
}

func (fl FileLoop) toLoop() (engine.Loop, error) {
	cfg, err := fl.Controller.toControllerConfig()
	if err != nil {
		return engine.Loop{}, fmt.Errorf("configfile: loop %q: %w", fl.ID, err)
	}
	return engine.Loop{
		ID:         fl.ID,
		Inputs:     fl.Inputs,
		Outputs:    fl.Outputs,
		Controller: cfg,
	}, nil
}

func (fc FileControllerConfig) toControllerConfig() (engine.ControllerConfig, error) {
	switch fc.Kind {
	case "pid":
		if fc.Pid == nil {
			return engine.ControllerConfig{}, fmt.Errorf("configfile: kind \"pid\" requires a [controller.pid] table")
		}
		p := fc.Pid
		return engine.ControllerConfig{
			Kind: engine.ControllerPid,
			Pid: engine.PidConfig{
				KP: p.KP, KI: p.KI, KD: p.KD, DefaultTarget: p.DefaultTarget,
				Min: p.Min, Max: p.Max, PMin: p.PMin, PMax: p.PMax, IMin: p.IMin, IMax: p.IMax,
			},
		}, nil
	case "bang_bang":
		if fc.BangBang == nil {
			return engine.ControllerConfig{}, fmt.Errorf("configfile: kind \"bang_bang\" requires a [controller.bang_bang] table")
		}
		b := fc.BangBang
		return engine.ControllerConfig{
			Kind:     engine.ControllerBangBang,
			BangBang: engine.BangBangConfig{DefaultThreshold: b.DefaultThreshold, Hysteresis: b.Hysteresis},
		}, nil
	default:
		return engine.ControllerConfig{}, fmt.Errorf("configfile: unknown controller kind %q", fc.Kind)
	}
}

func (fr FileRule) toRule() (engine.Rule, error) {
	cond, err := fr.Condition.toBoolExpr()
	if err != nil {
		return engine.Rule{}, fmt.Errorf("configfile: rule %q: %w", fr.ID, err)
	}
	return engine.Rule{ID: fr.ID, Condition: cond, Actions: fr.Actions}, nil
}

func (fc FileComparison) toBoolExpr() (engine.BoolExpr, error) {
	left, err := fc.Left.toSource()
	if err != nil {
		return engine.BoolExpr{}, fmt.Errorf("left: %w", err)
	}
	right, err := fc.Right.toSource()
	if err != nil {
		return engine.BoolExpr{}, fmt.Errorf("right: %w", err)
	}
	op, err := parseComparator(fc.Op)
	if err != nil {
		return engine.BoolExpr{}, err
	}
	return engine.Cmp(left, op, right), nil
}

func parseComparator(op string) (engine.Comparator, error) {
	switch op {
	case "lt":
		return engine.Less, nil
	case "lte":
		return engine.LessOrEqual, nil
	case "gt":
		return engine.Greater, nil
	case "gte":
		return engine.GreaterOrEqual, nil
	case "eq":
		return engine.Equal, nil
	case "neq":
		return engine.NotEqual, nil
	default:
		return 0, fmt.Errorf("configfile: unknown comparator %q", op)
	}
}

func (fs FileSource) toSource() (engine.Source, error) {
	set := 0
	var src engine.Source
	if fs.Input != "" {
		set++
		src = engine.In(fs.Input)
	}
	if fs.Output != "" {
		set++
		src = engine.Out(fs.Output)
	}
	if fs.Memory != "" {
		set++
		src = engine.Mem(fs.Memory)
	}
	if fs.Setpoint != "" {
		set++
		src = engine.Setpoint(fs.Setpoint)
	}
	if fs.Timeout != "" {
		set++
		src = engine.TimeoutRef(fs.Timeout)
	}
	if fs.ConstFloat != nil {
		set++
		src = engine.Const(value.Float64(*fs.ConstFloat))
	}
	if fs.ConstBool != nil {
		set++
		src = engine.Const(value.Bool(*fs.ConstBool))
	}
	if fs.ConstString != nil {
		set++
		src = engine.Const(value.String(*fs.ConstString))
	}
	if set != 1 {
		return engine.Source{}, fmt.Errorf("configfile: source must set exactly one of input/output/memory/setpoint/timeout/const_*, got %d", set)
	}
	return src, nil
}
