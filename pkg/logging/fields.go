package logging

import "time"

// Generic field constructors.

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Domain field helpers for the synthesis pipeline.

func Component(name string) Field { return String("component", name) }

func TaskName(name string) Field { return String("task", name) }

func SeedName(name string) Field { return String("seed", name) }

func RuleID(id string) Field { return String("rule_id", id) }

func EFID(id string) Field { return String("ef_id", id) }

func Iteration(n int) Field { return Int("iteration", n) }

func Cost(g int) Field { return Int("cost", g) }

func DOF(dof int) Field { return Int("dof", dof) }

func Latency(d time.Duration) Field { return Duration("latency", d) }

func Count(n int) Field { return Int("count", n) }
