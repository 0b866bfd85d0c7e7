// Package input turns an untrusted raw situation record into the canonical
// typed record. Normalization never fails: anything missing, mistyped or out
// of range is replaced by a documented default or clamped.
package input

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// #region normalize

// Normalize sanitizes raw into a complete, in-range Canonical record.
// raw is usually a map[string]any decoded from JSON, YAML or a protobuf Struct;
// map[any]any with string keys is read the same way. Any other value
// normalizes to the all-defaults record.
func Normalize(raw any) Canonical {
	var c Canonical

	for _, nf := range numericFields {
		v, ok := toFloat(lookup(raw, string(nf.field)))
		if !ok {
			v = nf.fallback
		}
		*nf.ref(&c) = clamp01(v)
	}

	c.Communication.ChannelType = oneOf(lookup(raw, "communication.channel_type"), ChannelTypes, ChannelText)
	c.Intent.GoalType = oneOf(lookup(raw, "intent.goal_type"), GoalTypes, GoalClarify)
	c.Intent.RelationshipGoal = oneOf(lookup(raw, "intent.relationship_goal"), RelationshipGoals, RelationshipMaintain)
	c.Intent.DesiredAction = oneOf(lookup(raw, "intent.desired_action"), DesiredActions, ActionReply)
	c.Facts.EvidenceStrength = oneOf(lookup(raw, "facts.evidence_strength"), EvidenceStrengths, EvidencePartial)
	c.Facts.FactualSummary = toText(lookup(raw, "facts.factual_summary"))

	return c
}

// Defaults returns the record produced for an empty raw input.
func Defaults() Canonical {
	return Normalize(nil)
}

// #endregion normalize

// #region helpers

// lookup walks a dotted path through nested maps. map[any]any, as produced by
// yaml.v2 and hand-built records, is read through its string keys.
// Returns nil when any segment is missing or not a map.
func lookup(raw any, path string) any {
	cur := raw
	for _, part := range strings.Split(path, ".") {
		var ok bool
		switch m := cur.(type) {
		case map[string]any:
			cur, ok = m[part]
		case map[any]any:
			cur, ok = m[part]
		}
		if !ok {
			return nil
		}
	}
	return cur
}

// toFloat accepts Go numeric kinds and json.Number. NaN is rejected.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// oneOf keeps v only if it is a string naming a member of allowed.
func oneOf[T ~string](v any, allowed []T, fallback T) T {
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	for _, a := range allowed {
		if string(a) == s {
			return a
		}
	}
	return fallback
}

// Member reports whether v is one of allowed.
func Member[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// toText coerces scalars to a string; composites and nil become "".
func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// clamp01 restricts v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
