package models

import "time"

// Snapshot is a full field-level snapshot of one document version.
// Values are opaque to the sync engine except for the conflict-sensitive
// fields, which are read through the typed accessors below. Snapshots
// round-trip through JSON, so a time value may arrive either as a
// time.Time (in-process) or as an RFC 3339 string (deserialized).
type Snapshot map[string]any

// Field names the engine treats as conflict-sensitive for relationship
// documents, plus the bookkeeping fields used by the merge strategies.
const (
	FieldRelationshipHealth    = "relationshipHealth"
	FieldLastContact           = "lastContact"
	FieldNotes                 = "notes"
	FieldRelationshipIntensity = "relationshipIntensity"

	// FieldInteractionType discriminates append-only interaction records.
	FieldInteractionType = "type"

	// FieldTimestamp is the record-local event time carried by
	// interaction records.
	FieldTimestamp = "timestamp"

	// FieldID is the document identifier embedded in interaction payloads.
	FieldID = "id"

	// FieldOriginDevice is stamped on every document the engine writes.
	// It identifies which device produced the stored version, so a device
	// replaying its own in-order history never conflicts with itself.
	FieldOriginDevice = "originDeviceId"
)

// Clone returns a shallow copy of the snapshot. A nil snapshot clones to nil.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}

	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns the string value stored under key, or "" if the key is
// absent or holds a non-string value.
func (s Snapshot) String(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer value stored under key. JSON decoding produces
// float64 for all numbers, so both int and float64 representations are
// accepted. The second return value reports whether a numeric value was
// present.
func (s Snapshot) Int(key string) (int, bool) {
	switch v := s[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// Time returns the time value stored under key. Accepts time.Time values
// and RFC 3339 strings. The second return value reports whether a valid
// time was present.
func (s Snapshot) Time(key string) (time.Time, bool) {
	switch v := s[key].(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}
