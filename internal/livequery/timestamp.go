package livequery

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimestampKind tags which representation a stored date arrived in.
type TimestampKind int

const (
	Missing TimestampKind = iota
	NativeDate
	RawString
)

func (k TimestampKind) String() string {
	switch k {
	case NativeDate:
		return "native"
	case RawString:
		return "string"
	default:
		return "missing"
	}
}

// DateConverter is implemented by server-side timestamp wrappers that know
// how to turn themselves into a date.
type DateConverter interface {
	ToDate() time.Time
}

// Timestamp is a stored date in one of three shapes. Every timestamp field of
// every record goes through Resolve; nothing probes raw values directly.
type Timestamp struct {
	kind TimestampKind
	t    time.Time
	raw  string
}

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ClassifyTime tags a raw value. Conversion capability wins over the native
// type check, which wins over string parsing.
func ClassifyTime(v interface{}) Timestamp {
	switch x := v.(type) {
	case nil:
		return Timestamp{}
	case DateConverter:
		return nativeOrMissing(x.ToDate())
	case primitive.DateTime:
		return nativeOrMissing(x.Time())
	case primitive.Timestamp:
		if x.T == 0 && x.I == 0 {
			return Timestamp{}
		}
		return nativeOrMissing(time.Unix(int64(x.T), 0))
	case time.Time:
		return nativeOrMissing(x)
	case *time.Time:
		if x == nil {
			return Timestamp{}
		}
		return nativeOrMissing(*x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return Timestamp{}
		}
		return Timestamp{kind: RawString, raw: s}
	default:
		return Timestamp{}
	}
}

func nativeOrMissing(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{kind: NativeDate, t: t}
}

// NativeTime wraps an in-memory date.
func NativeTime(t time.Time) Timestamp {
	return nativeOrMissing(t)
}

// Kind reports the tag.
func (ts Timestamp) Kind() TimestampKind {
	return ts.kind
}

// Resolve returns the date and true, or false when there is no usable date.
// An unparseable string resolves to false rather than to an invalid date.
func (ts Timestamp) Resolve() (time.Time, bool) {
	switch ts.kind {
	case NativeDate:
		return ts.t, true
	case RawString:
		for _, layout := range stringLayouts {
			if t, err := time.Parse(layout, ts.raw); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Ptr is Resolve shaped for JSON-facing records: nil when absent.
func (ts Timestamp) Ptr() *time.Time {
	t, ok := ts.Resolve()
	if !ok {
		return nil
	}
	return &t
}

// NormalizeTime applies the classification and resolution in one step.
func NormalizeTime(v interface{}) *time.Time {
	return ClassifyTime(v).Ptr()
}

// serverTimestamp is the {seconds, nanoseconds} document some exports and
// client SDKs write in place of a BSON date.
type serverTimestamp struct {
	Seconds     int64 `bson:"seconds"`
	Nanoseconds int64 `bson:"nanoseconds"`
}

func (s serverTimestamp) ToDate() time.Time {
	return time.Unix(s.Seconds, s.Nanoseconds)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (ts *Timestamp) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.DateTime:
		*ts = ClassifyTime(primitive.DateTime(rv.DateTime()))
	case bsontype.Timestamp:
		sec, inc := rv.Timestamp()
		*ts = ClassifyTime(primitive.Timestamp{T: sec, I: inc})
	case bsontype.String:
		*ts = ClassifyTime(rv.StringValue())
	case bsontype.EmbeddedDocument:
		var st serverTimestamp
		if err := rv.Unmarshal(&st); err != nil || (st.Seconds == 0 && st.Nanoseconds == 0) {
			*ts = Timestamp{}
			return nil
		}
		*ts = ClassifyTime(st)
	default:
		*ts = Timestamp{}
	}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler. Strings are written back
// unchanged so a round trip does not rewrite legacy data.
func (ts Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	switch ts.kind {
	case NativeDate:
		return bson.MarshalValue(ts.t)
	case RawString:
		return bson.MarshalValue(ts.raw)
	default:
		return bsontype.Null, nil, nil
	}
}
