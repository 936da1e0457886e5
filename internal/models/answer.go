package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SubmittedAnswer is one learner answer as received from the client.
type SubmittedAnswer struct {
	QuestionID uint        `json:"question_id" validate:"required"`
	Value      AnswerValue `json:"value"`
	TimeStart  time.Time   `json:"time_start" validate:"required"`
	TimeEnd    time.Time   `json:"time_end" validate:"required,gtefield=TimeStart"`
}

// ElapsedSeconds is the whole number of seconds spent on the answer. An end time
// before the start time counts as zero.
func (a SubmittedAnswer) ElapsedSeconds() int {
	return SecondsBetween(a.TimeStart, a.TimeEnd)
}

// SecondsBetween returns the whole seconds from start to end, never negative.
func SecondsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / time.Second)
}

// AnswerValue is the polymorphic answer payload. Exactly one of the text, list or
// object forms is set after decoding; the zero value is an absent answer.
type AnswerValue struct {
	text   *string
	items  []string
	isList bool
	object map[string]any
}

func TextValue(s string) AnswerValue {
	return AnswerValue{text: &s}
}

func ListValue(items ...string) AnswerValue {
	if items == nil {
		items = []string{}
	}
	return AnswerValue{items: items, isList: true}
}

// ObjectValue wraps a free-form object payload such as the one carrying a manual
// verdict in "is_correct".
func ObjectValue(obj map[string]any) AnswerValue {
	if obj == nil {
		obj = map[string]any{}
	}
	return AnswerValue{object: obj}
}

func (v AnswerValue) IsZero() bool {
	return v.text == nil && !v.isList && v.object == nil
}

// Scalar returns the single submitted value. A one-element list is accepted as a scalar.
func (v AnswerValue) Scalar() (string, bool) {
	switch {
	case v.text != nil:
		return *v.text, true
	case v.isList && len(v.items) == 1:
		return v.items[0], true
	}
	return "", false
}

// List returns the submitted selections. A scalar is treated as a single selection.
func (v AnswerValue) List() ([]string, bool) {
	switch {
	case v.isList:
		return v.items, true
	case v.text != nil:
		return []string{*v.text}, true
	}
	return nil, false
}

func (v AnswerValue) Object() (map[string]any, bool) {
	return v.object, v.object != nil
}

// Verdict returns the manual "is_correct" flag carried by an object payload.
func (v AnswerValue) Verdict() (bool, bool) {
	if v.object == nil {
		return false, false
	}
	verdict, ok := v.object[FieldIsCorrect].(bool)
	return verdict, ok
}

// WithVerdict returns a copy of the payload carrying the given manual verdict. Text
// and list payloads are preserved under the "value" key.
func (v AnswerValue) WithVerdict(correct bool) AnswerValue {
	obj := make(map[string]any, len(v.object)+2)
	for k, val := range v.object {
		obj[k] = val
	}
	if v.object == nil && !v.IsZero() {
		obj["value"] = v.Echo()
	}
	obj[FieldIsCorrect] = correct
	return ObjectValue(obj)
}

// Echo returns the payload in its decoded JSON form for use in check details.
func (v AnswerValue) Echo() any {
	switch {
	case v.text != nil:
		return *v.text
	case v.isList:
		out := make([]string, len(v.items))
		copy(out, v.items)
		return out
	case v.object != nil:
		out := make(map[string]any, len(v.object))
		for k, val := range v.object {
			out[k] = val
		}
		return out
	}
	return nil
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Echo())
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	*v = AnswerValue{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid answer list: %w", err)
		}
		items := make([]string, 0, len(raw))
		for _, item := range raw {
			if item == nil {
				continue
			}
			items = append(items, stringify(item))
		}
		*v = ListValue(items...)
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("invalid answer object: %w", err)
		}
		*v = ObjectValue(obj)
	default:
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return fmt.Errorf("invalid answer value: %w", err)
		}
		*v = TextValue(stringify(scalar))
	}
	return nil
}

// StringList decodes either a JSON array or a bare scalar into a list of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, ok := raw.([]any)
	if !ok {
		*l = StringList{stringify(raw)}
		return nil
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, stringify(item))
	}
	*l = out
	return nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
