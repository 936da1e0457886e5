package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectScalar string
		expectList   []string
		expectObject bool
		expectZero   bool
	}{
		{name: "string", input: `"Paris"`, expectScalar: "Paris", expectList: []string{"Paris"}},
		{name: "number", input: `42`, expectScalar: "42", expectList: []string{"42"}},
		{name: "boolean", input: `true`, expectScalar: "true", expectList: []string{"true"}},
		{name: "array", input: `["A", "B", 3, null]`, expectList: []string{"A", "B", "3"}},
		{name: "single element array", input: `["A"]`, expectScalar: "A", expectList: []string{"A"}},
		{name: "object", input: `{"is_correct": true, "text": "essay"}`, expectObject: true},
		{name: "null", input: `null`, expectZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v AnswerValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))

			assert.Equal(t, tt.expectZero, v.IsZero())

			scalar, ok := v.Scalar()
			assert.Equal(t, tt.expectScalar != "", ok)
			assert.Equal(t, tt.expectScalar, scalar)

			list, ok := v.List()
			assert.Equal(t, tt.expectList != nil, ok)
			assert.Equal(t, tt.expectList, list)

			_, ok = v.Object()
			assert.Equal(t, tt.expectObject, ok)
		})
	}
}

func TestAnswerValue_Verdict(t *testing.T) {
	var v AnswerValue
	require.NoError(t, json.Unmarshal([]byte(`{"is_correct": false}`), &v))

	verdict, ok := v.Verdict()
	assert.True(t, ok)
	assert.False(t, verdict)

	_, ok = TextValue("essay").Verdict()
	assert.False(t, ok)

	withVerdict := TextValue("essay").WithVerdict(true)
	verdict, ok = withVerdict.Verdict()
	assert.True(t, ok)
	assert.True(t, verdict)

	obj, _ := withVerdict.Object()
	assert.Equal(t, "essay", obj["value"])
}

func TestAnswerValue_RoundTripKeepsShape(t *testing.T) {
	for _, input := range []string{`"a"`, `["a","b"]`, `{"is_correct":true}`, `null`} {
		var v AnswerValue
		require.NoError(t, json.Unmarshal([]byte(input), &v))
		out, err := json.Marshal(v)
		require.NoError(t, err)
		assert.JSONEq(t, input, string(out))
	}
}

func TestSubmittedAnswer_ElapsedSeconds(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      time.Time
		expected int
	}{
		{name: "whole seconds", end: start.Add(30 * time.Second), expected: 30},
		{name: "floored", end: start.Add(30*time.Second + 900*time.Millisecond), expected: 30},
		{name: "end before start", end: start.Add(-5 * time.Second), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := SubmittedAnswer{TimeStart: start, TimeEnd: tt.end}
			assert.Equal(t, tt.expected, a.ElapsedSeconds())
		})
	}
}

func TestAnswerSpec_Defaults(t *testing.T) {
	var spec AnswerSpec
	require.NoError(t, json.Unmarshal([]byte(`{"correctAnswer": "B", "settings": {}}`), &spec))

	assert.Equal(t, StringList{"B"}, spec.CorrectAnswer)
	assert.Equal(t, DefaultCorrectScore, spec.Settings.CorrectPoints())
	assert.Equal(t, DefaultIncorrectScore, spec.Settings.IncorrectPoints())

	require.NoError(t, json.Unmarshal([]byte(`{"correctAnswer": ["A","C"], "settings": {"correctScore": 5, "incorrectScore": -1}}`), &spec))
	assert.Equal(t, StringList{"A", "C"}, spec.CorrectAnswer)
	assert.Equal(t, 5, spec.Settings.CorrectPoints())
	assert.Equal(t, -1, spec.Settings.IncorrectPoints())
}

func TestQuestion_ToDefinition(t *testing.T) {
	q := Question{
		ID:        7,
		Text:      "Capital of France?",
		Type:      SingleChoice,
		Answer:    []byte(`{"correctAnswer": ["Paris"], "allAnswer": ["Paris", "Rome"]}`),
		TimeLimit: 20,
	}

	def, err := q.ToDefinition()
	require.NoError(t, err)
	assert.Equal(t, uint(7), def.ID)
	assert.Equal(t, SingleChoice, def.Type)
	assert.Equal(t, StringList{"Paris"}, def.Answer.CorrectAnswer)
	assert.Equal(t, StringList{"Paris", "Rome"}, def.Answer.AllAnswer)
	assert.Equal(t, 20, def.TimeLimit)

	q.Answer = []byte(`not json`)
	def, err = q.ToDefinition()
	assert.Error(t, err)
	assert.Equal(t, uint(7), def.ID)
	assert.NotEmpty(t, def.SpecError)
	assert.Empty(t, def.Answer.CorrectAnswer)
}

func TestAnswerSettings_LenientScores(t *testing.T) {
	tests := []struct {
		name            string
		settings        string
		expectCorrect   int
		expectIncorrect int
	}{
		{name: "integers", settings: `{"correctScore": 3, "incorrectScore": -1}`, expectCorrect: 3, expectIncorrect: -1},
		{name: "whole floats", settings: `{"correctScore": 2.0, "incorrectScore": -1.0}`, expectCorrect: 2, expectIncorrect: -1},
		{name: "numeric strings", settings: `{"correctScore": "2", "incorrectScore": " -1 "}`, expectCorrect: 2, expectIncorrect: -1},
		{name: "fractional score uses default", settings: `{"correctScore": 2.5}`, expectCorrect: 1, expectIncorrect: 0},
		{name: "word uses default", settings: `{"correctScore": "two", "incorrectScore": true}`, expectCorrect: 1, expectIncorrect: 0},
		{name: "null uses default", settings: `{"correctScore": null}`, expectCorrect: 1, expectIncorrect: 0},
		{name: "settings not an object", settings: `"none"`, expectCorrect: 1, expectIncorrect: 0},
		{name: "missing keys", settings: `{}`, expectCorrect: 1, expectIncorrect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Question{
				ID:     3,
				Type:   SingleChoice,
				Answer: []byte(`{"correctAnswer": ["A"], "settings": ` + tt.settings + `}`),
			}

			def, err := q.ToDefinition()
			require.NoError(t, err)
			assert.Empty(t, def.SpecError)
			assert.Equal(t, StringList{"A"}, def.Answer.CorrectAnswer)
			assert.Equal(t, tt.expectCorrect, def.Answer.Settings.CorrectPoints())
			assert.Equal(t, tt.expectIncorrect, def.Answer.Settings.IncorrectPoints())
		})
	}
}
