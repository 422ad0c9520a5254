package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type AnswerKind string

const (
	AnswerKindNull   AnswerKind = "null"
	AnswerKindString AnswerKind = "string"
	AnswerKindNumber AnswerKind = "number"
	AnswerKindBool   AnswerKind = "bool"
	AnswerKindList   AnswerKind = "list"
	AnswerKindMedia  AnswerKind = "media"
)

// Media is an uploaded asset referenced from logs and answers.
type Media struct {
	Type    string `json:"type"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

// Answer holds a prompt answer: a string, number, bool, list of strings,
// media asset, or null. The zero value is null.
type Answer struct {
	kind  AnswerKind
	str   string
	num   float64
	flag  bool
	list  []string
	media Media
}

func StringAnswer(v string) Answer  { return Answer{kind: AnswerKindString, str: v} }
func NumberAnswer(v float64) Answer { return Answer{kind: AnswerKindNumber, num: v} }
func BoolAnswer(v bool) Answer      { return Answer{kind: AnswerKindBool, flag: v} }
func ListAnswer(v ...string) Answer { return Answer{kind: AnswerKindList, list: v} }
func MediaAnswer(m Media) Answer    { return Answer{kind: AnswerKindMedia, media: m} }

func (a Answer) Kind() AnswerKind { return a.kindOrNull() }

func (a Answer) IsNull() bool { return a.kindOrNull() == AnswerKindNull }

func (a Answer) Text() (string, bool) { return a.str, a.kind == AnswerKindString }

func (a Answer) Number() (float64, bool) { return a.num, a.kind == AnswerKindNumber }

func (a Answer) Bool() (bool, bool) { return a.flag, a.kind == AnswerKindBool }

func (a Answer) List() ([]string, bool) { return a.list, a.kind == AnswerKindList }

func (a Answer) Media() (Media, bool) { return a.media, a.kind == AnswerKindMedia }

func (a Answer) kindOrNull() AnswerKind {
	if a.kind == "" {
		return AnswerKindNull
	}
	return a.kind
}

// Values flattens string, bool and list answers into histogram keys.
func (a Answer) Values() []string {
	switch a.kind {
	case AnswerKindString:
		return []string{a.str}
	case AnswerKindBool:
		return []string{strconv.FormatBool(a.flag)}
	case AnswerKindList:
		return a.list
	case AnswerKindNumber:
		return []string{strconv.FormatFloat(a.num, 'f', -1, 64)}
	}
	return nil
}

// Equal compares the answer with a loosely typed value, as found in
// prompt dependency rules decoded from JSON.
func (a Answer) Equal(v any) bool {
	switch want := v.(type) {
	case nil:
		return a.IsNull()
	case string:
		if s, ok := a.Text(); ok {
			return s == want
		}
		if list, ok := a.List(); ok {
			for _, item := range list {
				if item == want {
					return true
				}
			}
		}
		if b, ok := a.Bool(); ok {
			return strconv.FormatBool(b) == want
		}
	case bool:
		b, ok := a.Bool()
		return ok && b == want
	case float64:
		n, ok := a.Number()
		return ok && n == want
	case int:
		n, ok := a.Number()
		return ok && n == float64(want)
	}
	return false
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerKindString:
		return json.Marshal(a.str)
	case AnswerKindNumber:
		return json.Marshal(a.num)
	case AnswerKindBool:
		return json.Marshal(a.flag)
	case AnswerKindList:
		if a.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.list)
	case AnswerKindMedia:
		return json.Marshal(a.media)
	}
	return []byte("null"), nil
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Answer{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = StringAnswer(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = BoolAnswer(b)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("answer list must hold strings: %w", err)
		}
		*a = ListAnswer(list...)
	case '{':
		var m Media
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*a = MediaAnswer(m)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer %s: %w", data, err)
		}
		*a = NumberAnswer(n)
	}
	return nil
}
