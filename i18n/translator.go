package i18n

import (
	"fmt"
	"strings"
)

// Translator retrieves localized messages for violation codes.
// data provides optional values to embed in the message (for example,
// "expected" or "target").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "unknown_entity_type":
			msg = "プロファイル {profile} に型 {type} のスキーマが登録されていません"
		case "schema_violation":
			msg = "型 {type} のスキーマで宣言されていないプロパティです"
		case "missing_required_property":
			msg = "必須プロパティが不足しています"
		case "type_mismatch":
			msg = "期待される型は {expected} ですが {actual} が指定されています"
		case "constraint_failed":
			msg = "制約を満たしていません: {note}"
		case "dangling_reference":
			msg = "参照先エンティティ {target} がクレートに存在しません"
		case "duplicate_id":
			msg = "ID {id} は既にクレートに存在します"
		}
	default: // "en"
		switch code {
		case "unknown_entity_type":
			msg = "no schema is registered for type {type} in profile {profile}"
		case "schema_violation":
			msg = "property is not declared in the schema for {type}"
		case "missing_required_property":
			msg = "required property is missing"
		case "type_mismatch":
			msg = "expected {expected} but got {actual}"
		case "constraint_failed":
			msg = "constraint not satisfied: {note}"
		case "dangling_reference":
			msg = "referenced entity {target} is not in the crate"
		case "duplicate_id":
			msg = "id {id} is already in the crate"
		}
	}
	if msg == "" {
		return code
	}
	return interpolate(msg, data)
}

func interpolate(msg string, data map[string]string) string {
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language. Only "en" and
// "ja" dictionaries are built in; other values are an error.
func SetLanguage(lang string) error {
	switch lang {
	case "en", "ja":
		currentTranslator = dictTranslator{lang: lang}
		return nil
	}
	return fmt.Errorf("unsupported language: %q", lang)
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
