// Package validate はフォーム入力のスキーマベース検証を提供する。
// 許可フィールドの列挙、長さ・形式制約の検査に加えて、
// 演算子インジェクション型のペイロード（構造化された値や
// ブラケット付きキー）の検出を行う。検証は同期的で副作用を持たない。
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ViolationKind は検証違反の種別を表す。
type ViolationKind string

const (
	// ViolationMissing は必須フィールドの欠落を表す。
	ViolationMissing ViolationKind = "missing"
	// ViolationMalformed はパターン不一致を表す。
	ViolationMalformed ViolationKind = "malformed"
	// ViolationTooLong は最大長超過を表す。
	ViolationTooLong ViolationKind = "too_long"
	// ViolationNotScalar はスカラー文字列でない値（同一キーの重複送信等）を表す。
	// 構造化ペイロードをフィールド値として偽装する攻撃の防御。
	ViolationNotScalar ViolationKind = "not_scalar"
	// ViolationUnknown はスキーマに存在しないフィールドの送信を表す。
	ViolationUnknown ViolationKind = "unknown_field"
)

// Violation は1件のフィールド検証違反を表す。
type Violation struct {
	Field string
	Kind  ViolationKind
}

// Message は違反内容の日本語メッセージを返す。
func (v Violation) Message() string {
	switch v.Kind {
	case ViolationMissing:
		return fmt.Sprintf("%s は必須です。", v.Field)
	case ViolationMalformed:
		return fmt.Sprintf("%s の形式が正しくありません。", v.Field)
	case ViolationTooLong:
		return fmt.Sprintf("%s が長すぎます。", v.Field)
	case ViolationNotScalar:
		return fmt.Sprintf("%s には単一の文字列を指定してください。", v.Field)
	case ViolationUnknown:
		return fmt.Sprintf("%s は許可されていないフィールドです。", v.Field)
	default:
		return fmt.Sprintf("%s が不正です。", v.Field)
	}
}

// FieldRule は1フィールドの検証ルールを表す。
type FieldRule struct {
	Required bool
	MaxLen   int
	Pattern  *regexp.Regexp // nilの場合はパターン検査をスキップ
}

// Schema は名前付きフォームスキーマを表す。
// フィールド名 → ルールの列挙。スキーマにないフィールドは拒否される。
type Schema struct {
	Name   string
	Fields map[string]FieldRule
}

// Validate は送信されたフォーム値をスキーマに照らして検証し、
// 違反の一覧をフィールド名順で返す。違反がなければ空スライスを返す。
// すべての違反を集約して返す（最初の1件で打ち切らない）。
func (s *Schema) Validate(values url.Values) []Violation {
	var violations []Violation

	// スキーマ外のフィールドを拒否
	for field := range values {
		if _, ok := s.Fields[field]; !ok {
			violations = append(violations, Violation{Field: field, Kind: ViolationUnknown})
		}
	}

	for field, rule := range s.Fields {
		vs, ok := values[field]

		if !ok || (len(vs) == 1 && vs[0] == "") {
			if rule.Required {
				violations = append(violations, Violation{Field: field, Kind: ViolationMissing})
			}
			continue
		}

		// 同一キーの重複送信はスカラー文字列ではない
		if len(vs) != 1 {
			violations = append(violations, Violation{Field: field, Kind: ViolationNotScalar})
			continue
		}

		value := vs[0]

		if rule.MaxLen > 0 && len(value) > rule.MaxLen {
			violations = append(violations, Violation{Field: field, Kind: ViolationTooLong})
			continue
		}

		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			violations = append(violations, Violation{Field: field, Kind: ViolationMalformed})
		}
	}

	// 出力順を安定させる
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Field != violations[j].Field {
			return violations[i].Field < violations[j].Field
		}
		return violations[i].Kind < violations[j].Kind
	})

	return violations
}

// DetectInjection は送信パラメータに演算子インジェクション型の
// ペイロードが含まれるかを判定する。fieldに対して、
// `field[$ne]` のようなブラケット付きキーや、値中の演算子構文を検出する。
// 検出された入力はストアへのクエリに使用してはならない。
func DetectInjection(values url.Values, field string) bool {
	for key := range values {
		if key == field {
			continue
		}
		// クエリ文字列パーサーが field[$ne]=x を独立キーとして展開した形
		if strings.HasPrefix(key, field+"[") {
			return true
		}
	}

	for _, v := range values[field] {
		if strings.ContainsAny(v, "${}[]") {
			return true
		}
	}

	return false
}
