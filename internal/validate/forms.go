package validate

import "regexp"

// フォームフィールドの上限長。
// 境界値はちょうど上限までを許容し、1文字超過で拒否する（切り詰めはしない）。
const (
	MaxNameLen     = 20
	MaxEmailLen    = 64
	MaxPasswordLen = 20
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// SignupSchema はサインアップフォームのスキーマを返す。
func SignupSchema() *Schema {
	return &Schema{
		Name: "signup",
		Fields: map[string]FieldRule{
			"name":     {Required: true, MaxLen: MaxNameLen, Pattern: namePattern},
			"email":    {Required: true, MaxLen: MaxEmailLen, Pattern: emailPattern},
			"password": {Required: true, MaxLen: MaxPasswordLen},
		},
	}
}

// LoginSchema はログインフォームのスキーマを返す。
func LoginSchema() *Schema {
	return &Schema{
		Name: "login",
		Fields: map[string]FieldRule{
			"email":    {Required: true, MaxLen: MaxEmailLen, Pattern: emailPattern},
			"password": {Required: true, MaxLen: MaxPasswordLen},
		},
	}
}

// ProbeSchema は診断エンドポイントのクエリパラメータスキーマを返す。
// user は英数字のみの有界な文字列でなければならない。
func ProbeSchema() *Schema {
	return &Schema{
		Name: "probe",
		Fields: map[string]FieldRule{
			"user": {Required: true, MaxLen: MaxNameLen, Pattern: namePattern},
		},
	}
}
