package models

import "strings"

// ResidentRecord 住户名册中的一行，加载后只读
type ResidentRecord struct {
	Building   string `json:"building"`
	FlatNo     string `json:"flatNo"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

// MaskedName 返回用于预填的脱敏姓名，中间名不参与
func (r ResidentRecord) MaskedName() string {
	first := []rune(strings.TrimSpace(r.FirstName))
	last := []rune(strings.TrimSpace(r.LastName))
	if len(first) > 4 {
		first = first[:4]
	}
	if len(last) > 2 {
		last = last[len(last)-2:]
	}
	return strings.ToUpper(string(first) + "..." + string(last))
}
