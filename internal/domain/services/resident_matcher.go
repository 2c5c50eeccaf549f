package services

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"vdp-support-service/internal/domain/models"
)

// 只去掉一个开头的称谓，称谓后必须跟空白
var honorificPrefix = regexp.MustCompile(`^(mr|mrs|ms|smt|shree|shri|sh|dr|late)\.?\s+`)

// NormalizeName 转小写、去掉开头的称谓并去除首尾空白
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(name))
	s = honorificPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// MaskName 生成脱敏姓名：名取前4个字符，姓取后2个字符，转为大写
func MaskName(firstName, lastName string) string {
	return models.ResidentRecord{FirstName: firstName, LastName: lastName}.MaskedName()
}

// foldKey 大小写折叠后去除首尾空白，用于楼栋与房号比较
func foldKey(s string) string {
	return strings.TrimSpace(cases.Fold().String(s))
}

// MatchResident 返回第一个楼栋与房号完全一致（忽略大小写和首尾空白）的住户。
// 不做模糊匹配，未命中时返回 false。
func MatchResident(records []models.ResidentRecord, building, flatNo string) (models.ResidentRecord, bool) {
	b := foldKey(building)
	f := foldKey(flatNo)
	for _, r := range records {
		if foldKey(r.Building) == b && foldKey(r.FlatNo) == f {
			return r, true
		}
	}
	return models.ResidentRecord{}, false
}

// FindResidentsByName 按规范化后的姓名查找住户，名或 "名 姓" 任一相同即命中
func FindResidentsByName(records []models.ResidentRecord, name string) []models.ResidentRecord {
	target := NormalizeName(name)
	if target == "" {
		return nil
	}
	var found []models.ResidentRecord
	for _, r := range records {
		first := NormalizeName(r.FirstName)
		full := NormalizeName(strings.TrimSpace(r.FirstName + " " + r.LastName))
		if first == target || full == target {
			found = append(found, r)
		}
	}
	return found
}
