/*
 * @module service/entity/validation
 * @description 名称类字段的规范化与校验，写操作前在服务层执行
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/entity_design.md
 * @stateFlow 去首尾空白 -> NFC规范化 -> 长度/字符集/连续空格校验 -> 唯一性检查
 * @rules 名称唯一性忽略大小写，长度2-100字符，禁止连续空格
 * @dependencies golang.org/x/text/unicode/norm, github.com/lib/pq
 * @refs service/entity/service.go
 */

package entity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	// NameMinLen 名称最小长度（按字符计）
	NameMinLen = 2
	// NameMaxLen 名称最大长度（按字符计）
	NameMaxLen = 100
)

// 名称允许的字符集：字母、数字、空格与常见标点
var nameCharset = regexp.MustCompile(`^[\p{L}\p{N} ()\[\]._+/-]+$`)

// NormalizeName 去首尾空白并做NFC规范化
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// ValidateName 校验已规范化的名称
func ValidateName(field, name string) error {
	n := utf8.RuneCountInString(name)
	if n < NameMinLen || n > NameMaxLen {
		return NewValidationError(field, fmt.Sprintf("长度必须在%d-%d个字符之间", NameMinLen, NameMaxLen))
	}
	if strings.Contains(name, "  ") {
		return NewValidationError(field, "不允许包含连续空格")
	}
	if !nameCharset.MatchString(name) {
		return NewValidationError(field, "包含不允许的字符")
	}
	return nil
}

// NameExists 忽略大小写的名称唯一性检查，excludeKey 非空时排除自身（更新场景）
func NameExists(db *gorm.DB, table, column, keyColumn string, name string, excludeKey interface{}) (bool, error) {
	query := db.Table(table).
		Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", pq.QuoteIdentifier(column)), name)
	if excludeKey != nil {
		query = query.Where(fmt.Sprintf("%s <> ?", pq.QuoteIdentifier(keyColumn)), excludeKey)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
