// Package validate 表單欄位驗證的共用錯誤型別
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// EmailPattern 只檢查格式大致合理
var EmailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidationError 欄位 -> 錯誤訊息
type ValidationError struct {
	Scope  string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid %s fields: %s", e.Scope, strings.Join(names, ", "))
}

type Collector struct {
	scope  string
	fields map[string]string
}

func NewCollector(scope string) *Collector {
	return &Collector{scope: scope, fields: map[string]string{}}
}

func (c *Collector) Required(field, value, message string) bool {
	if strings.TrimSpace(value) == "" {
		c.fields[field] = message
		return false
	}
	return true
}

func (c *Collector) Email(field, value string) {
	if !c.Required(field, value, "Email is required") {
		return
	}
	if !EmailPattern.MatchString(value) {
		c.fields[field] = "Email is invalid"
	}
}

func (c *Collector) Add(field, message string) {
	c.fields[field] = message
}

// Err 沒有錯誤時回傳 nil
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Scope: c.scope, Fields: c.fields}
}
