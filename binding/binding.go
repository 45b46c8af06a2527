// Package binding 负责把 JSON 数据填入段落文本与高亮词组中的 ${path} 占位符。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to[0].value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		if val, ok := Lookup(data, pathOf(match)); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// InterpolateAll 对每个字符串执行 Interpolate，返回新切片。
func InterpolateAll(items []string, data any) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = Interpolate(s, data)
	}
	return out
}

// Unresolved 列出 text 中无法从 data 解析的占位符路径，按出现顺序去重。
func Unresolved(text string, data any) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllString(text, -1) {
		path := pathOf(m)
		if _, ok := Lookup(data, path); ok || seen[path] {
			continue
		}
		seen[path] = true
		out = append(out, path)
	}
	return out
}

// Lookup 按点号与下标路径在 JSON 解码后的数据中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			m, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		if rest == "" {
			continue
		}
		for _, idxStr := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

func pathOf(match string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}"))
}
