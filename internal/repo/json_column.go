package repo

import (
	"encoding/json"
	"fmt"
)

// jsonColumn 将 MySQL JSON 列解码到 dest，NULL 保持零值
type jsonColumn struct {
	dest any
}

// Scan 实现 sql.Scanner
func (c jsonColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, c.dest)
	case string:
		return json.Unmarshal([]byte(v), c.dest)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}

// jsonArgs 将多个值编码为 JSON 字符串参数
func jsonArgs(values ...any) ([]any, error) {
	args := make([]any, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json column: %w", err)
		}
		args[i] = string(data)
	}
	return args, nil
}

// nonNil 让空切片编码为 [] 而不是 null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
