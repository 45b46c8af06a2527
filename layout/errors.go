package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrUnplaceableSegment 表示某个片段的宽度超过了内容区宽度，无论怎样换行都放不下。
	ErrUnplaceableSegment = errors.New("segment wider than content area")
	// ErrInvalidConfig 表示排版配置不合法，应在创建 Engine 时暴露。
	ErrInvalidConfig = errors.New("invalid layout config")
)

// ErrorKind 区分排版错误类别。
type ErrorKind string

const (
	KindUnplaceableSegment ErrorKind = "unplaceable-segment"
)

// LayoutError 描述一次排版失败，可通过 errors.As 取得具体片段与宽度信息。
type LayoutError struct {
	Kind      ErrorKind
	Segment   Segment
	Width     float64 // 片段测量宽度
	Available float64 // 内容区可用宽度
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("内容区宽度 %g 放不下片段 %q（宽度 %g），会导致无限换行", e.Available, e.Segment.Value, e.Width)
}

// Is 让 errors.Is(err, ErrUnplaceableSegment) 对 *LayoutError 成立。
func (e *LayoutError) Is(target error) bool {
	return e.Kind == KindUnplaceableSegment && target == ErrUnplaceableSegment
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
