package renderer

import "github.com/ByLCY/wordsdisplay/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF 或终端文本。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责测量与绘制：布局阶段用它测量片段，渲染阶段用同一套字体绘制。
// Unit 声明布局长度应换算到的单位。
type Backend interface {
	Renderer
	layout.Typesetter
	Unit() layout.Unit
}
