package layout

import (
	"encoding/json"
	"io"
	"os"
)

// debugBlock 在调试 JSON 中附带错误文本，Block.Err 本身不参与序列化。
type debugBlock struct {
	Block
	Error string `json:"error,omitempty"`
}

type debugResult struct {
	Result
	Blocks []debugBlock `json:"blocks"`
}

// EncodeDebug 将布局结果以缩进 JSON 写入 w，便于调试或可视化。
func EncodeDebug(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	out := debugResult{Result: *res, Blocks: make([]debugBlock, len(res.Blocks))}
	for i, b := range res.Blocks {
		out.Blocks[i] = debugBlock{Block: b}
		if b.Err != nil {
			out.Blocks[i].Error = b.Err.Error()
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteDebugJSON 将布局结果输出为 JSON 文件。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebug(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
