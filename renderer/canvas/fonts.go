package canvasrenderer

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/wordsdisplay/fonts"
	"github.com/ByLCY/wordsdisplay/layout"
)

// fontBook 按 name|src|style 缓存已加载的字体族。
// 无法加载的字体统一退回内置的 go-regular，并记录一条警告。
type fontBook struct {
	baseDir  string
	injected map[string][]byte
	logger   zerolog.Logger

	mu       sync.Mutex
	families map[string]loadedFamily
	fallback *canvas.FontFamily
}

type loadedFamily struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

func newFontBook(baseDir string, resources map[string]Resource, logger zerolog.Logger) *fontBook {
	b := &fontBook{
		baseDir:  baseDir,
		injected: map[string][]byte{},
		logger:   logger,
		families: map[string]loadedFamily{},
	}
	for name, res := range resources {
		switch {
		case name == "":
		case len(res.Bytes) > 0:
			b.injected[name] = res.Bytes
		case res.Path != "":
			data, err := os.ReadFile(res.Path)
			if err != nil {
				logger.Warn().Err(err).Str("font", name).Msg("读取注入字体失败")
				continue
			}
			b.injected[name] = data
		}
	}
	return b
}

// face 返回指定字号（pt）与颜色的字体面。
func (b *fontBook) face(font layout.FontResource, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	f, err := b.family(font)
	if err != nil {
		return nil, err
	}
	return f.family.Face(sizePt, colorFromLayout(col), f.style, canvas.FontNormal), nil
}

func (b *fontBook) family(font layout.FontResource) (loadedFamily, error) {
	key := fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
	b.mu.Lock()
	defer b.mu.Unlock()

	if f, ok := b.families[key]; ok {
		return f, nil
	}

	name := font.Name
	if name == "" {
		name = "Body"
	}
	f := loadedFamily{family: canvas.NewFontFamily(name), style: parseFontStyle(font.Style)}
	data, err := b.bytes(font)
	if err == nil {
		err = f.family.LoadFont(data, 0, f.style)
	}
	if err != nil {
		fb, fbErr := b.fallbackFamily()
		if fbErr != nil {
			return loadedFamily{}, err
		}
		b.logger.Warn().Err(err).Str("src", font.Src).Msg("加载字体失败，改用内置字体")
		f = loadedFamily{family: fb, style: canvas.FontRegular}
	}
	b.families[key] = f
	return f, nil
}

// bytes 解析字体来源：builtin:<name> 先查注入资源再查内置字体，其余按文件路径读取。
func (b *fontBook) bytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	if fonts.IsBuiltin(src) {
		if blob, ok := b.injected[strings.TrimPrefix(src, fonts.Prefix)]; ok {
			return blob, nil
		}
		return fonts.Load(src)
	}
	if b.baseDir == "" && !filepath.IsAbs(src) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(src) {
		src = filepath.Join(b.baseDir, src)
	}
	return os.ReadFile(src)
}

func (b *fontBook) fallbackFamily() (*canvas.FontFamily, error) {
	if b.fallback != nil {
		return b.fallback, nil
	}
	data, err := fonts.Load("builtin:go-regular")
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("wordsdisplay-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	b.fallback = family
	return family, nil
}

// parseFontStyle 把 "bold italic"、"light" 之类的描述映射为字重与斜体标记。
func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(strings.TrimSpace(style))
	weights := []struct {
		word  string
		style canvas.FontStyle
	}{
		{"black", canvas.FontBlack},
		{"extrabold", canvas.FontExtraBold},
		{"semibold", canvas.FontSemiBold},
		{"demibold", canvas.FontSemiBold},
		{"bold", canvas.FontBold},
		{"medium", canvas.FontMedium},
		{"light", canvas.FontLight},
	}
	result := canvas.FontRegular
	for _, w := range weights {
		if strings.Contains(s, w.word) {
			result = w.style
			break
		}
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
