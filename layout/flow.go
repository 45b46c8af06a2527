package layout

// flowParams 是一次贪心排版需要的全部数值。
type flowParams struct {
	left, right, top float64
	bottomPadding    float64
	wordHeight       float64
	gap              float64
	lineGap          float64
}

func newFlowParams(cfg Config, wordHeight, gap float64) flowParams {
	return flowParams{
		left:          cfg.Padding.Left,
		right:         cfg.Width - cfg.Padding.Right,
		top:           cfg.Padding.Top,
		bottomPadding: cfg.Padding.Bottom,
		wordHeight:    wordHeight,
		gap:           gap,
		lineGap:       cfg.LineGap,
	}
}

func (p flowParams) available() float64 { return p.right - p.left }

// flow 自左向右、自上而下贪心地为片段分配坐标。
//
// 游标从内容区左上角开始，y 预先下移一个字高（基线）。放不下当前行时换行：
// x 回到左边界，y 增加 字高+行距。下一个片段是单字符标点时不追加词间距。
// 任何片段宽度超过内容区宽度都会立即返回 *LayoutError，而不是无限换行。
func flow(segments []Segment, p flowParams, width func(Segment) float64) ([]Segment, []float64, float64, error) {
	if len(segments) == 0 {
		return nil, nil, 0, nil
	}
	placed := make([]Segment, len(segments))
	widths := make([]float64, len(segments))
	x := p.left
	y := p.top + p.wordHeight
	for i, seg := range segments {
		w := width(seg)
		widths[i] = w
		if w > p.available() {
			return nil, widths[:i+1], 0, &LayoutError{
				Kind:      KindUnplaceableSegment,
				Segment:   seg.withoutPosition(),
				Width:     w,
				Available: p.available(),
			}
		}
		if x+w > p.right {
			x = p.left
			y += p.wordHeight + p.lineGap
		}
		placed[i] = seg.withPosition(x, y)
		x += w
		if i+1 < len(segments) && segments[i+1].IsPunctuation() {
			continue
		}
		x += p.gap
	}
	return placed, widths, y + p.bottomPadding, nil
}
