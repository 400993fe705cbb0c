package guide

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Directive tags recognised inside content lines.
const (
	ImageTag          = "IMAGE:"
	HeaderOpen        = "【"
	HeaderClose       = "】"
	ParamedicMarker   = "[P]"
	OnlineOrderMarker = "*"
)

// LineKind classifies a content line.
type LineKind int

const (
	LineParagraph LineKind = iota
	LineHeader
	LineImage
	LineSpacer
)

func (k LineKind) String() string {
	switch k {
	case LineHeader:
		return "header"
	case LineImage:
		return "image"
	case LineSpacer:
		return "spacer"
	default:
		return "paragraph"
	}
}

// SegmentKind classifies a piece of a paragraph.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentLink
	SegmentParamedic   // EMT-P certifying-level badge
	SegmentOnlineOrder // online medical order required
)

// Segment is one inline piece of a paragraph. Only SegmentText is ever
// searched or highlighted.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Line is a parsed content line.
type Line struct {
	Kind     LineKind
	Raw      string
	Asset    string    // LineImage
	Small    bool      // LineImage: render at QR-code size
	Segments []Segment // LineParagraph
	Text     string    // LineHeader: the highlightable header text

	// Indent is the left indent in em. Hanging means the first line is
	// pulled back by the same amount so a list marker hangs in the margin.
	Indent       float64
	Hanging      bool
	Continuation bool // starts with a full-width space
}

var (
	badgePattern = regexp.MustCompile(`(\[P\]|\*)`)
	urlPattern   = regexp.MustCompile(`https?://[^\s]+`)
	listMarker   = regexp.MustCompile(`^[\s　]*([0-9A-Za-z]+[\.\)．]|[\(（][0-9A-Za-z一二三四五六七八九十０-９]+[\)）]|註[0-9]+[：:]|[一二三四五六七八九十壹貳參肆伍陸柒捌玖拾]+[、\.．])`)
)

// ParseLine applies the content directive grammar to a single line.
func ParseLine(raw string) Line {
	if strings.HasPrefix(raw, ImageTag) {
		asset := strings.Replace(raw, ImageTag, "", 1)
		return Line{
			Kind:  LineImage,
			Raw:   raw,
			Asset: asset,
			Small: strings.Contains(asset, "QRcode.png"),
		}
	}

	trimmed := strings.TrimSpace(raw)
	if isHeader(trimmed) {
		return Line{Kind: LineHeader, Raw: raw, Text: raw}
	}
	if trimmed == "" {
		return Line{Kind: LineSpacer, Raw: raw}
	}

	l := Line{
		Kind:         LineParagraph,
		Raw:          raw,
		Segments:     splitSegments(raw),
		Continuation: strings.HasPrefix(raw, "　"),
	}
	if m := listMarker.FindString(raw); m != "" {
		l.Indent = markerWidth(m)
		l.Hanging = true
	} else if l.Continuation {
		l.Indent = 2
	}
	return l
}

// ParseLines parses every line of a content block.
func ParseLines(lines []string) []Line {
	out := make([]Line, len(lines))
	for i, raw := range lines {
		out[i] = ParseLine(raw)
	}
	return out
}

// isHeader matches `【...】` with at least one rune between the brackets.
func isHeader(s string) bool {
	if !strings.HasPrefix(s, HeaderOpen) || !strings.HasSuffix(s, HeaderClose) {
		return false
	}
	return len(s) > len(HeaderOpen)+len(HeaderClose)
}

func splitSegments(raw string) []Segment {
	var segs []Segment
	last := 0
	for _, loc := range badgePattern.FindAllStringIndex(raw, -1) {
		segs = appendText(segs, raw[last:loc[0]])
		if raw[loc[0]:loc[1]] == ParamedicMarker {
			segs = append(segs, Segment{Kind: SegmentParamedic, Text: ParamedicMarker})
		} else {
			segs = append(segs, Segment{Kind: SegmentOnlineOrder, Text: OnlineOrderMarker})
		}
		last = loc[1]
	}
	return appendText(segs, raw[last:])
}

// appendText splits s on raw URLs so links are kept apart from searchable
// text.
func appendText(segs []Segment, s string) []Segment {
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Kind: SegmentText, Text: s[last:loc[0]]})
		}
		segs = append(segs, Segment{Kind: SegmentLink, Text: s[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(s) {
		segs = append(segs, Segment{Kind: SegmentText, Text: s[last:]})
	}
	return segs
}

// markerWidth estimates the rendered width of a list marker in em: wide
// runes count 1.0, ASCII 0.55.
func markerWidth(marker string) float64 {
	var w float64
	for len(marker) > 0 {
		r, size := utf8.DecodeRuneInString(marker)
		if r > 127 {
			w += 1.0
		} else {
			w += 0.55
		}
		marker = marker[size:]
	}
	return math.Round(w*100) / 100
}
