package omokpresenter

import "strings"

const (
	seeMorePadding = 500
	zeroWidthSpace = "\u200b"
)

// 카카오톡 '전체보기' 접힘을 만들기 위해 첫 줄(제목) 뒤에 제로폭 문자를 채운다.
func withSeeMore(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	header, body, _ := strings.Cut(text, "\n")
	header = strings.TrimSpace(header)
	body = strings.TrimLeft(body, "\r\n")

	var b strings.Builder
	b.Grow(len(header) + len(body) + seeMorePadding*len(zeroWidthSpace) + 1)
	b.WriteString(header)
	b.WriteString(strings.Repeat(zeroWidthSpace, seeMorePadding))
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}
