package report

import (
	"bytes"
	"fmt"

	"github.com/russross/blackfriday"

	"github.com/medscribe/medscribe/pkg/domain"
)

// RenderHTML renders the markdown report into a standalone HTML document.
func RenderHTML(meta Meta, record *domain.ConsultRecord) []byte {
	md := RenderMarkdown(meta, record)
	body := blackfriday.MarkdownCommon([]byte(md))

	title := meta.Title
	if title == "" {
		title = "Consultation Transcript"
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", title)
	b.Write(body)
	b.WriteString("</body>\n</html>\n")

	return b.Bytes()
}
