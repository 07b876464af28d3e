package web

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDescription_EmptyInput(t *testing.T) {
	assert.Equal(t, "", string(RenderDescription("")))
}

func TestRenderDescription_PlainText(t *testing.T) {
	assert.Equal(t, "hello world", string(RenderDescription("hello world")))
}

func TestRenderDescription_Bold(t *testing.T) {
	result := string(RenderDescription("**bold** text"))
	assert.Equal(t, "<strong>bold</strong> text", result)
}

func TestRenderDescription_InlineCode(t *testing.T) {
	result := string(RenderDescription("use `fmt.Println`"))
	assert.Contains(t, result, "<code>fmt.Println</code>")
	assert.NotContains(t, result, "<p>")
}

func TestRenderDescription_Strikethrough(t *testing.T) {
	result := string(RenderDescription("~~old~~ new"))
	assert.Contains(t, result, "<del>old</del>")
}

func TestRenderDescription_Link(t *testing.T) {
	result := string(RenderDescription("[click](https://example.com)"))
	assert.Contains(t, result, `<a href="https://example.com"`)
	assert.Contains(t, result, "click</a>")
}

func TestRenderDescription_SanitizesScript(t *testing.T) {
	result := string(RenderDescription("<script>alert(1)</script>hi"))
	assert.NotContains(t, result, "<script>")
	assert.Contains(t, result, "hi")
}

func TestRenderDescription_SanitizesOnClick(t *testing.T) {
	result := string(RenderDescription(`<a href="https://example.com" onclick="evil()">x</a>`))
	assert.NotContains(t, result, "onclick")
}

func TestRenderDescription_JavascriptURL(t *testing.T) {
	result := string(RenderDescription("[click](javascript:alert(1))"))
	assert.False(t, strings.Contains(result, "javascript:"))
}
