package elementtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupHTMLCaseInsensitive(t *testing.T) {
	assert.Equal(t, DivType, Lookup(HTML, "div"))
	assert.Equal(t, DivType, Lookup(HTML, "DIV"))
	assert.Equal(t, TableType, Lookup(HTML, "Table"))
}

func TestLookupUnknownTag(t *testing.T) {
	assert.Equal(t, Unknown, Lookup(HTML, "x-custom-widget"))
	assert.Equal(t, Unknown, Lookup(HTML, "noembed"))
	assert.Equal(t, Unknown, Lookup(HTML, "basefont"))
	assert.Equal(t, Unknown, Lookup(HTML, "dir"))
}

func TestLookupSVGIsCaseSensitive(t *testing.T) {
	assert.Equal(t, ForeignObjectType, Lookup(SVG, "foreignObject"))
	assert.Equal(t, Unknown, Lookup(SVG, "foreignobject"))
}

func TestLookupMathML(t *testing.T) {
	assert.Equal(t, AnnotationXMLType, Lookup(MathML, "annotation-xml"))
	assert.Equal(t, Unknown, Lookup(MathML, "ANNOTATION-XML"))
}

func TestIsVoid(t *testing.T) {
	for _, name := range []string{"area", "base", "br", "col", "embed", "hr", "img", "input", "keygen", "link", "meta", "param", "source", "track", "wbr"} {
		assert.Truef(t, IsVoid(Lookup(HTML, name)), "%s should be void", name)
	}
	assert.False(t, IsVoid(Lookup(HTML, "div")))
	assert.False(t, IsVoid(Unknown))
}

func TestIsRawText(t *testing.T) {
	assert.True(t, IsRawText(Lookup(HTML, "style")))
	assert.True(t, IsRawText(Lookup(HTML, "xmp")))
	assert.True(t, IsRawText(Lookup(HTML, "iframe")))
	assert.True(t, IsRawText(Lookup(HTML, "noframes")))
	assert.False(t, IsRawText(Lookup(HTML, "title")))
}
