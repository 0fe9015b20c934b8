package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goldziher/kreuzberg-go/internal/config"
)

const presentationRels = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
</Relationships>`

const slide1XML = `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:sp>
        <p:spPr><a:xfrm><a:off x="0" y="0"/></a:xfrm></p:spPr>
        <p:txBody>
          <a:p><a:r><a:rPr b="1"/><a:t>Title</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
      <p:sp>
        <p:spPr><a:xfrm><a:off x="0" y="500"/></a:xfrm></p:spPr>
        <p:txBody>
          <a:p><a:pPr lvl="0"><a:buChar char="-"/></a:pPr><a:r><a:t>First bullet</a:t></a:r></a:p>
          <a:p><a:pPr lvl="1"><a:buAutoNum type="arabicPeriod"/></a:pPr><a:r><a:t>Nested numbered</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
      <p:pic>
        <p:blipFill><a:blip r:embed="rId3" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/></p:blipFill>
        <p:spPr><a:xfrm><a:off x="10" y="10"/></a:xfrm></p:spPr>
      </p:pic>
    </p:spTree>
  </p:cSld>
</p:sld>`

func buildTestPPTX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	write := func(name, content string) {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}

	write("ppt/_rels/presentation.xml.rels", presentationRels)
	write("ppt/slides/slide1.xml", slide1XML)
	write("ppt/slides/_rels/slide1.xml.rels", `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>
</Relationships>`)
	write("ppt/media/image1.png", "fake-png-bytes")
	write("docProps/core.xml", `<?xml version="1.0"?><cp:coreProperties xmlns:cp="x" xmlns:dc="y"><dc:title>My Deck</dc:title><dc:creator>Alice</dc:creator></cp:coreProperties>`)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestSlidePathsNormalizesAndExcludesMasters(t *testing.T) {
	data := buildTestPPTX(t)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	paths, err := slidePaths(zr)
	require.NoError(t, err)
	assert.Equal(t, []string{"ppt/slides/slide1.xml"}, paths)
}

func TestParseSlideXMLOrdersTextListAndImage(t *testing.T) {
	elements, err := parseSlideXML([]byte(slide1XML))
	require.NoError(t, err)
	require.Len(t, elements, 3)

	assert.Equal(t, kindText, elements[0].Kind)
	assert.Equal(t, kindList, elements[1].Kind)
	assert.Equal(t, kindImage, elements[2].Kind)

	list := elements[1]
	require.Len(t, list.Paragraphs, 2)
	assert.False(t, list.Paragraphs[0].Ordered)
	assert.Equal(t, 1, list.Paragraphs[0].Level)
	assert.True(t, list.Paragraphs[1].Ordered)
	assert.Equal(t, 2, list.Paragraphs[1].Level)
}

func TestToParagraphExplicitLevelWithoutBulletIsListItem(t *testing.T) {
	const xmlData = `<a:p><a:pPr lvl="1"/><a:r><a:t>No bullet, explicit level</a:t></a:r></a:p>`
	var p paragraphXML
	require.NoError(t, xml.Unmarshal([]byte(xmlData), &p))

	para := p.toParagraph()
	assert.True(t, para.IsListItem)
	assert.False(t, para.Ordered)
	assert.Equal(t, 2, para.Level)
}

func TestToParagraphBuNoneChildIsListItem(t *testing.T) {
	const xmlData = `<a:p><a:pPr><a:buNone/></a:pPr><a:r><a:t>Explicitly no bullet marker</a:t></a:r></a:p>`
	var p paragraphXML
	require.NoError(t, xml.Unmarshal([]byte(xmlData), &p))

	para := p.toParagraph()
	assert.True(t, para.IsListItem)
	assert.False(t, para.Ordered)
	assert.Equal(t, 1, para.Level)
}

func TestToParagraphNoLevelNoBulletIsNotListItem(t *testing.T) {
	const xmlData = `<a:p><a:r><a:t>Plain paragraph</a:t></a:r></a:p>`
	var p paragraphXML
	require.NoError(t, xml.Unmarshal([]byte(xmlData), &p))

	para := p.toParagraph()
	assert.False(t, para.IsListItem)
}

func TestOrderForRenderingSortsByTypeThenPosition(t *testing.T) {
	elements := []SlideElement{
		{Kind: kindImage, Position: ElementPosition{X: 0, Y: 0}},
		{Kind: kindText, Position: ElementPosition{X: 5, Y: 100}},
		{Kind: kindText, Position: ElementPosition{X: 0, Y: 0}},
	}
	ordered := orderForRendering(elements)
	assert.Equal(t, kindText, ordered[0].Kind)
	assert.Equal(t, int64(0), ordered[0].Position.Y)
	assert.Equal(t, kindText, ordered[1].Kind)
	assert.Equal(t, kindImage, ordered[2].Kind)
}

func TestSlideToMarkdownRendersTitleAndSlideComment(t *testing.T) {
	slide := &Slide{
		Number: 1,
		Elements: []SlideElement{
			{Kind: kindText, Paragraphs: []TextParagraph{{Runs: []TextRun{{Text: "Title"}}}}},
		},
	}
	md := slide.ToMarkdown(true)
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "<!-- Slide number: 1 -->")
}

func TestExtractEndToEnd(t *testing.T) {
	data := buildTestPPTX(t)
	result, err := Extract(data, config.Default())
	require.NoError(t, err)

	assert.Contains(t, result.Content, "# Title")
	assert.Equal(t, "My Deck", result.Metadata.Pptx.Title)
	assert.Equal(t, "Alice", result.Metadata.Pptx.Author)
	assert.Equal(t, 1, result.Metadata.Additional["slide_count"])
	assert.Equal(t, 1, result.Metadata.Additional["image_count"])
}

func TestImageCacheEvictsByByteBudget(t *testing.T) {
	cache, err := NewImageCache(10, 0)
	require.NoError(t, err)
	cache.maxBytes = 10

	cache.Put("a", []byte("12345"))
	cache.Put("b", []byte("12345"))
	cache.Put("c", []byte("12345"))

	_, aPresent := cache.Get("a")
	assert.False(t, aPresent)
	_, cPresent := cache.Get("c")
	assert.True(t, cPresent)
}
