package structured

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestReadJSONLD_FirstProductWins(t *testing.T) {
	doc := parse(t, `<html><head>
		<script type="application/ld+json">{"@type":"Organization","name":"Shop"}</script>
		<script type="application/ld+json">{"@type":"Product","name":"First","offers":{"price":"10.00"}}</script>
		<script type="application/ld+json">{"@type":"Product","name":"Second"}</script>
	</head></html>`)

	node := ReadJSONLD(doc)
	require.NotNil(t, node)
	assert.Equal(t, "First", String(node, "name"))
	assert.Equal(t, "10.00", String(node, "offers.price"))
}

func TestReadJSONLD_ArrayGraphAndTypeArray(t *testing.T) {
	doc := parse(t, `<script type="application/ld+json">
		[{"@type":"BreadcrumbList"},{"@type":["Thing","Product"],"name":"From array"}]
	</script>`)
	assert.Equal(t, "From array", String(ReadJSONLD(doc), "name"))

	doc = parse(t, `<script type="application/ld+json">
		{"@context":"https://schema.org","@graph":[{"@type":"WebPage"},{"@type":"https://schema.org/Product","name":"From graph"}]}
	</script>`)
	assert.Equal(t, "From graph", String(ReadJSONLD(doc), "name"))
}

func TestReadJSONLD_MalformedBlocksAreSkipped(t *testing.T) {
	doc := parse(t, `<script type="application/ld+json">{"@type":"Product", "name": </script>
		<script type="application/ld+json">{"@type":"Product","name":"Valid"}</script>`)
	assert.Equal(t, "Valid", String(ReadJSONLD(doc), "name"))

	doc = parse(t, `<script type="application/ld+json">{not json}</script>`)
	assert.Nil(t, ReadJSONLD(doc))
	assert.Nil(t, ReadJSONLD(nil))
}

func TestReadBlob_WithAnchor(t *testing.T) {
	doc := parse(t, `<script>
		window.runParams = {
			data: {"titleModule":{"subject":"Brace } in \"title\" {"},"actionModule":{"productId":1005006123456789}},
			csrfToken: 'abc'
		};
	</script>`)

	data := ReadBlob(doc, Blob{Signature: "window.runParams", Anchor: "data:"})
	require.NotNil(t, data)
	assert.Equal(t, `Brace } in "title" {`, String(data, "titleModule.subject"))
	assert.Equal(t, "1005006123456789", String(data, "actionModule.productId"))
}

func TestReadBlob_Missing(t *testing.T) {
	doc := parse(t, `<script>var x = 1;</script><script>window.rawData = {"store": </script>`)
	assert.Nil(t, ReadBlob(doc, Blob{Signature: "window.runParams"}))
	assert.Nil(t, ReadBlob(doc, Blob{Signature: "window.rawData"}))
}

func TestReadJSONScript(t *testing.T) {
	doc := parse(t, `<script type="application/json" data-product-json>{"title":"Lamp","price":2499}</script>`)
	data := ReadJSONScript(doc, "script[data-product-json]")
	require.NotNil(t, data)
	price, ok := Int(data, "price")
	assert.True(t, ok)
	assert.Equal(t, int64(2499), price)
}

func TestBalancedObject(t *testing.T) {
	assert.Equal(t, `{"a":{"b":"}"}}`, BalancedObject(`= {"a":{"b":"}"}};`))
	assert.Equal(t, "", BalancedObject(`= {"a":1`))
	assert.Equal(t, "", BalancedObject(`no object`))
}

func TestAccessors(t *testing.T) {
	v, err := decode(`{"list":[{"n":"1.5"},{"n":2}],"flag":true,"one":{"x":"y"},"s":" text "}`)
	require.NoError(t, err)

	assert.Equal(t, "text", String(v, "s"))
	assert.Equal(t, "2", String(v, "list.1.n"))
	assert.Nil(t, Lookup(v, "list.5.n"))
	assert.Nil(t, Lookup(v, "s.deeper"))

	f, ok := Float(v, "list.0.n")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	b, ok := Bool(v, "flag")
	assert.True(t, ok)
	assert.True(t, b)

	assert.Len(t, Slice(v, "one"), 1)
	assert.Len(t, Slice(v, "list"), 2)
	assert.Nil(t, Slice(v, "missing"))
	assert.Equal(t, "y", FirstString(v, "missing", "one.x"))
}
