package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decoded struct {
	Topic string `json:"topic"`
}

func TestDecodeLoose_BareJSON(t *testing.T) {
	var v decoded
	err := DecodeLoose("op", `{"topic":"coffee"}`, &v)

	require.NoError(t, err)
	assert.Equal(t, "coffee", v.Topic)
}

func TestDecodeLoose_FencedBlock(t *testing.T) {
	text := "Here is the result:\n```json\n{\"topic\":\"coffee\"}\n```\nEnjoy!"
	var v decoded
	err := DecodeLoose("op", text, &v)

	require.NoError(t, err)
	assert.Equal(t, "coffee", v.Topic)
}

func TestDecodeLoose_FenceWithoutLanguageTag(t *testing.T) {
	text := "```\n{\"topic\":\"tea\"}\n```"
	var v decoded
	err := DecodeLoose("op", text, &v)

	require.NoError(t, err)
	assert.Equal(t, "tea", v.Topic)
}

func TestDecodeLoose_ProseWrappedObject(t *testing.T) {
	text := `Sure! The answer is {"topic":"coffee"} as requested.`
	var v decoded
	err := DecodeLoose("op", text, &v)

	require.NoError(t, err)
	assert.Equal(t, "coffee", v.Topic)
}

func TestDecodeLoose_ProseWrappedArray(t *testing.T) {
	text := `The items: [{"topic":"a"},{"topic":"b"}] end of list.`
	var v []decoded
	err := DecodeLoose("op", text, &v)

	require.NoError(t, err)
	require.Len(t, v, 2)
	assert.Equal(t, "b", v[1].Topic)
}

func TestDecodeLoose_ArrayAfterUnparseableBraceSpan(t *testing.T) {
	text := `Topics {ranked by score}: [{"topic":"a"},{"topic":"b"},{"topic":"c"}]`
	var v []decoded
	err := DecodeLoose("op", text, &v)

	require.NoError(t, err)
	require.Len(t, v, 3)
	assert.Equal(t, "c", v[2].Topic)
}

func TestDecodeLoose_NoJSONAnywhere(t *testing.T) {
	var v decoded
	err := DecodeLoose("content.search", "I could not produce a result.", &v)

	require.Error(t, err)
	var classified *Error
	require.ErrorAs(t, err, &classified)
	assert.Equal(t, KindParsing, classified.Kind)
	assert.Equal(t, "content.search", classified.Op)
}

func TestDecodeLoose_EmptyInput(t *testing.T) {
	var v decoded
	err := DecodeLoose("op", "", &v)
	require.Error(t, err)
}
