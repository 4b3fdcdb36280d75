package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHostStructuredValue(t *testing.T) {
	v := &RecordValue{
		FieldNames: []string{"name", "scores", "ok"},
		Fields: []Flex{
			&HostValue{Kind: HostString, Str: "corec"},
			&HostTupleValue{Elements: []Flex{
				&HostValue{Kind: HostNumber, Num: 1},
				&HostValue{Kind: HostNumber, Num: 2},
			}},
			&HostValue{Kind: HostBool, Bool: true},
		},
	}
	b, err := EncodeHost(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"corec","scores":[1,2],"ok":true}`, string(b))

	back, err := DecodeHost(b)
	require.NoError(t, err)
	rv, ok := back.(*RecordValue)
	require.True(t, ok)
	assert.Equal(t, []string{"name", "ok", "scores"}, rv.FieldNames, "decoded fields come back name-sorted")
}

func TestEncodeHostRejectsStuckValue(t *testing.T) {
	_, err := EncodeHost(&Free{Kind: Unique, Token: 1})
	require.Error(t, err)
}
