package leakcheck

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBatchEnvelope(t *testing.T) {
	body := `[{"result":{"data":{"json":{"rows":[{"id":1},{"id":2},{"id":3}],"meta":{"myCount":3}}}}}]`

	p, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Len(t, p.Rows, 3)
	require.NotNil(t, p.Meta.MyCount)
	assert.Equal(t, 3, *p.Meta.MyCount)
}

func TestParseObjectEnvelope(t *testing.T) {
	body := `{"result":{"data":{"json":{"rows":[],"meta":{"myCount":0}}}}}`

	p, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, p.Rows)
	require.NotNil(t, p.Meta.MyCount)
	assert.Equal(t, 0, *p.Meta.MyCount)
}

func TestParseWithoutMyCount(t *testing.T) {
	body := `{"result":{"data":{"json":{"rows":[{"id":9}],"meta":{}}}}}`

	p, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.Nil(t, p.Meta.MyCount)
}

func TestParseRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"not json":           "<html>502</html>",
		"empty batch":        "[]",
		"missing result":     `{"error":{"code":-32600}}`,
		"missing rows":       `{"result":{"data":{"json":{"meta":{"myCount":2}}}}}`,
		"rows not an array":  `{"result":{"data":{"json":{"rows":{"a":1}}}}}`,
		"myCount not an int": `{"result":{"data":{"json":{"rows":[],"meta":{"myCount":"3"}}}}}`,
		"negative myCount":   `{"result":{"data":{"json":{"rows":[],"meta":{"myCount":-1}}}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			require.Error(t, err)
			var ee *EnvelopeError
			assert.True(t, errors.As(err, &ee), "want EnvelopeError, got %T", err)
		})
	}
}

func TestVerifyStrictEquality(t *testing.T) {
	three := 3
	p := &Payload{Rows: rows(3), Meta: Meta{MyCount: &three}}

	checked, err := Verify(p)
	assert.True(t, checked)
	assert.NoError(t, err)
}

func TestVerifyDetectsLeak(t *testing.T) {
	three := 3
	p := &Payload{Rows: rows(5), Meta: Meta{MyCount: &three}}

	checked, err := Verify(p)
	assert.True(t, checked)

	var le *LeakError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 5, le.Rows)
	assert.Equal(t, 3, le.MyCount)
}

func TestVerifyDetectsUnderCount(t *testing.T) {
	// Fewer rows than declared is still a contract violation, not a pass.
	three := 3
	p := &Payload{Rows: rows(1), Meta: Meta{MyCount: &three}}

	checked, err := Verify(p)
	assert.True(t, checked)
	assert.Error(t, err)
}

func TestVerifySkipsWhenMyCountAbsent(t *testing.T) {
	p := &Payload{Rows: rows(4)}

	checked, err := Verify(p)
	assert.False(t, checked)
	assert.NoError(t, err)
}

func rows(n int) []json.RawMessage {
	out := make([]json.RawMessage, n)
	for i := range out {
		out[i] = json.RawMessage(fmt.Sprintf(`{"id":%d}`, i))
	}
	return out
}
