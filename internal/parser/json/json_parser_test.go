package json

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maude/internal/config"
	"maude/internal/value"
)

func reports(vs []value.Value) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Get("report_number").Text())
	}
	return out
}

func TestDecodeAll_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"envelope", `{"meta":{"results":{"total":2}},"results":[{"report_number":"A"},{"report_number":"B"}]}`, []string{"A", "B"}},
		{"array", `[{"report_number":"A"},{"report_number":"B"}]`, []string{"A", "B"}},
		{"ndjson", "{\"report_number\":\"A\"}\n{\"report_number\":\"B\"}\n", []string{"A", "B"}},
		{"single", `{"report_number":"A","device":[{"brand_name":"X"}]}`, []string{"A"}},
		{"mixed", `[{"report_number":"A"}] {"results":[{"report_number":"B"}]} {"report_number":"C"}`, []string{"A", "B", "C"}},
		{"empty", ``, []string{}},
		{"empty_envelope", `{"results":[]}`, []string{}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeAll(strings.NewReader(tc.in), Options{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, reports(got))
		})
	}
}

func TestDecoder_SkipsNonObjects(t *testing.T) {
	t.Parallel()

	d := NewDecoder(strings.NewReader(`[1, {"report_number":"A"}, "x"] 42 {"results":[null, {"report_number":"B"}]}`), Options{})
	var got []value.Value
	for {
		v, err := d.Next()
		if err != nil {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []string{"A", "B"}, reports(got))
	assert.Equal(t, 4, d.Skipped())
}

func TestDecoder_PreservesKeyOrder(t *testing.T) {
	t.Parallel()

	got, err := DecodeAll(strings.NewReader(`{"z":1,"a":2,"m":3}`), Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	var keys []string
	for _, f := range got[0].Fields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}

func TestDecodeAll_Malformed(t *testing.T) {
	t.Parallel()

	_, err := DecodeAll(strings.NewReader(`{"report_number":"A"} {"report_number":`), Options{})
	require.Error(t, err)
	_, err = DecodeAll(strings.NewReader(`[{"report_number":"A"}`), Options{})
	require.Error(t, err)
}

func TestFromConfigOptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "results", FromConfigOptions(config.Options{}).EnvelopeKey)
	assert.Equal(t, "data", FromConfigOptions(config.Options{"envelope_key": "data"}).EnvelopeKey)

	got, err := DecodeAll(strings.NewReader(`{"data":[{"report_number":"A"}]}`), Options{EnvelopeKey: "data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, reports(got))
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	out := make(chan value.Value, 4)
	err := Parser{}.Parse(context.Background(), strings.NewReader(`[{"report_number":"A"},{"report_number":"B"}]`), out)
	require.NoError(t, err)
	close(out)
	var got []value.Value
	for v := range out {
		got = append(got, v)
	}
	assert.Equal(t, []string{"A", "B"}, reports(got))
}

func TestParser_ParseCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make(chan value.Value)
	err := Parser{}.Parse(ctx, strings.NewReader(`{"report_number":"A"}`), out)
	require.ErrorIs(t, err, context.Canceled)
}
