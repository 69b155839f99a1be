package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanRedactsSensitiveKeysAtAnyDepth(t *testing.T) {
	input := map[string]any{
		"email":    "ana@example.com",
		"password": "hunter2",
		"nested": map[string]any{
			"token": "abc",
			"items": []any{
				map[string]any{"secret": "s3cret", "ok": "visible"},
			},
		},
	}

	out, ok := Clean(input).(map[string]any)
	require.True(t, ok)
	require.Equal(t, RedactedMarker, out["password"])
	require.Equal(t, "ana@example.com", out["email"])

	nested := out["nested"].(map[string]any)
	require.Equal(t, RedactedMarker, nested["token"])

	item := nested["items"].([]any)[0].(map[string]any)
	require.Equal(t, RedactedMarker, item["secret"])
	require.Equal(t, "visible", item["ok"])
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	input := map[string]any{
		"password": "hunter2",
		"nested":   map[string]any{"hash": "h"},
	}

	_ = Clean(input)

	require.Equal(t, "hunter2", input["password"])
	require.Equal(t, "h", input["nested"].(map[string]any)["hash"])
}

func TestCleanIsCaseSensitive(t *testing.T) {
	out := Clean(map[string]any{"Password": "keep"}).(map[string]any)
	require.Equal(t, "keep", out["Password"])
}

func TestCleanUnserializableFallback(t *testing.T) {
	out, ok := Clean(map[string]any{"fn": func() {}}).(map[string]any)
	require.True(t, ok)
	require.Equal(t, "unserializable", out["error"])
}

func TestCleanNil(t *testing.T) {
	require.Nil(t, Clean(nil))
	require.Nil(t, Snapshot(nil))
}

func TestSnapshotRendersJSON(t *testing.T) {
	snap := Snapshot(map[string]any{"salt": "x", "id": 5})
	require.JSONEq(t, `{"salt":"[REDACTED]","id":5}`, string(snap))
}
